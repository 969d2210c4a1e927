package realtime

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Максимальный размер сообщения от клиента.
	maxMessageSize = 4096
	maxRoomName    = 64
)

// Client is one WebSocket connection.
type Client struct {
	id    uuid.UUID
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]struct{} // под Hub.mu
}

type clientCommand struct {
	Action string          `json:"action"`
	Room   string          `json:"room"`
	Body   json.RawMessage `json:"body"`
}

// Handler upgrades the request and attaches the connection to the hub.
// An empty allowedOrigins accepts any origin.
func (h *Hub) Handler(allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// upgrader уже ответил клиенту
			h.logger.Warn("Failed to upgrade connection", zap.Error(err))
			return
		}

		c := &Client{
			id:    uuid.New(),
			hub:   h,
			conn:  conn,
			send:  make(chan []byte, 256),
			rooms: make(map[string]struct{}),
		}

		select {
		case h.register <- c:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go c.writePump()
		go c.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("WebSocket read error", zap.Stringer("client_id", c.id), zap.Error(err))
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.hub.logger.Debug("Ignoring malformed client command", zap.Stringer("client_id", c.id), zap.Error(err))
			continue
		}
		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd clientCommand) {
	room := strings.TrimSpace(cmd.Room)
	if room == "" || len(room) > maxRoomName {
		c.hub.sendTo(c, Message{Type: "error", Payload: "invalid room"})
		return
	}

	switch cmd.Action {
	case actionJoin, actionLeave:
		if room == NotificationsRoom && cmd.Action == actionLeave {
			return
		}
		c.submit(roomCommand{client: c, room: room, action: cmd.Action})
	case actionMessage:
		if room == NotificationsRoom {
			// Комната уведомлений только для сервера.
			c.hub.sendTo(c, Message{Type: "error", Room: room, Payload: "room is read-only"})
			return
		}
		c.submit(roomCommand{client: c, room: room, action: actionMessage, body: cmd.Body})
	default:
		c.hub.sendTo(c, Message{Type: "error", Payload: "unknown action"})
	}
}

func (c *Client) submit(cmd roomCommand) {
	select {
	case c.hub.commands <- cmd:
	case <-c.hub.done:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
