// Package realtime relays room messages and server notifications over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hospital-server/shared/interfaces"
)

// NotificationsRoom is joined by every client on connect.
const NotificationsRoom = "notifications"

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type    string `json:"type"`
	Room    string `json:"room,omitempty"`
	From    string `json:"from,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

const (
	actionJoin    = "join"
	actionLeave   = "leave"
	actionMessage = "message"
)

// roomCommand shares one channel for all client actions so a client's join is
// applied before its next message is checked.
type roomCommand struct {
	client *Client
	room   string
	action string
	body   json.RawMessage
}

type outbound struct {
	room   string
	except uuid.UUID
	msg    Message
}

var _ interfaces.Notifier = (*Hub)(nil)

// Hub владеет всеми подключениями и комнатами. Карты защищены mu.
type Hub struct {
	clients map[uuid.UUID]*Client
	rooms   map[string]map[uuid.UUID]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	commands   chan roomCommand
	broadcast  chan outbound
	done       chan struct{}

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		rooms:      make(map[string]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan roomCommand, 64),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
		logger:     logger.Named("RealtimeHub"),
	}
}

// Run processes hub events until ctx is cancelled, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, c := range h.clients {
				close(c.send)
			}
			h.clients = map[uuid.UUID]*Client{}
			h.rooms = map[string]map[uuid.UUID]*Client{}
			h.mu.Unlock()
			h.logger.Info("Realtime hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.joinLocked(c, NotificationsRoom)
			h.mu.Unlock()
			h.logger.Debug("Client connected", zap.Stringer("client_id", c.id))

		case c := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()

		case cmd := <-h.commands:
			h.handleRoomCommand(cmd)

		case out := <-h.broadcast:
			h.deliver(out)
		}
	}
}

func (h *Hub) handleRoomCommand(cmd roomCommand) {
	if cmd.action == actionMessage {
		h.mu.RLock()
		_, member := cmd.client.rooms[cmd.room]
		h.mu.RUnlock()
		if !member {
			h.sendTo(cmd.client, Message{Type: "error", Room: cmd.room, Payload: "not a member of room"})
			return
		}
		h.deliver(outbound{
			room:   cmd.room,
			except: cmd.client.id,
			msg:    Message{Type: actionMessage, Room: cmd.room, From: cmd.client.id.String(), Payload: cmd.body},
		})
		return
	}

	h.mu.Lock()
	if _, ok := h.clients[cmd.client.id]; ok {
		if cmd.action == actionJoin {
			h.joinLocked(cmd.client, cmd.room)
		} else {
			h.leaveLocked(cmd.client, cmd.room)
		}
	}
	h.mu.Unlock()
	ack := "left"
	if cmd.action == actionJoin {
		ack = "joined"
	}
	h.sendTo(cmd.client, Message{Type: ack, Room: cmd.room})
}

func (h *Hub) joinLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[uuid.UUID]*Client)
		h.rooms[room] = members
	}
	members[c.id] = c
	c.rooms[room] = struct{}{}
}

func (h *Hub) leaveLocked(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	delete(h.clients, c.id)
	close(c.send)
	h.logger.Debug("Client disconnected", zap.Stringer("client_id", c.id))
}

func (h *Hub) deliver(out outbound) {
	data, err := json.Marshal(out.msg)
	if err != nil {
		h.logger.Error("Failed to marshal realtime message", zap.String("type", out.msg.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.rooms[out.room] {
		if id == out.except {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Медленный клиент: отключаем.
			h.logger.Warn("Client send buffer full, disconnecting", zap.Stringer("client_id", id))
			h.removeLocked(c)
		}
	}
}

func (h *Hub) sendTo(c *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.removeLocked(c)
	}
}

func (h *Hub) enqueue(out outbound) {
	select {
	case h.broadcast <- out:
	case <-h.done:
	}
}

// Notify sends an event to every connected client. It implements interfaces.Notifier.
func (h *Hub) Notify(eventType string, payload any) {
	h.enqueue(outbound{room: NotificationsRoom, msg: Message{Type: eventType, Room: NotificationsRoom, Payload: payload}})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
