package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"hospital-server/shared/models"
)

// RemoteUpdateApplier applies a configuration event published by another instance.
type RemoteUpdateApplier interface {
	ApplyRemoteUpdate(event models.GeneralConfigUpdatedEvent) bool
}

// GeneralConfigConsumer слушает general_config_exchange через временную эксклюзивную очередь.
type GeneralConfigConsumer struct {
	ch          *amqp091.Channel
	applier     RemoteUpdateApplier
	logger      *zap.Logger
	queueName   string
	consumerTag string
	done        chan struct{}
}

func NewGeneralConfigConsumer(conn *amqp091.Connection, applier RemoteUpdateApplier, logger *zap.Logger) (*GeneralConfigConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if applier == nil {
		return nil, fmt.Errorf("applier is nil")
	}

	consumerTag := fmt.Sprintf("general_config_consumer_%d", time.Now().UnixNano())
	c := &GeneralConfigConsumer{
		applier:     applier,
		logger:      logger.Named("GeneralConfigConsumer").With(zap.String("consumerTag", consumerTag)),
		consumerTag: consumerTag,
		done:        make(chan struct{}),
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := c.setupQueue(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	c.ch = ch

	c.logger.Info("GeneralConfigConsumer initialized", zap.String("queue", c.queueName))
	return c, nil
}

func (c *GeneralConfigConsumer) setupQueue(ch *amqp091.Channel) error {
	if err := declareExchange(ch); err != nil {
		return err
	}

	// Очередь на инстанс: имя выдает брокер, удаляется вместе с соединением.
	q, err := ch.QueueDeclare(
		"",
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	c.queueName = q.Name

	if err := ch.QueueBind(c.queueName, "", GeneralConfigExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.queueName, GeneralConfigExchange, err)
	}
	return nil
}

// StartConsuming registers the consumer and processes deliveries in the background.
func (c *GeneralConfigConsumer) StartConsuming() error {
	deliveries, err := c.ch.Consume(
		c.queueName,
		c.consumerTag,
		false, // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("Listening for general config updates")
	go func() {
		defer close(c.done)
		for d := range deliveries {
			c.handleDelivery(d)
		}
		c.logger.Info("Deliveries channel closed")
	}()
	return nil
}

func (c *GeneralConfigConsumer) handleDelivery(d amqp091.Delivery) {
	var event models.GeneralConfigUpdatedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.logger.Error("Failed to unmarshal general config event, dropping", zap.Error(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}
	if event.Version <= 0 || event.General.Title == "" {
		c.logger.Warn("Incomplete general config event, dropping", zap.String("event_id", event.EventID))
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}

	c.applier.ApplyRemoteUpdate(event)

	if err := d.Ack(false); err != nil {
		c.logger.Error("Failed to acknowledge message", zap.Error(err))
	}
}

// Stop cancels the subscription and waits for in-flight deliveries.
func (c *GeneralConfigConsumer) Stop() error {
	c.logger.Info("Stopping GeneralConfigConsumer...")
	if err := c.ch.Cancel(c.consumerTag, false); err != nil {
		c.logger.Warn("Failed to cancel consumer", zap.Error(err))
	}
	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
		c.logger.Warn("Timed out waiting for deliveries to drain")
	}
	return c.ch.Close()
}
