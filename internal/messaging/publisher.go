package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"hospital-server/shared/interfaces"
	"hospital-server/shared/models"
)

var _ interfaces.GeneralConfigEventPublisher = (*GeneralConfigPublisher)(nil)

// GeneralConfigPublisher публикует события обновления конфигурации в fanout exchange.
type GeneralConfigPublisher struct {
	mu           sync.Mutex // amqp091.Channel не рассчитан на конкурентную публикацию
	ch           *amqp091.Channel
	logger       *zap.Logger
	exchangeName string
}

func NewGeneralConfigPublisher(conn *amqp091.Connection, logger *zap.Logger) (*GeneralConfigPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	logger = logger.Named("GeneralConfigPublisher")

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a channel", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := declareExchange(ch); err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare exchange", zap.String("exchange", GeneralConfigExchange), zap.Error(err))
		return nil, err
	}
	logger.Info("General config exchange declared", zap.String("exchange", GeneralConfigExchange))

	return &GeneralConfigPublisher{
		ch:           ch,
		logger:       logger,
		exchangeName: GeneralConfigExchange,
	}, nil
}

func declareExchange(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		GeneralConfigExchange,
		generalConfigExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", GeneralConfigExchange, err)
	}
	return nil
}

func (p *GeneralConfigPublisher) PublishGeneralConfigUpdated(ctx context.Context, event models.GeneralConfigUpdatedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal general config event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchangeName,
		"", // routing key не используется для fanout
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			MessageId:   event.EventID,
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish general config event: %w", err)
	}

	p.logger.Debug("General config event published",
		zap.String("event_id", event.EventID),
		zap.Int64("version", event.Version),
	)
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *GeneralConfigPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
