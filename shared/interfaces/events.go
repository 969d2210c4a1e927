package interfaces

import (
	"context"

	"hospital-server/shared/models"
)

// GeneralConfigEventPublisher fans out configuration updates to other instances.
type GeneralConfigEventPublisher interface {
	PublishGeneralConfigUpdated(ctx context.Context, event models.GeneralConfigUpdatedEvent) error
}

// Notifier pushes server events to connected realtime clients.
type Notifier interface {
	Notify(eventType string, payload any)
}
