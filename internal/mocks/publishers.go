package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"hospital-server/shared/interfaces"
	"hospital-server/shared/models"
)

// GeneralConfigEventPublisher is a mock of interfaces.GeneralConfigEventPublisher.
type GeneralConfigEventPublisher struct {
	mock.Mock
}

func (m *GeneralConfigEventPublisher) PublishGeneralConfigUpdated(ctx context.Context, event models.GeneralConfigUpdatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Notification is one recorded Notify call.
type Notification struct {
	EventType string
	Payload   any
}

// Notifier records Notify calls.
type Notifier struct {
	mu    sync.Mutex
	calls []Notification
}

func (n *Notifier) Notify(eventType string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, Notification{EventType: eventType, Payload: payload})
}

// Calls returns a copy of the recorded notifications.
func (n *Notifier) Calls() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.calls...)
}

var (
	_ interfaces.GeneralConfigEventPublisher = (*GeneralConfigEventPublisher)(nil)
	_ interfaces.Notifier                    = (*Notifier)(nil)
)
