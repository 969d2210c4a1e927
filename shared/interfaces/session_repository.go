package interfaces

import (
	"context"
	"time"

	"hospital-server/shared/models"
)

// SessionRepository looks up server-side sessions.
type SessionRepository interface {
	// GetSession returns models.ErrSessionNotFound when the id is unknown or expired.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	SetSession(ctx context.Context, sessionID string, session *models.Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error
}
