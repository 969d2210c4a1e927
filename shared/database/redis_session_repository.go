package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hospital-server/shared/interfaces"
	"hospital-server/shared/models"
)

const sessionKeyPrefix = "session:"

// Compile-time check to ensure redisSessionRepository implements SessionRepository
var _ interfaces.SessionRepository = (*redisSessionRepository)(nil)

type redisSessionRepository struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisSessionRepository creates a Redis-backed SessionRepository.
func NewRedisSessionRepository(client redis.UniversalClient, logger *zap.Logger) interfaces.SessionRepository {
	return &redisSessionRepository{
		client: client,
		logger: logger.Named("RedisSessionRepo"),
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// GetSession loads the session JSON stored under session:<id>.
func (r *redisSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get session from redis", zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// Битая запись равносильна отсутствию сессии.
		r.logger.Warn("Malformed session record", zap.Error(err))
		return nil, models.ErrSessionNotFound
	}
	return &session, nil
}

// SetSession stores the session with the given TTL.
func (r *redisSessionRepository) SetSession(ctx context.Context, sessionID string, session *models.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(sessionID), raw, ttl).Err(); err != nil {
		r.logger.Error("Failed to store session in redis", zap.Error(err))
		return fmt.Errorf("failed to store session: %w", err)
	}
	r.logger.Debug("Session stored", zap.String("userID", session.UserID), zap.Duration("ttl", ttl))
	return nil
}

// DeleteSession removes the session; deleting an unknown id is not an error.
func (r *redisSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		r.logger.Error("Failed to delete session from redis", zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
