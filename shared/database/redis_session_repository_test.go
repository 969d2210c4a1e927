package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hospital-server/shared/models"
)

func newMiniredisRepo(t *testing.T) (*miniredis.Miniredis, *redisSessionRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewRedisSessionRepository(client, zap.NewNop()).(*redisSessionRepository)
	return mr, repo
}

func TestRedisSessionRepository_SetGetDelete(t *testing.T) {
	mr, repo := newMiniredisRepo(t)
	ctx := context.Background()

	session := &models.Session{UserID: "42", Username: "dr.house", IsAdmin: true}
	require.NoError(t, repo.SetSession(ctx, "abc", session, time.Hour))
	assert.True(t, mr.Exists("session:abc"))

	got, err := repo.GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, session, got)

	require.NoError(t, repo.DeleteSession(ctx, "abc"))
	_, err = repo.GetSession(ctx, "abc")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestRedisSessionRepository_Expiry(t *testing.T) {
	mr, repo := newMiniredisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetSession(ctx, "short", &models.Session{UserID: "1"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.GetSession(ctx, "short")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestRedisSessionRepository_MalformedRecord(t *testing.T) {
	mr, repo := newMiniredisRepo(t)
	require.NoError(t, mr.Set("session:broken", "{not json"))

	_, err := repo.GetSession(context.Background(), "broken")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestRedisSessionRepository_RedisDown(t *testing.T) {
	mr, repo := newMiniredisRepo(t)
	mr.Close()

	_, err := repo.GetSession(context.Background(), "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrSessionNotFound)
}
