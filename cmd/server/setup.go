package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hospital-server/internal/config"
)

const (
	maxConnectRetries = 20
	connectRetryDelay = 3 * time.Second
	serviceName       = "hospital-server"
)

// setupPostgres initializes the PostgreSQL connection pool with retry logic.
func setupPostgres(cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MaxConnIdleTime = cfg.Database.IdleTimeout
	poolConfig.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout

	logger.Info("Attempting to connect to PostgreSQL",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.Name),
		zap.Int("max_retries", maxConnectRetries),
	)

	var lastErr error
	for i := 0; i < maxConnectRetries; i++ {
		attempt := i + 1
		connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err == nil {
			err = pool.Ping(connectCtx)
			if err != nil {
				pool.Close()
			}
		}
		connectCancel()

		if err == nil {
			logger.Info("Successfully connected and pinged PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}

		lastErr = err
		logger.Warn("Postgres connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxConnectRetries),
			zap.Error(err),
		)
		if i < maxConnectRetries-1 {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxConnectRetries, lastErr)
}

// setupRedis initializes the Redis client with retry logic.
func setupRedis(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	logger.Info("Attempting to connect to Redis", zap.String("address", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))

	var lastErr error
	for i := 0; i < maxConnectRetries; i++ {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()
		if err == nil {
			logger.Info("Successfully connected and pinged Redis", zap.Int("attempt", i+1))
			return client, nil
		}
		lastErr = err
		logger.Warn("Redis ping failed, retrying...", zap.Int("attempt", i+1), zap.Error(err))
		if i < maxConnectRetries-1 {
			time.Sleep(connectRetryDelay)
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxConnectRetries, lastErr)
}
