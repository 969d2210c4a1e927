package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hospital-server/shared/interfaces"
	"hospital-server/shared/models"
)

const publishTimeout = 5 * time.Second

type generalConfigServiceImpl struct {
	repo      interfaces.GeneralConfigRepository
	cache     ConfigCache
	publisher interfaces.GeneralConfigEventPublisher // nil - рассылка отключена
	notifier  interfaces.Notifier                    // nil - без realtime
	origin    string
	logger    *zap.Logger
}

// NewGeneralConfigService wires the cache in front of the repository.
// publisher and notifier are optional.
func NewGeneralConfigService(
	repo interfaces.GeneralConfigRepository,
	cache ConfigCache,
	publisher interfaces.GeneralConfigEventPublisher,
	notifier interfaces.Notifier,
	logger *zap.Logger,
) GeneralConfigService {
	return &generalConfigServiceImpl{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		notifier:  notifier,
		origin:    uuid.NewString(),
		logger:    logger.Named("GeneralConfigService"),
	}
}

func (s *generalConfigServiceImpl) Origin() string { return s.origin }

func (s *generalConfigServiceImpl) Get(ctx context.Context) (models.GeneralConfig, error) {
	if cfg, ok := s.cache.Get(); ok {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return cfg, nil
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()
	return s.loadFromDB(ctx)
}

func (s *generalConfigServiceImpl) loadFromDB(ctx context.Context) (models.GeneralConfig, error) {
	row, err := s.repo.FetchGeneralRow(ctx)
	if err != nil {
		dbFallbacksTotal.WithLabelValues("error").Inc()
		s.logger.Error("Failed to load general config from database", zap.Error(err))
		return models.GeneralConfig{}, err
	}
	dbFallbacksTotal.WithLabelValues("ok").Inc()

	cfg := row.ToConfig()
	s.cacheRow(cfg, row.Version, "General config loaded from database")
	return cfg, nil
}

// cacheRow stores a row read from or written to the database. A concurrent
// writer may already have cached a newer version; that value is kept.
func (s *generalConfigServiceImpl) cacheRow(cfg models.GeneralConfig, version int64, msg string) {
	applied, status := s.cache.SetIfNotOlder(cfg, version)
	if !applied {
		s.logger.Debug("Cache already holds a newer general config",
			zap.Int64("version", version),
			zap.Int64("cached_version", s.cache.Version()),
		)
		return
	}
	cacheWritesTotal.WithLabelValues(status.String()).Inc()
	s.logger.Debug(msg,
		zap.Int64("version", version),
		zap.Stringer("write_status", status),
	)
}

func (s *generalConfigServiceImpl) Update(ctx context.Context, patch models.GeneralConfigPatch) (models.GeneralConfig, error) {
	if err := validatePatch(patch); err != nil {
		return models.GeneralConfig{}, err
	}

	// Сначала БД, кэш только после подтверждённой записи.
	row, err := s.repo.UpdateGeneralRow(ctx, patch)
	if err != nil {
		s.logger.Error("Failed to update general config row", zap.Error(err))
		return models.GeneralConfig{}, err
	}

	cfg := row.ToConfig()
	s.cacheRow(cfg, row.Version, "General config cached after update")
	s.logger.Info("General config updated", zap.Int64("version", row.Version))

	s.broadcast(ctx, cfg, row.Version, row.UpdatedAt)
	return cfg, nil
}

func (s *generalConfigServiceImpl) broadcast(ctx context.Context, cfg models.GeneralConfig, version int64, updatedAt time.Time) {
	if s.publisher != nil {
		event := models.GeneralConfigUpdatedEvent{
			EventID:   uuid.NewString(),
			Origin:    s.origin,
			Version:   version,
			General:   cfg,
			UpdatedAt: updatedAt,
		}
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishGeneralConfigUpdated(pubCtx, event); err != nil {
			s.logger.Error("Failed to publish general config update",
				zap.String("event_id", event.EventID),
				zap.Int64("version", version),
				zap.Error(err),
			)
		}
	}
	if s.notifier != nil {
		s.notifier.Notify(models.EventGeneralConfigUpdated, cfg)
	}
}

func (s *generalConfigServiceImpl) Refresh(ctx context.Context) (models.GeneralConfig, error) {
	s.cache.Clear()
	return s.loadFromDB(ctx)
}

func (s *generalConfigServiceImpl) ClearCache() {
	s.cache.Clear()
}

func (s *generalConfigServiceImpl) ApplyRemoteUpdate(event models.GeneralConfigUpdatedEvent) bool {
	log := s.logger.With(
		zap.String("event_id", event.EventID),
		zap.String("origin", event.Origin),
		zap.Int64("version", event.Version),
	)
	if event.Origin == s.origin {
		log.Debug("Skipping own general config event")
		return false
	}
	applied, status := s.cache.ApplyIfNewer(event.General, event.Version)
	if !applied {
		log.Debug("Ignoring stale general config event", zap.Int64("cached_version", s.cache.Version()))
		return false
	}
	cacheWritesTotal.WithLabelValues(status.String()).Inc()
	log.Info("Applied general config update from another instance", zap.Stringer("write_status", status))
	if s.notifier != nil {
		s.notifier.Notify(models.EventGeneralConfigUpdated, event.General)
	}
	return true
}

func validatePatch(p models.GeneralConfigPatch) error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", models.ErrInvalidInput)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", models.ErrInvalidInput)
	}
	if p.Theme != nil && !models.IsValidTheme(*p.Theme) {
		return fmt.Errorf("%w: unknown theme %q", models.ErrInvalidInput, *p.Theme)
	}
	if p.Color != nil {
		c := p.Color
		if c.HeaderColor == "" || c.ContentColor == "" || c.ContainerColor == "" {
			return fmt.Errorf("%w: headerColor, contentColor and containerColor are required", models.ErrInvalidInput)
		}
	}
	return nil
}
