package service

import (
	"context"

	"hospital-server/internal/configstore"
	"hospital-server/shared/models"
)

// GeneralConfigService serves and updates the deployment-wide general configuration.
type GeneralConfigService interface {
	Get(ctx context.Context) (models.GeneralConfig, error)
	Update(ctx context.Context, patch models.GeneralConfigPatch) (models.GeneralConfig, error)
	Refresh(ctx context.Context) (models.GeneralConfig, error) // Сброс кэша и перечитывание из БД
	ClearCache()
	// ApplyRemoteUpdate применяет событие от другого инстанса.
	ApplyRemoteUpdate(event models.GeneralConfigUpdatedEvent) bool
	Origin() string
}

// ConfigCache is the part of configstore.Store the service relies on.
type ConfigCache interface {
	Get() (models.GeneralConfig, bool)
	Version() int64
	SetIfNotOlder(cfg models.GeneralConfig, version int64) (bool, configstore.WriteStatus)
	ApplyIfNewer(cfg models.GeneralConfig, version int64) (bool, configstore.WriteStatus)
	Clear()
}

var _ ConfigCache = (*configstore.Store)(nil)
