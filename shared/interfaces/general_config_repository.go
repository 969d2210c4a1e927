package interfaces

import (
	"context"

	"hospital-server/shared/models"
)

// GeneralConfigRepository is the system of record for the general configuration.
type GeneralConfigRepository interface {
	// FetchGeneralRow returns the configuration row (id = 1).
	// Returns models.ErrNotFound if the row does not exist.
	FetchGeneralRow(ctx context.Context) (*models.GeneralConfigRow, error)

	// UpdateGeneralRow applies a partial update and returns the updated row.
	// Returns models.ErrNotFound if the row does not exist and wraps models.ErrDatabase
	// when the write is rejected.
	UpdateGeneralRow(ctx context.Context, patch models.GeneralConfigPatch) (*models.GeneralConfigRow, error)

	// EnsureGeneralRow inserts the row with the given defaults if it is missing.
	EnsureGeneralRow(ctx context.Context, defaults models.GeneralConfig) error
}
