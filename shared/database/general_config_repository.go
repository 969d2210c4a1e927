package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"hospital-server/shared/interfaces"
	"hospital-server/shared/models"
)

const (
	generalConfigColumns = `id, title, header_color, content_color, container_color, theme, logo_url, version, updated_at`

	fetchGeneralConfigQuery = `SELECT ` + generalConfigColumns + ` FROM general_config WHERE id = 1`

	// $6 = NULL оставляет logo_url как есть, пустая строка очищает его.
	updateGeneralConfigQuery = `
        UPDATE general_config SET
            title           = COALESCE($1, title),
            header_color    = COALESCE($2, header_color),
            content_color   = COALESCE($3, content_color),
            container_color = COALESCE($4, container_color),
            theme           = COALESCE($5, theme),
            logo_url        = CASE WHEN $6::text IS NULL THEN logo_url ELSE NULLIF($6::text, '') END,
            version         = version + 1,
            updated_at      = NOW()
        WHERE id = 1
        RETURNING ` + generalConfigColumns

	ensureGeneralConfigQuery = `
        INSERT INTO general_config (id, title, header_color, content_color, container_color, theme, logo_url)
        VALUES (1, $1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO NOTHING
    `
)

// Compile-time check
var _ interfaces.GeneralConfigRepository = (*pgGeneralConfigRepository)(nil)

type pgGeneralConfigRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgGeneralConfigRepository создает репозиторий общей конфигурации поверх pgx.
func NewPgGeneralConfigRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.GeneralConfigRepository {
	return &pgGeneralConfigRepository{
		db:     db,
		logger: logger.Named("GeneralConfigRepo"),
	}
}

// FetchGeneralRow returns the single configuration row.
func (r *pgGeneralConfigRepository) FetchGeneralRow(ctx context.Context) (*models.GeneralConfigRow, error) {
	var row models.GeneralConfigRow
	if err := pgxscan.Get(ctx, r.db, &row, fetchGeneralConfigQuery); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("General config row not found")
			return nil, models.ErrNotFound
		}
		r.logger.Error("Error fetching general config row", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to fetch general config: %w", models.ErrDatabase, err)
	}
	return &row, nil
}

// UpdateGeneralRow applies the non-nil sections of patch and returns the new row.
func (r *pgGeneralConfigRepository) UpdateGeneralRow(ctx context.Context, patch models.GeneralConfigPatch) (*models.GeneralConfigRow, error) {
	var headerColor, contentColor, containerColor *string
	if patch.Color != nil {
		headerColor = &patch.Color.HeaderColor
		contentColor = &patch.Color.ContentColor
		containerColor = &patch.Color.ContainerColor
	}

	var row models.GeneralConfigRow
	err := pgxscan.Get(ctx, r.db, &row, updateGeneralConfigQuery,
		patch.Title, headerColor, contentColor, containerColor, patch.Theme, patch.LogoURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("General config row not found on update")
			return nil, models.ErrNotFound
		}
		r.logger.Error("Error updating general config row", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to update general config: %w", models.ErrDatabase, err)
	}

	r.logger.Info("General config updated", zap.Int64("version", row.Version))
	return &row, nil
}

// EnsureGeneralRow seeds the row when a deployment starts with an empty table.
func (r *pgGeneralConfigRepository) EnsureGeneralRow(ctx context.Context, defaults models.GeneralConfig) error {
	tag, err := r.db.Exec(ctx, ensureGeneralConfigQuery,
		defaults.Title,
		defaults.Color.HeaderColor,
		defaults.Color.ContentColor,
		defaults.Color.ContainerColor,
		defaults.Theme,
		defaults.LogoURL,
	)
	if err != nil {
		r.logger.Error("Error seeding general config row", zap.Error(err))
		return fmt.Errorf("%w: failed to seed general config: %w", models.ErrDatabase, err)
	}
	if tag.RowsAffected() > 0 {
		r.logger.Info("General config row seeded with defaults")
	}
	return nil
}
