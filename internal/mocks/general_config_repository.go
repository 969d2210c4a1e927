package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hospital-server/shared/interfaces"
	"hospital-server/shared/models"
)

// GeneralConfigRepository is a mock of interfaces.GeneralConfigRepository.
type GeneralConfigRepository struct {
	mock.Mock
}

func (m *GeneralConfigRepository) FetchGeneralRow(ctx context.Context) (*models.GeneralConfigRow, error) {
	args := m.Called(ctx)
	row, _ := args.Get(0).(*models.GeneralConfigRow)
	return row, args.Error(1)
}

func (m *GeneralConfigRepository) UpdateGeneralRow(ctx context.Context, patch models.GeneralConfigPatch) (*models.GeneralConfigRow, error) {
	args := m.Called(ctx, patch)
	row, _ := args.Get(0).(*models.GeneralConfigRow)
	return row, args.Error(1)
}

func (m *GeneralConfigRepository) EnsureGeneralRow(ctx context.Context, defaults models.GeneralConfig) error {
	args := m.Called(ctx, defaults)
	return args.Error(0)
}

var _ interfaces.GeneralConfigRepository = (*GeneralConfigRepository)(nil)
