package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hospital-server/shared/models"
)

// GeneralConfigService is a mock of service.GeneralConfigService.
type GeneralConfigService struct {
	mock.Mock
}

func (m *GeneralConfigService) Get(ctx context.Context) (models.GeneralConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.GeneralConfig), args.Error(1)
}

func (m *GeneralConfigService) Update(ctx context.Context, patch models.GeneralConfigPatch) (models.GeneralConfig, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(models.GeneralConfig), args.Error(1)
}

func (m *GeneralConfigService) Refresh(ctx context.Context) (models.GeneralConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.GeneralConfig), args.Error(1)
}

func (m *GeneralConfigService) ClearCache() {
	m.Called()
}

func (m *GeneralConfigService) ApplyRemoteUpdate(event models.GeneralConfigUpdatedEvent) bool {
	args := m.Called(event)
	return args.Bool(0)
}

func (m *GeneralConfigService) Origin() string {
	args := m.Called()
	return args.String(0)
}
