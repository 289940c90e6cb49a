package moderation_test

import (
	"context"
	"modflow/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, entry *models.ModerationLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
