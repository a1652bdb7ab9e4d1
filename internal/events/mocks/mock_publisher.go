package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dochub/internal/events"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) DocumentIngested(ctx context.Context, evt events.DocumentIngested) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}
