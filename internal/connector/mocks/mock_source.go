package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dochub/internal/connector"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) IngestDocuments(ctx context.Context, connectorID string) ([]connector.Document, error) {
	args := m.Called(ctx, connectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]connector.Document), args.Error(1)
}
