package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dochub/internal/model"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, file model.RawFile) (model.FileMetadata, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(model.FileMetadata), args.Error(1)
}
