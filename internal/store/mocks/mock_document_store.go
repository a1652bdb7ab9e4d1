package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dochub/internal/model"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Upsert(ctx context.Context, rec *model.DocumentRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockDocumentStore) ListAll(ctx context.Context) ([]model.DocumentRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRecord), args.Error(1)
}
