package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dochub/internal/ingest"
	"dochub/internal/model"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) IngestManual(ctx context.Context, uploads []ingest.Upload, form ingest.SubmissionForm) (*model.DocumentRecord, []ingest.Rejection, error) {
	args := m.Called(ctx, uploads, form)

	var rec *model.DocumentRecord
	if args.Get(0) != nil {
		rec = args.Get(0).(*model.DocumentRecord)
	}
	var rejections []ingest.Rejection
	if args.Get(1) != nil {
		rejections = args.Get(1).([]ingest.Rejection)
	}
	return rec, rejections, args.Error(2)
}

func (m *MockIngestService) IngestFromConnector(ctx context.Context, connectorID string) ([]model.DocumentRecord, error) {
	args := m.Called(ctx, connectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRecord), args.Error(1)
}

func (m *MockIngestService) ListDocuments(ctx context.Context) ([]model.DocumentRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRecord), args.Error(1)
}
