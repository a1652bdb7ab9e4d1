package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dochub/internal/connector"
	connectorMocks "dochub/internal/connector/mocks"
	eventMocks "dochub/internal/events/mocks"
	"dochub/internal/model"
	"dochub/internal/storage"
	storageMocks "dochub/internal/storage/mocks"
	"dochub/internal/store/jsonfile"
	storeMocks "dochub/internal/store/mocks"
)

var fixedNow = time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)

// newTestService builds a service with deterministic time and id generation.
func newTestService(docs *storeMocks.MockDocumentStore, opts ...Option) *service {
	svc := NewService(docs, nil, opts...).(*service)
	svc.now = func() time.Time { return fixedNow }

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc
}

func TestIngestManual(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	docs.On("Upsert", mock.Anything, mock.AnythingOfType("*model.DocumentRecord")).Return(nil)

	svc := newTestService(docs)

	uploads := []Upload{
		{File: model.RawFile{Name: "budget.pdf", MimeType: "application/pdf", SizeBytes: 4096}},
		{File: model.RawFile{Name: "malware.exe", MimeType: "application/x-msdownload", SizeBytes: 1}},
	}
	form := SubmissionForm{
		Title:       "  Q1 Budget  ",
		Category:    "financial",
		Description: "First quarter numbers",
		AccessLevel: "internal",
		Tags:        "budget, Q1, finance, ",
		UploadedBy:  "alice",
	}

	rec, rejected, err := svc.IngestManual(context.Background(), uploads, form)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "Q1 Budget", rec.Title)
	assert.Equal(t, "financial", rec.Category)
	assert.Equal(t, []string{"budget", "Q1", "finance"}, rec.Tags)
	assert.Equal(t, model.StatusPending, rec.Status)
	assert.Equal(t, 0, rec.Downloads)
	assert.Equal(t, 0, rec.Views)
	assert.Equal(t, "alice", rec.UploadedBy)
	assert.Equal(t, fixedNow, rec.UploadedAt)
	assert.NotEmpty(t, rec.ID)

	require.Len(t, rec.Files, 1)
	assert.Equal(t, "budget.pdf", rec.Files[0].Name)
	assert.Equal(t, "uploads/budget.pdf", rec.Files[0].StoragePath)
	assert.Equal(t, "budget", rec.Files[0].Metadata.ExtractedTitle)

	assert.Equal(t, 1, rec.ExtractedMetadata.TotalFiles)

	require.Len(t, rejected, 1)
	assert.Equal(t, "malware.exe", rejected[0].FileName)
	assert.Equal(t, RejectUnsupportedType, rejected[0].Reason)

	docs.AssertExpectations(t)
}

func TestIngestManual_FormValidation(t *testing.T) {
	uploads := []Upload{
		{File: model.RawFile{Name: "doc.pdf", MimeType: "application/pdf", SizeBytes: 1}},
	}

	tests := []struct {
		name    string
		form    SubmissionForm
		wantErr error
	}{
		{
			name:    "missing title",
			form:    SubmissionForm{Category: "technical", AccessLevel: "internal"},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "blank category",
			form:    SubmissionForm{Title: "T", Category: "   ", AccessLevel: "internal"},
			wantErr: ErrCategoryRequired,
		},
		{
			name:    "missing access level",
			form:    SubmissionForm{Title: "T", Category: "technical"},
			wantErr: ErrAccessLevelRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := new(storeMocks.MockDocumentStore)
			svc := newTestService(docs)

			rec, _, err := svc.IngestManual(context.Background(), uploads, tt.form)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rec)
			docs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}

func TestIngestManual_AllFilesRejected(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	svc := newTestService(docs)

	uploads := []Upload{
		{File: model.RawFile{Name: "a.zip", MimeType: "application/zip", SizeBytes: 1}},
		{File: model.RawFile{Name: "b.pdf", MimeType: "application/pdf", SizeBytes: MaxFileSizeBytes + 1}},
	}
	form := SubmissionForm{Title: "T", Category: "technical", AccessLevel: "internal"}

	rec, rejected, err := svc.IngestManual(context.Background(), uploads, form)
	assert.ErrorIs(t, err, ErrNoValidFiles)
	assert.Nil(t, rec)
	require.Len(t, rejected, 2)
	assert.Equal(t, RejectUnsupportedType, rejected[0].Reason)
	assert.Equal(t, RejectTooLarge, rejected[1].Reason)
	docs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestIngestManual_ObjectStorage(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	docs.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	objects := new(storageMocks.MockStorage)
	objects.On("Put", mock.Anything, "documents/id-1.pdf", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "documents/id-1.pdf", Size: 4}, nil)

	svc := newTestService(docs, WithObjectStorage(objects))

	uploads := []Upload{
		{
			File:    model.RawFile{Name: "plan.pdf", MimeType: "application/pdf", SizeBytes: 4},
			Content: strings.NewReader("%PDF"),
		},
	}
	form := SubmissionForm{Title: "Plan", Category: "technical", AccessLevel: "internal"}

	rec, _, err := svc.IngestManual(context.Background(), uploads, form)
	require.NoError(t, err)
	assert.Equal(t, "documents/id-1.pdf", rec.Files[0].StoragePath)

	objects.AssertExpectations(t)
	docs.AssertExpectations(t)
}

func TestIngestManual_UpsertFailureRollsBackObjects(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	docs.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	objects := new(storageMocks.MockStorage)
	objects.On("Put", mock.Anything, "documents/id-1.pdf", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "documents/id-1.pdf"}, nil)
	objects.On("Delete", mock.Anything, "documents/id-1.pdf").Return(nil)

	svc := newTestService(docs, WithObjectStorage(objects))

	uploads := []Upload{
		{
			File:    model.RawFile{Name: "plan.pdf", MimeType: "application/pdf", SizeBytes: 4},
			Content: strings.NewReader("%PDF"),
		},
	}
	form := SubmissionForm{Title: "Plan", Category: "technical", AccessLevel: "internal"}

	rec, _, err := svc.IngestManual(context.Background(), uploads, form)
	assert.Error(t, err)
	assert.Nil(t, rec)
	objects.AssertCalled(t, "Delete", mock.Anything, "documents/id-1.pdf")
}

func TestIngestManual_PublishesEvent(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	docs.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	publisher := new(eventMocks.MockPublisher)
	publisher.On("DocumentIngested", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(docs, WithPublisher(publisher))

	uploads := []Upload{
		{File: model.RawFile{Name: "doc.pdf", MimeType: "application/pdf", SizeBytes: 1}},
	}
	form := SubmissionForm{Title: "T", Category: "technical", AccessLevel: "internal"}

	_, _, err := svc.IngestManual(context.Background(), uploads, form)
	require.NoError(t, err)
	publisher.AssertNumberOfCalls(t, "DocumentIngested", 1)
}

func TestIngestManual_Progress(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	docs.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	var stages []string
	svc := newTestService(docs, WithProgress(func(stage string, done, total int) {
		stages = append(stages, stage)
	}))

	uploads := []Upload{
		{File: model.RawFile{Name: "doc.pdf", MimeType: "application/pdf", SizeBytes: 1}},
	}
	form := SubmissionForm{Title: "T", Category: "technical", AccessLevel: "internal"}

	_, _, err := svc.IngestManual(context.Background(), uploads, form)
	require.NoError(t, err)
	assert.Equal(t, []string{"validated", "extracted", "stored"}, stages)
}

func TestIngestFromConnector(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	docs.On("Upsert", mock.Anything, mock.AnythingOfType("*model.DocumentRecord")).Return(nil)

	source := new(connectorMocks.MockSource)
	source.On("IngestDocuments", mock.Anything, "sharepoint-1").Return([]connector.Document{
		{
			ID:         "ext-42",
			Title:      "Onboarding Guide",
			Department: "HR",
			Date:       "2024-02-01",
			Tags:       []string{" onboarding ", "", "people"},
			Source:     "sharepoint",
			FilePath:   "/sites/hr/onboarding-guide.docx",
		},
	}, nil)

	svc := newTestService(docs, WithConnectorSource(source))

	records, err := svc.IngestFromConnector(context.Background(), "sharepoint-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ext-42", rec.ID)
	assert.Equal(t, "Onboarding Guide", rec.Title)
	assert.Equal(t, "hr", rec.Category)
	assert.Equal(t, []string{"onboarding", "people"}, rec.Tags)
	assert.Equal(t, "internal", rec.AccessLevel)
	assert.Equal(t, "connector:sharepoint-1", rec.UploadedBy)
	assert.Equal(t, model.StatusApproved, rec.Status)
	assert.Equal(t, "sharepoint", rec.Source)
	assert.Contains(t, rec.Description, `connector "sharepoint-1"`)
	assert.Contains(t, rec.Description, "source: sharepoint")

	require.Len(t, rec.Files, 1)
	assert.Equal(t, "onboarding-guide.docx", rec.Files[0].Name)
	assert.Equal(t, "/sites/hr/onboarding-guide.docx", rec.Files[0].StoragePath)

	var payload connector.Document
	require.NoError(t, json.Unmarshal(rec.ConnectorData, &payload))
	assert.Equal(t, "ext-42", payload.ID)

	assert.Equal(t, 1, rec.ExtractedMetadata.TotalFiles)
	assert.Equal(t, []string{"HR"}, rec.ExtractedMetadata.DepartmentsDetected)

	docs.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestIngestFromConnector_CategoryMapping(t *testing.T) {
	tests := []struct {
		department string
		want       string
	}{
		{"Engineering", "technical"},
		{"HR", "hr"},
		{"Finance", "financial"},
		{"Operations", "operations"},
		{"Legal", "legal"},
		{"Marketing", "technical"},
		{"", "technical"},
	}

	for _, tt := range tests {
		t.Run(tt.department, func(t *testing.T) {
			rec, err := normalizeConnectorDocument("c1", connector.Document{
				ID:         "d1",
				Department: tt.department,
			}, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Category)
		})
	}
}

func TestIngestFromConnector_TitleFallsBackToID(t *testing.T) {
	rec, err := normalizeConnectorDocument("c1", connector.Document{ID: "doc-7"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "doc-7", rec.Title)
	require.Len(t, rec.Files, 1)
	assert.Equal(t, "doc-7", rec.Files[0].Name)
}

func TestIngestFromConnector_SkipsDocumentsWithoutID(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	docs.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	source := new(connectorMocks.MockSource)
	source.On("IngestDocuments", mock.Anything, "c1").Return([]connector.Document{
		{Title: "no id"},
		{ID: "ext-1", Title: "kept"},
	}, nil)

	svc := newTestService(docs, WithConnectorSource(source))

	records, err := svc.IngestFromConnector(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ext-1", records[0].ID)
	docs.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestIngestFromConnector_ReSyncUpdatesInPlace(t *testing.T) {
	docs, err := jsonfile.New(filepath.Join(t.TempDir(), "documents.json"))
	require.NoError(t, err)

	source := new(connectorMocks.MockSource)
	source.On("IngestDocuments", mock.Anything, "c1").Return([]connector.Document{
		{ID: "ext-42", Title: "Old Title", Department: "HR"},
	}, nil).Once()
	source.On("IngestDocuments", mock.Anything, "c1").Return([]connector.Document{
		{ID: "ext-42", Title: "New Title", Department: "HR"},
	}, nil).Once()

	svc := NewService(docs, nil, WithConnectorSource(source)).(*service)
	svc.now = func() time.Time { return fixedNow }

	_, err = svc.IngestFromConnector(context.Background(), "c1")
	require.NoError(t, err)
	_, err = svc.IngestFromConnector(context.Background(), "c1")
	require.NoError(t, err)

	records, err := svc.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ext-42", records[0].ID)
	assert.Equal(t, "New Title", records[0].Title)
	assert.Equal(t, "hr", records[0].Category)
	assert.Equal(t, model.StatusApproved, records[0].Status)
}

func TestIngestFromConnector_PullFailure(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)

	source := new(connectorMocks.MockSource)
	source.On("IngestDocuments", mock.Anything, "c1").Return(nil, errors.New("gateway timeout"))

	svc := newTestService(docs, WithConnectorSource(source))

	records, err := svc.IngestFromConnector(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrConnectorUnavailable)
	assert.Nil(t, records)
	docs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestIngestFromConnector_NoSourceConfigured(t *testing.T) {
	svc := newTestService(new(storeMocks.MockDocumentStore))

	_, err := svc.IngestFromConnector(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrConnectorUnavailable)
}

func TestListDocuments(t *testing.T) {
	docs := new(storeMocks.MockDocumentStore)
	docs.On("ListAll", mock.Anything).Return([]model.DocumentRecord{{ID: "a"}, {ID: "b"}}, nil)

	svc := newTestService(docs)

	records, err := svc.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	docs.AssertExpectations(t)
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"trims and drops blanks", "budget, Q1, finance, ", []string{"budget", "Q1", "finance"}},
		{"empty input", "", []string{}},
		{"only separators", " , ,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitTags(tt.raw))
		})
	}
}
