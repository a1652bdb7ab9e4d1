package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	extractorMocks "dochub/internal/extractor/mocks"
	"dochub/internal/model"
)

func TestExtractAll_Unavailable(t *testing.T) {
	// 2024-03-15T10:30:00Z
	modified := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC).UnixMilli()

	adapter := NewExtractorAdapter(nil, nil)
	set := adapter.ExtractAll(context.Background(), []model.RawFile{
		{Name: "report.pdf", MimeType: "application/pdf", SizeBytes: 1024, LastModifiedEpochMs: modified},
	})

	require.Equal(t, 1, set.Len())
	md, ok := set.Get("report.pdf")
	require.True(t, ok)
	assert.Equal(t, "report", md.Title)
	assert.Equal(t, "2024-03-15", md.Date)
	assert.Equal(t, "", md.Department)
	assert.Equal(t, []string{}, md.Tags)
}

func TestExtractAll_PartialFailure(t *testing.T) {
	ext := new(extractorMocks.MockExtractor)
	good := model.RawFile{Name: "plan.docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
	bad := model.RawFile{Name: "broken.pdf", MimeType: "application/pdf", LastModifiedEpochMs: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC).UnixMilli()}

	ext.On("Extract", mock.Anything, good).Return(model.FileMetadata{
		Title:      "Quarterly Plan",
		Date:       "2024-01-10",
		Department: "Finance",
		Tags:       []string{"plan"},
	}, nil)
	ext.On("Extract", mock.Anything, bad).Return(model.FileMetadata{}, errors.New("parse failure"))

	adapter := NewExtractorAdapter(ext, nil)
	set := adapter.ExtractAll(context.Background(), []model.RawFile{good, bad})

	require.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"plan.docx", "broken.pdf"}, set.Names())

	md, _ := set.Get("plan.docx")
	assert.Equal(t, "Quarterly Plan", md.Title)
	assert.Equal(t, "Finance", md.Department)

	fallback, _ := set.Get("broken.pdf")
	assert.Equal(t, "broken", fallback.Title)
	assert.Equal(t, "2023-07-01", fallback.Date)
	assert.Empty(t, fallback.Department)

	ext.AssertExpectations(t)
}

func TestExtractAll_ReExtractionReplaces(t *testing.T) {
	ext := new(extractorMocks.MockExtractor)
	file := model.RawFile{Name: "notes.txt", MimeType: "text/plain"}

	ext.On("Extract", mock.Anything, file).Return(model.FileMetadata{Title: "First pass", Tags: []string{}}, nil).Once()
	ext.On("Extract", mock.Anything, file).Return(model.FileMetadata{Title: "Second pass", Tags: []string{}}, nil).Once()

	adapter := NewExtractorAdapter(ext, nil)
	adapter.ExtractAll(context.Background(), []model.RawFile{file})
	set := adapter.ExtractAll(context.Background(), []model.RawFile{file})

	require.Equal(t, 1, set.Len())
	md, _ := set.Get("notes.txt")
	assert.Equal(t, "Second pass", md.Title)
}

func TestDefaultMetadata_Titles(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		wantTitle string
	}{
		{"trailing extension stripped", "summary.pdf", "summary"},
		{"only the last extension stripped", "archive.tar.gz", "archive.tar"},
		{"no separator keeps full name", "README", "README"},
		{"leading dot keeps full name", ".gitignore", ".gitignore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := defaultMetadata(model.RawFile{Name: tt.fileName})
			assert.Equal(t, tt.wantTitle, md.Title)
		})
	}
}
