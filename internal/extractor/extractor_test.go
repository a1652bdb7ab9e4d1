package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/model"
)

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Extract(context.Background(), model.RawFile{Name: "a.pdf"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPExtractor_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/extract", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var file model.RawFile
		require.NoError(t, json.NewDecoder(r.Body).Decode(&file))
		assert.Equal(t, "report.pdf", file.Name)

		json.NewEncoder(w).Encode(model.FileMetadata{
			Title:      "Annual Report",
			Date:       "2024-03-15",
			Department: "Finance",
			Tags:       []string{"annual"},
		})
	}))
	defer srv.Close()

	ext := NewHTTP(srv.URL, 2*time.Second)
	md, err := ext.Extract(context.Background(), model.RawFile{Name: "report.pdf", MimeType: "application/pdf"})

	require.NoError(t, err)
	assert.Equal(t, "Annual Report", md.Title)
	assert.Equal(t, "2024-03-15", md.Date)
	assert.Equal(t, "Finance", md.Department)
	assert.Equal(t, []string{"annual"}, md.Tags)
}

func TestHTTPExtractor_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ext := NewHTTP(srv.URL, 2*time.Second)
	_, err := ext.Extract(context.Background(), model.RawFile{Name: "report.pdf"})

	assert.ErrorContains(t, err, "status 500")
}

func TestHTTPExtractor_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	ext := NewHTTP(srv.URL, time.Second)
	_, err := ext.Extract(context.Background(), model.RawFile{Name: "report.pdf"})

	assert.Error(t, err)
}
