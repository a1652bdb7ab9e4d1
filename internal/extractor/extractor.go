package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dochub/internal/model"
)

// ErrUnavailable signals that no extraction backend is configured.
var ErrUnavailable = errors.New("metadata extractor unavailable")

// Extractor derives descriptive metadata for a single file. Implementations
// may fail per call; callers are expected to substitute default metadata.
type Extractor interface {
	Extract(ctx context.Context, file model.RawFile) (model.FileMetadata, error)
}

// Unavailable is the null-object Extractor selected when no backend is
// configured. Every call fails with ErrUnavailable, which makes the
// ingestion pipeline fall back to filename/date-derived defaults without
// special-casing the missing capability.
type Unavailable struct{}

var _ Extractor = Unavailable{}

func (Unavailable) Extract(context.Context, model.RawFile) (model.FileMetadata, error) {
	return model.FileMetadata{}, ErrUnavailable
}

// HTTPExtractor calls a remote extraction service over HTTP. The file
// descriptor is posted as JSON and the service answers with FileMetadata.
type HTTPExtractor struct {
	baseURL string
	client  *http.Client
}

var _ Extractor = (*HTTPExtractor)(nil)

// NewHTTP creates an HTTPExtractor for the given base URL. Outbound requests
// are instrumented with otelhttp so extraction shows up in traces.
func NewHTTP(baseURL string, timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL: baseURL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, file model.RawFile) (model.FileMetadata, error) {
	body, err := json.Marshal(file)
	if err != nil {
		return model.FileMetadata{}, fmt.Errorf("encode file descriptor: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return model.FileMetadata{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return model.FileMetadata{}, fmt.Errorf("extractor request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.FileMetadata{}, fmt.Errorf("extractor responded with status %d", resp.StatusCode)
	}

	var md model.FileMetadata
	if err := json.NewDecoder(resp.Body).Decode(&md); err != nil {
		return model.FileMetadata{}, fmt.Errorf("decode extractor response: %w", err)
	}
	return md, nil
}
