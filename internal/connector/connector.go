package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Document is the payload shape a connector source delivers for one document.
// IDs are assigned by the connector and stay stable across syncs, which is
// what makes upsert-by-id work on repeat pulls.
type Document struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Department string   `json:"department"`
	Date       string   `json:"date"`
	Tags       []string `json:"tags"`
	Source     string   `json:"source"`
	FilePath   string   `json:"filePath"`
}

// Source pulls documents from an external departmental system on demand.
type Source interface {
	IngestDocuments(ctx context.Context, connectorID string) ([]Document, error)
}

// HTTPSource fetches connector documents from a remote HTTP endpoint.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

var _ Source = (*HTTPSource)(nil)

// NewHTTP creates an HTTPSource for the given base URL with an
// otelhttp-instrumented client.
func NewHTTP(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (s *HTTPSource) IngestDocuments(ctx context.Context, connectorID string) ([]Document, error) {
	endpoint := fmt.Sprintf("%s/connectors/%s/documents", s.baseURL, url.PathEscape(connectorID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("connector %q responded with status %d", connectorID, resp.StatusCode)
	}

	var docs []Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode connector response: %w", err)
	}
	return docs, nil
}
