package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"dochub/internal/config"
	"dochub/internal/model"
)

// DocumentIngested is published after a record is successfully upserted, so
// downstream systems (search indexers, departmental dashboards) can react.
type DocumentIngested struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Category   string               `json:"category"`
	Status     model.DocumentStatus `json:"status"`
	Source     string               `json:"source,omitempty"`
	OccurredAt time.Time            `json:"occurredAt"`
}

// Publisher emits ingestion events. Publishing is best-effort: the ingestion
// pipeline logs failures but never fails a call because of them.
type Publisher interface {
	DocumentIngested(ctx context.Context, evt DocumentIngested) error
}

// Noop is the null-object Publisher used when no broker is configured.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) DocumentIngested(context.Context, DocumentIngested) error { return nil }

// NATSPublisher publishes ingestion events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATS connects to the configured NATS server. The connection reconnects
// indefinitely so a broker restart does not take ingestion down with it.
func NewNATS(cfg config.NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

func (p *NATSPublisher) DocumentIngested(_ context.Context, evt DocumentIngested) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
