package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"dochub/internal/model"
	"dochub/internal/store"
)

// DocumentStorePostgres is a PostgreSQL implementation of store.DocumentStore.
// It uses database/sql with parameterized queries and contains no business logic.
//
// Insertion order is kept in a BIGSERIAL position column; the ON CONFLICT
// upsert only touches the record columns, so a replaced record keeps its
// position instead of moving to the end. Statement-level atomicity of the
// single upsert query gives readers the all-or-nothing guarantee.
type DocumentStorePostgres struct {
	db *sql.DB
}

// NewDocumentStorePostgres creates a new DocumentStorePostgres.
func NewDocumentStorePostgres(db *sql.DB) *DocumentStorePostgres {
	return &DocumentStorePostgres{db: db}
}

var _ store.DocumentStore = (*DocumentStorePostgres)(nil)

const documentColumns = `id, title, category, description, tags, access_level, files,
	uploaded_by, uploaded_at, status, downloads, views, extracted_metadata, source, connector_data`

// Upsert inserts the record or fully replaces the row with the same id.
func (s *DocumentStorePostgres) Upsert(ctx context.Context, rec *model.DocumentRecord) error {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	files, err := json.Marshal(rec.Files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}
	summary, err := json.Marshal(rec.ExtractedMetadata)
	if err != nil {
		return fmt.Errorf("encode extracted metadata: %w", err)
	}

	var connectorData any
	if len(rec.ConnectorData) > 0 {
		connectorData = []byte(rec.ConnectorData)
	}

	const q = `
		INSERT INTO document_records
			(id, title, category, description, tags, access_level, files,
			 uploaded_by, uploaded_at, status, downloads, views, extracted_metadata, source, connector_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			tags = EXCLUDED.tags,
			access_level = EXCLUDED.access_level,
			files = EXCLUDED.files,
			uploaded_by = EXCLUDED.uploaded_by,
			uploaded_at = EXCLUDED.uploaded_at,
			status = EXCLUDED.status,
			downloads = EXCLUDED.downloads,
			views = EXCLUDED.views,
			extracted_metadata = EXCLUDED.extracted_metadata,
			source = EXCLUDED.source,
			connector_data = EXCLUDED.connector_data
	`
	_, err = s.db.ExecContext(ctx, q,
		rec.ID,
		rec.Title,
		rec.Category,
		rec.Description,
		tags,
		rec.AccessLevel,
		files,
		rec.UploadedBy,
		rec.UploadedAt,
		string(rec.Status),
		rec.Downloads,
		rec.Views,
		summary,
		rec.Source,
		connectorData,
	)
	if err != nil {
		return fmt.Errorf("upsert document record: %w", err)
	}
	return nil
}

// ListAll returns the full collection ordered by insertion position.
func (s *DocumentStorePostgres) ListAll(ctx context.Context) ([]model.DocumentRecord, error) {
	q := `SELECT ` + documentColumns + `
		FROM document_records
		ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list document records: %w", err)
	}
	defer rows.Close()

	records := make([]model.DocumentRecord, 0)
	for rows.Next() {
		var (
			rec           model.DocumentRecord
			status        string
			tags          []byte
			files         []byte
			summary       []byte
			connectorData []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.Category,
			&rec.Description,
			&tags,
			&rec.AccessLevel,
			&files,
			&rec.UploadedBy,
			&rec.UploadedAt,
			&status,
			&rec.Downloads,
			&rec.Views,
			&summary,
			&rec.Source,
			&connectorData,
		); err != nil {
			return nil, err
		}

		rec.Status = model.DocumentStatus(status)
		if err := json.Unmarshal(tags, &rec.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal(files, &rec.Files); err != nil {
			return nil, fmt.Errorf("decode files for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal(summary, &rec.ExtractedMetadata); err != nil {
			return nil, fmt.Errorf("decode extracted metadata for %s: %w", rec.ID, err)
		}
		if len(connectorData) > 0 {
			rec.ConnectorData = json.RawMessage(connectorData)
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
