package store

import (
	"context"

	"dochub/internal/model"
)

// DocumentStore is a keyed, ordered collection of document records shared by
// the manual-submission and connector-ingestion paths.
//
// Upsert is keyed solely by record id: an existing record is replaced in
// place (it keeps its position in the collection), a new one is appended.
// Implementations must serialize upserts and make writes atomic from a
// reader's point of view — ListAll never observes a half-written collection.
type DocumentStore interface {
	Upsert(ctx context.Context, rec *model.DocumentRecord) error
	ListAll(ctx context.Context) ([]model.DocumentRecord, error)
}
