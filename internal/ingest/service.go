package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dochub/internal/connector"
	"dochub/internal/events"
	"dochub/internal/extractor"
	"dochub/internal/model"
	"dochub/internal/storage"
	"dochub/internal/store"
)

var (
	ErrTitleRequired        = errors.New("title is required")
	ErrCategoryRequired     = errors.New("category is required")
	ErrAccessLevelRequired  = errors.New("access level is required")
	ErrNoValidFiles         = errors.New("no files in the batch passed validation")
	ErrConnectorUnavailable = errors.New("connector pull failed")
)

// Upload pairs a file descriptor with its content stream. Content may be nil
// when only the descriptor is known; the record then carries a synthesized
// storage path instead of an object key.
type Upload struct {
	File    model.RawFile
	Content io.Reader
}

// SubmissionForm carries the user-confirmed fields of a manual submission.
// Tags is the free-text field as typed: comma-separated, possibly with
// blanks, cleaned up during record construction.
type SubmissionForm struct {
	Title       string
	Category    string
	Description string
	AccessLevel string
	Tags        string
	UploadedBy  string
}

// ProgressFunc is invoked after each unit of work. There is no contract on
// timing; it exists so a caller can surface batch progress.
type ProgressFunc func(stage string, done, total int)

// Service sequences the ingestion pipeline: validation, extraction,
// aggregation, record construction and the store write.
type Service interface {
	// IngestManual turns a user-submitted batch into one document record.
	// Form validation failures are returned before anything is written.
	// Per-file rejections are reported alongside the record; a batch with
	// no acceptable file fails with ErrNoValidFiles.
	IngestManual(ctx context.Context, uploads []Upload, form SubmissionForm) (*model.DocumentRecord, []Rejection, error)

	// IngestFromConnector pulls documents from the named connector and
	// upserts each as an auto-approved record. A failed pull fails the
	// whole call; a document that cannot be normalized is skipped.
	IngestFromConnector(ctx context.Context, connectorID string) ([]model.DocumentRecord, error)

	// ListDocuments returns the full current collection.
	ListDocuments(ctx context.Context) ([]model.DocumentRecord, error)
}

type service struct {
	docs      store.DocumentStore
	adapter   *ExtractorAdapter
	objects   storage.Storage
	source    connector.Source
	publisher events.Publisher
	metrics   *Metrics
	progress  ProgressFunc

	now   func() time.Time
	newID func() string
}

// Option configures optional collaborators of the service.
type Option func(*service)

// WithObjectStorage streams accepted file content to an object store and
// records the object key as the file's storage path.
func WithObjectStorage(s storage.Storage) Option {
	return func(svc *service) { svc.objects = s }
}

// WithConnectorSource enables connector ingestion.
func WithConnectorSource(src connector.Source) Option {
	return func(svc *service) { svc.source = src }
}

// WithPublisher emits an event after every successful upsert.
func WithPublisher(p events.Publisher) Option {
	return func(svc *service) { svc.publisher = p }
}

// WithMetrics wires prometheus instruments into the pipeline.
func WithMetrics(m *Metrics) Option {
	return func(svc *service) { svc.metrics = m }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(svc *service) { svc.progress = fn }
}

// NewService constructs the ingestion orchestrator. The extractor may be nil
// when the capability is absent; every file then receives default metadata.
func NewService(docs store.DocumentStore, ext extractor.Extractor, opts ...Option) Service {
	svc := &service{
		docs:  docs,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.adapter = NewExtractorAdapter(ext, svc.metrics)
	return svc
}

func (s *service) IngestManual(ctx context.Context, uploads []Upload, form SubmissionForm) (*model.DocumentRecord, []Rejection, error) {
	if strings.TrimSpace(form.Title) == "" {
		return nil, nil, ErrTitleRequired
	}
	if strings.TrimSpace(form.Category) == "" {
		return nil, nil, ErrCategoryRequired
	}
	if strings.TrimSpace(form.AccessLevel) == "" {
		return nil, nil, ErrAccessLevelRequired
	}

	files := make([]model.RawFile, len(uploads))
	for i, up := range uploads {
		files[i] = up.File
	}

	accepted, rejections := Validate(files)
	for _, r := range rejections {
		logIngest(map[string]any{
			"event":  "file_rejected",
			"file":   r.FileName,
			"reason": string(r.Reason),
		})
		if s.metrics != nil {
			s.metrics.FilesRejected.WithLabelValues(string(r.Reason)).Inc()
		}
	}
	if len(accepted) == 0 {
		return nil, rejections, ErrNoValidFiles
	}
	s.step("validated", len(accepted), len(uploads))

	// Validate keeps input order, so accepted is an ordered subsequence of
	// uploads; walk both to recover the content readers.
	acceptedUploads := make([]Upload, 0, len(accepted))
	j := 0
	for _, up := range uploads {
		if j < len(accepted) && up.File == accepted[j] {
			acceptedUploads = append(acceptedUploads, up)
			j++
		}
	}

	metadata := s.adapter.ExtractAll(ctx, accepted)
	s.step("extracted", len(accepted), len(accepted))

	summary := Summarize(metadata)

	var storedKeys []string
	entries := make([]model.FileEntry, 0, len(acceptedUploads))
	for _, up := range acceptedUploads {
		storagePath, stored, err := s.storeContent(ctx, up)
		if err != nil {
			s.rollbackObjects(ctx, storedKeys)
			return nil, rejections, fmt.Errorf("store file content: %w", err)
		}
		if stored {
			storedKeys = append(storedKeys, storagePath)
		}

		md, _ := metadata.Get(up.File.Name)
		entries = append(entries, model.FileEntry{
			Name:                up.File.Name,
			SizeBytes:           up.File.SizeBytes,
			MimeType:            up.File.MimeType,
			LastModifiedEpochMs: up.File.LastModifiedEpochMs,
			StoragePath:         storagePath,
			Metadata: model.FileEntryMetadata{
				ExtractedTitle:      md.Title,
				ExtractedDate:       md.Date,
				ExtractedDepartment: md.Department,
				ExtractedTags:       cleanTags(md.Tags),
			},
		})
	}

	rec := &model.DocumentRecord{
		ID:                s.newID(),
		Title:             strings.TrimSpace(form.Title),
		Category:          strings.TrimSpace(form.Category),
		Description:       form.Description,
		Tags:              splitTags(form.Tags),
		AccessLevel:       strings.TrimSpace(form.AccessLevel),
		Files:             entries,
		UploadedBy:        form.UploadedBy,
		UploadedAt:        s.now().UTC(),
		Status:            model.StatusPending,
		Downloads:         0,
		Views:             0,
		ExtractedMetadata: summary,
	}

	if err := s.docs.Upsert(ctx, rec); err != nil {
		s.rollbackObjects(ctx, storedKeys)
		return nil, rejections, fmt.Errorf("persist document record: %w", err)
	}
	s.step("stored", 1, 1)

	if s.metrics != nil {
		s.metrics.DocumentsIngested.WithLabelValues("manual").Inc()
	}
	s.publish(ctx, rec)

	return rec, rejections, nil
}

func (s *service) IngestFromConnector(ctx context.Context, connectorID string) ([]model.DocumentRecord, error) {
	if s.source == nil {
		return nil, ErrConnectorUnavailable
	}

	docs, err := s.source.IngestDocuments(ctx, connectorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectorUnavailable, err)
	}

	records := make([]model.DocumentRecord, 0, len(docs))
	for i, doc := range docs {
		rec, err := normalizeConnectorDocument(connectorID, doc, s.now().UTC())
		if err != nil {
			logIngest(map[string]any{
				"event":     "connector_document_skipped",
				"connector": connectorID,
				"error":     err.Error(),
			})
			if s.metrics != nil {
				s.metrics.NormalizationSkipped.Inc()
			}
			continue
		}

		if err := s.docs.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("persist document record: %w", err)
		}
		if s.metrics != nil {
			s.metrics.DocumentsIngested.WithLabelValues("connector").Inc()
		}
		s.publish(ctx, rec)
		records = append(records, *rec)
		s.step("connector_sync", i+1, len(docs))
	}

	return records, nil
}

func (s *service) ListDocuments(ctx context.Context) ([]model.DocumentRecord, error) {
	return s.docs.ListAll(ctx)
}

// storeContent streams the upload to object storage when both a client and
// content are available; otherwise it synthesizes a deterministic local
// path. The second return reports whether an object was actually written.
func (s *service) storeContent(ctx context.Context, up Upload) (string, bool, error) {
	if s.objects == nil || up.Content == nil {
		return path.Join("uploads", up.File.Name), false, nil
	}

	key := filepath.ToSlash(filepath.Join("documents", s.newID()+filepath.Ext(up.File.Name)))
	info, err := s.objects.Put(ctx, key, up.Content, storage.PutObjectOptions{
		Size:        up.File.SizeBytes,
		ContentType: up.File.MimeType,
		Metadata:    map[string]string{"original-filename": up.File.Name},
	})
	if err != nil {
		return "", false, err
	}
	return info.Key, true, nil
}

// rollbackObjects removes objects written before a failed store write so the
// bucket does not accumulate orphans.
func (s *service) rollbackObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.objects.Delete(ctx, key); err != nil {
			logIngest(map[string]any{
				"event": "rollback_delete_failed",
				"key":   key,
				"error": err.Error(),
				"level": "error",
			})
		}
	}
}

func (s *service) publish(ctx context.Context, rec *model.DocumentRecord) {
	if s.publisher == nil {
		return
	}
	evt := events.DocumentIngested{
		ID:         rec.ID,
		Title:      rec.Title,
		Category:   rec.Category,
		Status:     rec.Status,
		Source:     rec.Source,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.DocumentIngested(ctx, evt); err != nil {
		logIngest(map[string]any{
			"event": "event_publish_failed",
			"id":    rec.ID,
			"error": err.Error(),
			"level": "error",
		})
	}
}

func (s *service) step(stage string, done, total int) {
	if s.progress != nil {
		s.progress(stage, done, total)
	}
}

// departmentCategories maps connector departments onto store categories.
// Anything unmapped lands in the generic technical category.
var departmentCategories = map[string]string{
	"Engineering": "technical",
	"HR":          "hr",
	"Finance":     "financial",
	"Operations":  "operations",
	"Legal":       "legal",
}

const defaultCategory = "technical"

// normalizeConnectorDocument turns one connector payload into a document
// record. The connector-supplied id is kept so a repeat sync updates the
// record in place instead of duplicating it.
func normalizeConnectorDocument(connectorID string, doc connector.Document, now time.Time) (*model.DocumentRecord, error) {
	if doc.ID == "" {
		return nil, errors.New("connector document has no id")
	}

	title := doc.Title
	if title == "" {
		title = doc.ID
	}

	category, ok := departmentCategories[doc.Department]
	if !ok {
		category = defaultCategory
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode connector payload: %w", err)
	}

	description := fmt.Sprintf("Document synced from connector %q", connectorID)
	if doc.Source != "" {
		description = fmt.Sprintf("Document synced from connector %q (source: %s)", connectorID, doc.Source)
	}

	tags := cleanTags(doc.Tags)

	fileName := title
	if doc.FilePath != "" {
		fileName = path.Base(doc.FilePath)
	}
	entry := model.FileEntry{
		Name:        fileName,
		MimeType:    "application/octet-stream",
		StoragePath: doc.FilePath,
		Metadata: model.FileEntryMetadata{
			ExtractedTitle:      title,
			ExtractedDate:       doc.Date,
			ExtractedDepartment: doc.Department,
			ExtractedTags:       tags,
		},
	}

	set := model.NewMetadataSet()
	set.Put(fileName, model.FileMetadata{
		Title:      title,
		Date:       doc.Date,
		Department: doc.Department,
		Tags:       tags,
	})

	return &model.DocumentRecord{
		ID:                doc.ID,
		Title:             title,
		Category:          category,
		Description:       description,
		Tags:              tags,
		AccessLevel:       "internal",
		Files:             []model.FileEntry{entry},
		UploadedBy:        "connector:" + connectorID,
		UploadedAt:        now,
		Status:            model.StatusApproved,
		Downloads:         0,
		Views:             0,
		ExtractedMetadata: Summarize(set),
		Source:            doc.Source,
		ConnectorData:     raw,
	}, nil
}

// splitTags splits the free-text tags field on commas, trims each entry and
// drops blanks. The result is never nil so records serialize as [].
func splitTags(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// cleanTags applies the same trim-and-drop rule to an already-split list.
func cleanTags(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		if tag := strings.TrimSpace(t); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func logIngest(fields map[string]any) {
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	fields["component"] = "ingest"
	if _, ok := fields["level"]; !ok {
		fields["level"] = "info"
	}
	if b, err := json.Marshal(fields); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
