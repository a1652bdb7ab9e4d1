package ingest

import (
	"context"
	"strings"
	"time"

	"dochub/internal/extractor"
	"dochub/internal/model"
)

// ExtractorAdapter wraps the external metadata extraction capability and
// shields the pipeline from its failures: a file whose extraction fails (or
// an absent capability altogether) yields default metadata derived from the
// file name and modification time. One file's failure never aborts the rest.
type ExtractorAdapter struct {
	ext     extractor.Extractor
	metrics *Metrics
}

// NewExtractorAdapter constructs an adapter. A nil extractor is treated the
// same as extractor.Unavailable.
func NewExtractorAdapter(ext extractor.Extractor, metrics *Metrics) *ExtractorAdapter {
	if ext == nil {
		ext = extractor.Unavailable{}
	}
	return &ExtractorAdapter{ext: ext, metrics: metrics}
}

// ExtractAll derives metadata for every input file, sequentially and in
// input order. The result always holds exactly one entry per input file;
// re-invoking with the same names replaces their entries (last write wins).
func (a *ExtractorAdapter) ExtractAll(ctx context.Context, files []model.RawFile) *model.MetadataSet {
	set := model.NewMetadataSet()
	for _, f := range files {
		md, err := a.ext.Extract(ctx, f)
		if err != nil {
			logIngest(map[string]any{
				"event": "extraction_fallback",
				"file":  f.Name,
				"error": err.Error(),
			})
			if a.metrics != nil {
				a.metrics.ExtractionFallbacks.Inc()
			}
			md = defaultMetadata(f)
		}
		set.Put(f.Name, md)
	}
	return set
}

// defaultMetadata is the filename/date-derived fallback: title is the name
// with its trailing extension removed (or the full name if no separator
// exists), date is the UTC calendar date of the last modification.
func defaultMetadata(f model.RawFile) model.FileMetadata {
	title := f.Name
	if idx := strings.LastIndexByte(f.Name, '.'); idx > 0 {
		title = f.Name[:idx]
	}
	return model.FileMetadata{
		Title:      title,
		Date:       time.UnixMilli(f.LastModifiedEpochMs).UTC().Format("2006-01-02"),
		Department: "",
		Tags:       []string{},
	}
}
