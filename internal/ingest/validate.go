package ingest

import (
	"fmt"

	"dochub/internal/model"
)

// MaxFileSizeBytes is the inclusive upload ceiling: a file of exactly this
// size is accepted.
const MaxFileSizeBytes int64 = 50 * 1024 * 1024

// allowedMimeTypes covers common office-document, plain-text and raster-image types.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/vnd.ms-powerpoint":                                     {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"text/plain": {},
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// RejectReason classifies why a file was excluded from a batch.
type RejectReason string

const (
	RejectUnsupportedType RejectReason = "unsupported_type"
	RejectTooLarge        RejectReason = "too_large"
)

// Rejection reports one excluded file. Rejections are batch-scoped, not
// fatal: the rest of the batch keeps going.
type Rejection struct {
	FileName string       `json:"fileName"`
	Reason   RejectReason `json:"reason"`
}

func (r Rejection) String() string {
	switch r.Reason {
	case RejectTooLarge:
		return fmt.Sprintf("%s: file exceeds the %d MiB limit", r.FileName, MaxFileSizeBytes>>20)
	default:
		return fmt.Sprintf("%s: unsupported file type", r.FileName)
	}
}

// Validate filters a raw file batch down to the acceptable subset, in input
// order, reporting every excluded file individually. A file failing both
// checks is reported once, for its type.
func Validate(files []model.RawFile) ([]model.RawFile, []Rejection) {
	accepted := make([]model.RawFile, 0, len(files))
	var rejected []Rejection

	for _, f := range files {
		if _, ok := allowedMimeTypes[f.MimeType]; !ok {
			rejected = append(rejected, Rejection{FileName: f.Name, Reason: RejectUnsupportedType})
			continue
		}
		if f.SizeBytes > MaxFileSizeBytes {
			rejected = append(rejected, Rejection{FileName: f.Name, Reason: RejectTooLarge})
			continue
		}
		accepted = append(accepted, f)
	}

	return accepted, rejected
}
