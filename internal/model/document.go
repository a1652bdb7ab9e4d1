package model

import (
	"encoding/json"
	"time"
)

// DocumentStatus is the review state of a stored document record.
type DocumentStatus string

const (
	// StatusPending marks records created through manual submission; they wait for review.
	StatusPending DocumentStatus = "pending"
	// StatusApproved marks records ingested from a connector; those are auto-approved.
	StatusApproved DocumentStatus = "approved"
)

// RawFile describes a file offered for ingestion before any content is read.
// It is owned by the caller for the duration of one ingestion call and never mutated.
type RawFile struct {
	Name                string `json:"name"`
	MimeType            string `json:"mimeType"`
	SizeBytes           int64  `json:"sizeBytes"`
	LastModifiedEpochMs int64  `json:"lastModifiedEpochMs"`
}

// FileEntryMetadata carries the extracted (or defaulted) metadata of one file
// as persisted inside a DocumentRecord.
type FileEntryMetadata struct {
	ExtractedTitle      string   `json:"extractedTitle"`
	ExtractedDate       string   `json:"extractedDate"`
	ExtractedDepartment string   `json:"extractedDepartment"`
	ExtractedTags       []string `json:"extractedTags"`
}

// FileEntry is one file attached to a DocumentRecord.
type FileEntry struct {
	Name                string            `json:"name"`
	SizeBytes           int64             `json:"sizeBytes"`
	MimeType            string            `json:"mimeType"`
	LastModifiedEpochMs int64             `json:"lastModifiedEpochMs"`
	StoragePath         string            `json:"storagePath"`
	Metadata            FileEntryMetadata `json:"metadata"`
}

// DocumentRecord is the persisted unit of the store. ID is the sole identity
// and the sole upsert key. Downloads and Views are owned by collaborators
// outside ingestion and are never touched after record construction.
type DocumentRecord struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Category          string          `json:"category"`
	Description       string          `json:"description"`
	Tags              []string        `json:"tags"`
	AccessLevel       string          `json:"accessLevel"`
	Files             []FileEntry     `json:"files"`
	UploadedBy        string          `json:"uploadedBy"`
	UploadedAt        time.Time       `json:"uploadedAt"`
	Status            DocumentStatus  `json:"status"`
	Downloads         int             `json:"downloads"`
	Views             int             `json:"views"`
	ExtractedMetadata MetadataSummary `json:"extractedMetadata"`
	Source            string          `json:"source,omitempty"`
	ConnectorData     json.RawMessage `json:"connectorData,omitempty"`
}
