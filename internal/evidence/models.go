package evidence

import (
	"time"

	"github.com/google/uuid"
)

// ManifestEntry describes one successfully stored file. Entries are never
// mutated after creation; corrections require a new submission.
type ManifestEntry struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
	URL         string `json:"url"`
	Key         string `json:"key"`
}

// UploadError pairs a rejected or failed file with its reason.
type UploadError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BatchResult is the per-file manifest for one upload request. Partial
// success is a normal outcome: both the manifest and the error list are
// always populated from whatever happened.
type BatchResult struct {
	Success  bool            `json:"success"`
	Uploaded int             `json:"uploaded"`
	Failed   int             `json:"failed"`
	Files    []ManifestEntry `json:"files"`
	Errors   []UploadError   `json:"errors,omitempty"`
}

// Record is the persisted evidence row backing a manifest entry.
type Record struct {
	ID          uuid.UUID `json:"id"`
	ReportID    string    `json:"report_id,omitempty"`
	Filename    string    `json:"filename"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	ObjectKey   string    `json:"object_key"`
	URL         string    `json:"url"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoredObject is what the object store reports back for a completed put.
type StoredObject struct {
	Key  string
	URL  string
	Size int64
}

// PutAuthorization is a time-limited direct-to-store upload grant.
type PutAuthorization struct {
	UploadURL string            `json:"uploadUrl"`
	Key       string            `json:"key"`
	Fields    map[string]string `json:"fields"`
}
