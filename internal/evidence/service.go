package evidence

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

// Files are accepted from anyone until authentication lands; the uploader
// column carries a placeholder so the schema does not have to change.
const placeholderUploader = "anonymous"

type objectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) (StoredObject, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (PutAuthorization, error)
}

type recordStore interface {
	Create(ctx context.Context, rec Record) (Record, error)
	ListByReport(ctx context.Context, reportID string) ([]Record, error)
}

// Service runs the server side of the upload pipeline: validate each file,
// key it, store it, record it. Files are fully independent of each other; one
// failure never skips or rolls back a sibling.
type Service struct {
	store      objectStore
	records    recordStore
	limits     Limits
	folder     string
	presignTTL time.Duration
}

// NewService constructs an upload service.
func NewService(store objectStore, records recordStore, limits Limits, folder string, presignTTL time.Duration) *Service {
	return &Service{
		store:      store,
		records:    records,
		limits:     limits,
		folder:     folder,
		presignTTL: presignTTL,
	}
}

// Limits exposes the active validation rule set.
func (s *Service) Limits() Limits {
	return s.limits
}

// ProcessBatch validates and stores each file independently and assembles the
// per-file manifest. reportID, when present, associates the stored evidence
// with a report; it does not alter processing.
func (s *Service) ProcessBatch(ctx context.Context, files []*multipart.FileHeader, reportID string) BatchResult {
	result := BatchResult{Files: []ManifestEntry{}}

	for _, fh := range files {
		entry, err := s.processOne(ctx, fh, reportID)
		if err != nil {
			result.Errors = append(result.Errors, UploadError{
				Filename: fh.Filename,
				Error:    err.Error(),
			})
			continue
		}
		result.Files = append(result.Files, entry)
	}

	result.Uploaded = len(result.Files)
	result.Failed = len(result.Errors)
	result.Success = result.Uploaded > 0
	return result
}

func (s *Service) processOne(ctx context.Context, fh *multipart.FileHeader, reportID string) (ManifestEntry, error) {
	contentType := fh.Header.Get("Content-Type")

	if verr := s.limits.ValidateFile(fh.Filename, fh.Size, contentType); verr != nil {
		return ManifestEntry{}, verr
	}

	key := GenerateKey(fh.Filename, s.folder)

	file, err := fh.Open()
	if err != nil {
		return ManifestEntry{}, fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	stored, err := s.store.Put(ctx, key, file, fh.Size, contentType, map[string]string{
		"original-name": fh.Filename,
		"report-id":     reportID,
		"uploaded-by":   placeholderUploader,
	})
	if err != nil {
		return ManifestEntry{}, err
	}

	_, err = s.records.Create(ctx, Record{
		ID:          uuid.New(),
		ReportID:    reportID,
		Filename:    fh.Filename,
		SizeBytes:   stored.Size,
		ContentType: contentType,
		ObjectKey:   stored.Key,
		URL:         stored.URL,
		UploadedBy:  placeholderUploader,
	})
	if err != nil {
		// The object went in but its row did not; remove the orphan so the
		// caller can safely resubmit.
		_ = s.store.Delete(ctx, stored.Key)
		return ManifestEntry{}, err
	}

	return ManifestEntry{
		Filename:    fh.Filename,
		Size:        stored.Size,
		ContentType: contentType,
		URL:         stored.URL,
		Key:         stored.Key,
	}, nil
}

// PresignUpload validates the declared name and type, generates a key, and
// issues a time-limited direct-to-store upload authorization.
func (s *Service) PresignUpload(ctx context.Context, filename, contentType string) (PutAuthorization, error) {
	if verr := s.limits.ValidateFile(filename, 0, contentType); verr != nil {
		return PutAuthorization{}, verr
	}

	key := GenerateKey(filename, s.folder)
	return s.store.PresignPut(ctx, key, contentType, s.presignTTL)
}

// ListEvidence returns the stored manifest rows attached to a report.
func (s *Service) ListEvidence(ctx context.Context, reportID string) ([]Record, error) {
	return s.records.ListByReport(ctx, reportID)
}
