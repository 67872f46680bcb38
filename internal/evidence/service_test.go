package evidence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"
)

func TestProcessBatchPartialSuccess(t *testing.T) {
	store := newFakeObjectStore()
	records := newFakeRecordStore()
	service := newTestService(store, records)

	files := []*multipart.FileHeader{
		buildFileHeader(t, "one.png", "image/png", []byte("png bytes")),
		buildFileHeader(t, "two.pdf", "application/pdf", []byte("pdf bytes")),
		buildFileHeader(t, "virus.exe", "application/x-msdownload", []byte("nope")),
	}

	result := service.ProcessBatch(context.Background(), files, "report-1")

	if !result.Success {
		t.Fatalf("expected success with partial failures")
	}
	if result.Uploaded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 uploaded / 1 failed, got %d / %d", result.Uploaded, result.Failed)
	}
	if len(result.Errors) != 1 || result.Errors[0].Filename != "virus.exe" {
		t.Fatalf("expected virus.exe in errors, got %+v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Error, "not allowed") {
		t.Fatalf("expected type rejection reason, got %q", result.Errors[0].Error)
	}
	if len(records.records) != 2 {
		t.Fatalf("expected 2 evidence rows, got %d", len(records.records))
	}

	for _, entry := range result.Files {
		exists, err := store.Exists(context.Background(), entry.Key)
		if err != nil || !exists {
			t.Fatalf("expected object stored under %q", entry.Key)
		}
		if !strings.HasPrefix(entry.Key, "evidence/") {
			t.Fatalf("expected evidence folder prefix, got %q", entry.Key)
		}
	}
}

func TestProcessBatchAllInvalid(t *testing.T) {
	store := newFakeObjectStore()
	service := newTestService(store, newFakeRecordStore())

	files := []*multipart.FileHeader{
		buildFileHeader(t, "a.exe", "application/x-msdownload", []byte("x")),
		buildFileHeader(t, "b.exe", "application/x-msdownload", []byte("y")),
	}

	result := service.ProcessBatch(context.Background(), files, "")

	if result.Success {
		t.Fatalf("expected failure when nothing uploads")
	}
	if result.Uploaded != 0 || result.Failed != 2 {
		t.Fatalf("expected 0 / 2, got %d / %d", result.Uploaded, result.Failed)
	}
	if len(result.Files) != 0 {
		t.Fatalf("expected empty manifest, got %+v", result.Files)
	}
	if len(store.objects) != 0 {
		t.Fatalf("rejected files must never reach the store")
	}
}

func TestProcessBatchStoreFailureDoesNotAbortSiblings(t *testing.T) {
	store := newFakeObjectStore()
	store.failPutsFor["bad.png"] = true
	service := newTestService(store, newFakeRecordStore())

	files := []*multipart.FileHeader{
		buildFileHeader(t, "bad.png", "image/png", []byte("x")),
		buildFileHeader(t, "good.png", "image/png", []byte("y")),
	}

	result := service.ProcessBatch(context.Background(), files, "")

	if result.Uploaded != 1 || result.Failed != 1 {
		t.Fatalf("expected 1 / 1, got %d / %d", result.Uploaded, result.Failed)
	}
	if result.Errors[0].Filename != "bad.png" {
		t.Fatalf("expected bad.png failure, got %+v", result.Errors)
	}
	if result.Files[0].Filename != "good.png" {
		t.Fatalf("expected good.png in manifest, got %+v", result.Files)
	}
}

func TestProcessBatchRecordFailureCompensates(t *testing.T) {
	store := newFakeObjectStore()
	records := newFakeRecordStore()
	records.failCreate = true
	service := newTestService(store, records)

	files := []*multipart.FileHeader{
		buildFileHeader(t, "one.png", "image/png", []byte("png bytes")),
	}

	result := service.ProcessBatch(context.Background(), files, "")

	if result.Uploaded != 0 || result.Failed != 1 {
		t.Fatalf("expected compensation failure, got %+v", result)
	}
	if len(store.objects) != 0 {
		t.Fatalf("expected orphan object removed, %d remain", len(store.objects))
	}
	if store.deleteCount != 1 {
		t.Fatalf("expected one compensating delete, got %d", store.deleteCount)
	}
}

func TestPresignUploadRejectsInvalidType(t *testing.T) {
	service := newTestService(newFakeObjectStore(), newFakeRecordStore())

	_, err := service.PresignUpload(context.Background(), "virus.exe", "application/x-msdownload")
	if err == nil {
		t.Fatalf("expected rejection")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestPresignUploadIssuesGrant(t *testing.T) {
	store := newFakeObjectStore()
	service := newTestService(store, newFakeRecordStore())

	auth, err := service.PresignUpload(context.Background(), "clip.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("PresignUpload returned error: %v", err)
	}
	if !strings.HasPrefix(auth.Key, "evidence/") {
		t.Fatalf("expected evidence key, got %q", auth.Key)
	}
	if auth.UploadURL == "" {
		t.Fatalf("expected upload URL")
	}
	if auth.Fields["Content-Type"] != "video/mp4" {
		t.Fatalf("expected content type field, got %+v", auth.Fields)
	}
}

// --- helpers & fakes ---

func newTestService(store objectStore, records recordStore) *Service {
	return NewService(store, records, DefaultLimits(), "evidence", 5*time.Minute)
}

func buildFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart error: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(int64(len(content)) + 1024); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}

	return req.MultipartForm.File["files"][0]
}

type fakeObjectStore struct {
	objects     map[string][]byte
	failPutsFor map[string]bool
	deleteCount int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects:     make(map[string][]byte),
		failPutsFor: make(map[string]bool),
	}
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) (StoredObject, error) {
	if f.failPutsFor[metadata["original-name"]] {
		return StoredObject{}, &StoreError{Op: "put", Key: key, Err: fmt.Errorf("simulated store outage")}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return StoredObject{}, &StoreError{Op: "put", Key: key, Err: err}
	}
	f.objects[key] = data
	return StoredObject{Key: key, URL: "http://store.local/test/" + key, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.deleteCount++
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (PutAuthorization, error) {
	return PutAuthorization{
		UploadURL: "http://store.local/presigned/" + key,
		Key:       key,
		Fields:    map[string]string{"Content-Type": contentType},
	}, nil
}

type fakeRecordStore struct {
	records    []Record
	failCreate bool
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{}
}

func (f *fakeRecordStore) Create(ctx context.Context, rec Record) (Record, error) {
	if f.failCreate {
		return Record{}, fmt.Errorf("simulated insert failure")
	}
	rec.CreatedAt = time.Now()
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeRecordStore) ListByReport(ctx context.Context, reportID string) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if rec.ReportID == reportID {
			out = append(out, rec)
		}
	}
	return out, nil
}
