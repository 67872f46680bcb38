package uploader

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/platformwatch/evidence/internal/evidence"
)

// Status is the lifecycle state of one file in a batch.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// DefaultMaxFiles bounds a batch when no explicit cap is given.
const DefaultMaxFiles = 5

// File is a candidate upload: name, declared type, size, and a way to open
// the content. Open is called once per transfer attempt.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileFromPath builds a File backed by a file on disk, with the content type
// inferred from the extension.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Item is the tracked state of one file within a batch.
type Item struct {
	ID       string
	File     File
	Status   Status
	Progress int
	Err      error
	// RemoteURL and Key are set from the server manifest on success.
	RemoteURL string
	Key       string

	cancel context.CancelFunc
}

// Stats summarizes a batch by status.
type Stats struct {
	Total     int
	Pending   int
	Uploading int
	Succeeded int
	Failed    int
}

// Batch is an ordered set of candidate files selected for one submission
// attempt. It is bounded, deduplicated on (name, size), and safe for
// concurrent observation while a Client drives it.
type Batch struct {
	mu       sync.Mutex
	maxFiles int
	limits   evidence.Limits
	items    []*Item
}

// NewBatch creates an empty batch with the default cap and validation rules.
func NewBatch() *Batch {
	return NewBatchWithLimits(DefaultMaxFiles, evidence.DefaultLimits())
}

// NewBatchWithLimits creates an empty batch with an explicit cap and rule set.
func NewBatchWithLimits(maxFiles int, limits evidence.Limits) *Batch {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Batch{maxFiles: maxFiles, limits: limits}
}

// Add validates and enqueues candidate files. Files failing validation enter
// the batch as Failed with the reason and never touch the network. A file
// whose (name, size) matches one already present is silently ignored, and
// additions beyond the cap are silently dropped, matching how file selection
// behaves in the submission UI.
func (b *Batch) Add(files ...File) []Item {
	b.mu.Lock()
	defer b.mu.Unlock()

	var added []Item
	for _, f := range files {
		if len(b.items) >= b.maxFiles {
			break
		}
		if b.containsLocked(f.Name, f.Size) {
			continue
		}

		item := &Item{
			ID:     uuid.NewString(),
			File:   f,
			Status: StatusPending,
		}
		if verr := b.limits.ValidateFile(f.Name, f.Size, f.ContentType); verr != nil {
			item.Status = StatusFailed
			item.Err = verr
		}

		b.items = append(b.items, item)
		added = append(added, *item)
	}
	return added
}

// Remove drops a file from the batch.
func (b *Batch) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, item := range b.items {
		if item.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Retry re-queues every Failed file at once: status back to Pending, error
// cleared, progress reset. Succeeded files are untouched. Returns the number
// of files re-queued.
func (b *Batch) Retry() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, item := range b.items {
		if item.Status == StatusFailed {
			item.Status = StatusPending
			item.Err = nil
			item.Progress = 0
			n++
		}
	}
	return n
}

// Abort cancels the in-flight transfer of one file, if any. Other queued
// files keep going.
func (b *Batch) Abort(id string) {
	b.mu.Lock()
	cancel := (context.CancelFunc)(nil)
	for _, item := range b.items {
		if item.ID == id && item.cancel != nil {
			cancel = item.cancel
		}
	}
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Files returns a snapshot of the batch in insertion order.
func (b *Batch) Files() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Item, len(b.items))
	for i, item := range b.items {
		out[i] = *item
	}
	return out
}

// Stats counts files by status.
func (b *Batch) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Stats{Total: len(b.items)}
	for _, item := range b.items {
		switch item.Status {
		case StatusPending:
			s.Pending++
		case StatusUploading:
			s.Uploading++
		case StatusSucceeded:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

func (b *Batch) containsLocked(name string, size int64) bool {
	for _, item := range b.items {
		if item.File.Name == name && item.File.Size == size {
			return true
		}
	}
	return false
}

func (b *Batch) pendingIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []string
	for _, item := range b.items {
		if item.Status == StatusPending {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

func (b *Batch) get(id string) (Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range b.items {
		if item.ID == id {
			return *item, true
		}
	}
	return Item{}, false
}

func (b *Batch) markUploading(id string, cancel context.CancelFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range b.items {
		if item.ID == id {
			item.Status = StatusUploading
			item.Progress = 0
			item.Err = nil
			item.cancel = cancel
		}
	}
}

func (b *Batch) markSucceeded(id string, entry evidence.ManifestEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range b.items {
		if item.ID == id {
			item.Status = StatusSucceeded
			item.Progress = 100
			item.Err = nil
			item.RemoteURL = entry.URL
			item.Key = entry.Key
			item.cancel = nil
		}
	}
}

func (b *Batch) markFailed(id string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range b.items {
		if item.ID == id {
			item.Status = StatusFailed
			item.Progress = 0
			item.Err = err
			item.cancel = nil
		}
	}
}

// setProgress bumps a file's progress; the value never decreases while a
// transfer is running.
func (b *Batch) setProgress(id string, pct int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range b.items {
		if item.ID == id && item.Status == StatusUploading && pct > item.Progress {
			item.Progress = pct
		}
	}
}
