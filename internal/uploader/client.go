package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/platformwatch/evidence/internal/evidence"
)

// DefaultInterFileDelay spaces consecutive transfers so a batch does not
// hammer the endpoint.
const DefaultInterFileDelay = 100 * time.Millisecond

// Callbacks lets a caller observe per-file upload events.
type Callbacks struct {
	OnProgress func(id string, pct int)
	OnSuccess  func(id string, entry evidence.ManifestEntry)
	OnError    func(id string, err error)
}

// Client drives batches through the upload endpoint. Transfers within one
// batch are strictly sequential; independent batches are fully independent.
type Client struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithInterFileDelay changes the pause between consecutive file transfers.
func WithInterFileDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// NewClient builds a client for an evidence API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		delay:      DefaultInterFileDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadBatch transfers every Pending file in the batch, one at a time, and
// returns the combined manifest. Partial success is a normal outcome: files
// that fail are reported in Errors and the rest keep going. Cancelling ctx
// aborts the in-flight transfer (that file fails with ErrAborted) and leaves
// unattempted files Pending.
func (c *Client) UploadBatch(ctx context.Context, b *Batch, reportID string, cb Callbacks) (evidence.BatchResult, error) {
	pending := b.pendingIDs()
	if len(pending) == 0 {
		return evidence.BatchResult{}, ErrNoPendingFiles
	}

	result := evidence.BatchResult{Files: []evidence.ManifestEntry{}}

	for i, id := range pending {
		if i > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.delay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		item, ok := b.get(id)
		if !ok {
			// removed from the batch while earlier files were transferring
			continue
		}

		fileCtx, cancel := context.WithCancel(ctx)
		b.markUploading(id, cancel)

		entry, err := c.uploadOne(fileCtx, b, item, reportID, cb)
		cancel()

		if err != nil {
			b.markFailed(id, err)
			if cb.OnError != nil {
				cb.OnError(id, err)
			}
			result.Errors = append(result.Errors, evidence.UploadError{
				Filename: item.File.Name,
				Error:    err.Error(),
			})
			continue
		}

		b.markSucceeded(id, entry)
		if cb.OnSuccess != nil {
			cb.OnSuccess(id, entry)
		}
		result.Files = append(result.Files, entry)
	}

	result.Uploaded = len(result.Files)
	result.Failed = len(result.Errors)
	result.Success = result.Uploaded > 0
	return result, nil
}

func (c *Client) uploadOne(ctx context.Context, b *Batch, item Item, reportID string, cb Callbacks) (evidence.ManifestEntry, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, item.File.Name))
	header.Set("Content-Type", item.File.ContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return evidence.ManifestEntry{}, fmt.Errorf("build multipart body: %w", err)
	}

	src, err := item.File.Open()
	if err != nil {
		return evidence.ManifestEntry{}, fmt.Errorf("open file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		src.Close()
		return evidence.ManifestEntry{}, fmt.Errorf("read file: %w", err)
	}
	src.Close()

	if reportID != "" {
		if err := writer.WriteField("reportId", reportID); err != nil {
			return evidence.ManifestEntry{}, fmt.Errorf("build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return evidence.ManifestEntry{}, fmt.Errorf("build multipart body: %w", err)
	}

	total := int64(buf.Len())
	body := newProgressReader(&buf, total, func(pct int) {
		b.setProgress(item.ID, pct)
		if cb.OnProgress != nil {
			cb.OnProgress(item.ID, pct)
		}
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return evidence.ManifestEntry{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return evidence.ManifestEntry{}, &TransportError{Err: ErrAborted}
		}
		return evidence.ManifestEntry{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	var res evidence.BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return evidence.ManifestEntry{}, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && len(res.Files) > 0 {
		return res.Files[0], nil
	}

	// Prefer the server's reason over a generic transport message.
	if len(res.Errors) > 0 {
		return evidence.ManifestEntry{}, errors.New(res.Errors[0].Error)
	}
	return evidence.ManifestEntry{}, &TransportError{Status: resp.StatusCode, Err: errors.New("upload failed")}
}

// GetPresignedURL asks the endpoint for a direct-to-store upload grant.
func (c *Client) GetPresignedURL(ctx context.Context, filename, contentType string) (evidence.PutAuthorization, error) {
	endpoint := fmt.Sprintf("%s/upload?filename=%s&contentType=%s",
		c.baseURL, url.QueryEscape(filename), url.QueryEscape(contentType))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return evidence.PutAuthorization{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return evidence.PutAuthorization{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			return evidence.PutAuthorization{}, errors.New(body.Error)
		}
		return evidence.PutAuthorization{}, &TransportError{Status: resp.StatusCode, Err: errors.New("failed to get upload URL")}
	}

	var auth evidence.PutAuthorization
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return evidence.PutAuthorization{}, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}
	return auth, nil
}

// DirectUpload transfers one file straight to the object store using a
// presigned grant, bypassing the endpoint for the bytes. Returns the storage
// key the object landed under.
func (c *Client) DirectUpload(ctx context.Context, f File, onProgress func(pct int)) (string, error) {
	auth, err := c.GetPresignedURL(ctx, f.Name, f.ContentType)
	if err != nil {
		return "", err
	}

	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	body := newProgressReader(src, f.Size, onProgress)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, auth.UploadURL, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	contentType := auth.Fields["Content-Type"]
	if contentType == "" {
		contentType = f.ContentType
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = f.Size

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", &TransportError{Err: ErrAborted}
		}
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransportError{Status: resp.StatusCode, Err: errors.New("direct upload failed")}
	}
	return auth.Key, nil
}
