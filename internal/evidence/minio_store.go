package evidence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinIOStore adapts minio.Client to the objectStore interface.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs an adapter writing into the given bucket.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

// Put stores the object and returns its publicly retrievable address.
func (s *MinIOStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) (StoredObject, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return StoredObject{}, &StoreError{Op: "put", Key: key, Err: err}
	}

	stored := StoredObject{
		Key:  key,
		URL:  s.objectURL(key),
		Size: info.Size,
	}
	if stored.Size <= 0 {
		stored.Size = size
	}
	return stored, nil
}

// Exists reports whether an object is present under the key.
func (s *MinIOStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, &StoreError{Op: "stat", Key: key, Err: err}
	}
	return true, nil
}

// Delete removes the object under the key.
func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// PresignPut issues a time-limited authorization to write the key directly.
func (s *MinIOStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (PutAuthorization, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, ttl)
	if err != nil {
		return PutAuthorization{}, &StoreError{Op: "presign", Key: key, Err: err}
	}

	return PutAuthorization{
		UploadURL: u.String(),
		Key:       key,
		Fields: map[string]string{
			"Content-Type": contentType,
		},
	}, nil
}

func (s *MinIOStore) objectURL(key string) string {
	endpoint := s.client.EndpointURL()
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(endpoint.String(), "/"), s.bucket, key)
}
