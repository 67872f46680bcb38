package evidence

import (
	"fmt"
	"path"
	"strings"
)

// Limits is the validation rule set of record. The uploader client and the
// upload endpoint both run the same checks so the two sides reject identical
// inputs.
type Limits struct {
	MaxFileSize       int64
	AllowedMIMETypes  []string
	AllowedExtensions []string
}

// DefaultLimits returns the stock rule set: 10 MiB per file, common image,
// video and document types.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize: 10 * 1024 * 1024,
		AllowedMIMETypes: []string{
			"image/jpeg",
			"image/png",
			"image/gif",
			"image/webp",
			"video/mp4",
			"video/webm",
			"video/quicktime",
			"application/pdf",
			"text/plain",
		},
		AllowedExtensions: []string{
			".jpg", ".jpeg", ".png", ".gif", ".webp",
			".mp4", ".webm", ".mov",
			".pdf", ".txt",
		},
	}
}

// ValidateFile checks a candidate file's size, declared MIME type and filename
// extension, in that order; the first failing check wins. A nil result means
// the file is accepted.
func (l Limits) ValidateFile(name string, size int64, contentType string) *ValidationError {
	if size > l.MaxFileSize {
		return &ValidationError{
			Reason: fmt.Sprintf("file size exceeds %dMB limit", l.MaxFileSize/1024/1024),
		}
	}

	if !contains(l.AllowedMIMETypes, contentType) {
		return &ValidationError{
			Reason: fmt.Sprintf("file type %s is not allowed", contentType),
		}
	}

	ext := strings.ToLower(path.Ext(name))
	if !contains(l.AllowedExtensions, ext) {
		return &ValidationError{
			Reason: fmt.Sprintf("file extension %s is not allowed", ext),
		}
	}

	return nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
