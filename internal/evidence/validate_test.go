package evidence

import (
	"strings"
	"testing"
)

func TestValidateFileAcceptsAllowedFile(t *testing.T) {
	limits := DefaultLimits()

	if verr := limits.ValidateFile("My Report (final)!!.png", 500000, "image/png"); verr != nil {
		t.Fatalf("expected accept, got %v", verr)
	}
}

func TestValidateFileRejectsOversize(t *testing.T) {
	limits := DefaultLimits()

	verr := limits.ValidateFile("big.png", limits.MaxFileSize+1, "image/png")
	if verr == nil {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(verr.Reason, "size exceeds") {
		t.Fatalf("expected size-related reason, got %q", verr.Reason)
	}
}

func TestValidateFileSizeAtLimitAccepted(t *testing.T) {
	limits := DefaultLimits()

	if verr := limits.ValidateFile("exact.png", limits.MaxFileSize, "image/png"); verr != nil {
		t.Fatalf("expected accept at exact limit, got %v", verr)
	}
}

func TestValidateFileRejectsDisallowedType(t *testing.T) {
	limits := DefaultLimits()

	verr := limits.ValidateFile("virus.exe", 1024, "application/x-msdownload")
	if verr == nil {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(verr.Reason, "type") || !strings.Contains(verr.Reason, "not allowed") {
		t.Fatalf("expected type-not-allowed reason, got %q", verr.Reason)
	}
}

func TestValidateFileRejectsDisallowedExtension(t *testing.T) {
	limits := DefaultLimits()

	// declared type passes but the extension does not
	verr := limits.ValidateFile("notes.md", 1024, "text/plain")
	if verr == nil {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(verr.Reason, "extension") {
		t.Fatalf("expected extension reason, got %q", verr.Reason)
	}
}

func TestValidateFileSizeCheckedFirst(t *testing.T) {
	limits := DefaultLimits()

	verr := limits.ValidateFile("virus.exe", limits.MaxFileSize+1, "application/x-msdownload")
	if verr == nil {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(verr.Reason, "size exceeds") {
		t.Fatalf("expected size check to win, got %q", verr.Reason)
	}
}

func TestValidateFileUppercaseExtensionAccepted(t *testing.T) {
	limits := DefaultLimits()

	if verr := limits.ValidateFile("PHOTO.JPG", 1024, "image/jpeg"); verr != nil {
		t.Fatalf("expected accept, got %v", verr)
	}
}
