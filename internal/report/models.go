package report

import (
	"time"

	"github.com/google/uuid"
)

// Report is an incident report that evidence files attach to.
type Report struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PlatformName string    `json:"platform_name"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Categories and moderation states a report can carry.
const (
	CategoryVandalism = "vandalism"
	CategoryViolence  = "violence"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ListQuery filters and pages the report listing.
type ListQuery struct {
	Search   string
	Category string
	Status   string
	SortBy   string
	Page     int
	Limit    int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListResult is a page of reports with its pagination envelope.
type ListResult struct {
	Reports    []Report   `json:"reports"`
	Pagination Pagination `json:"pagination"`
}
