package report

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type reportStore interface {
	Create(ctx context.Context, rep Report) (Report, error)
	Get(ctx context.Context, id uuid.UUID) (Report, error)
	List(ctx context.Context, q ListQuery) ([]Report, int, error)
}

// Service manages report lifecycle operations.
type Service struct {
	repo reportStore
}

// NewService constructs a report service.
func NewService(repo reportStore) *Service {
	return &Service{repo: repo}
}

// CreateInput is a report submission.
type CreateInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PlatformName string `json:"platform_name"`
	Category     string `json:"category"`
}

// Create validates and persists a new report. New reports always start
// pending moderation.
func (s *Service) Create(ctx context.Context, in CreateInput) (Report, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Report{}, ErrMissingTitle
	}

	switch in.Category {
	case CategoryVandalism, CategoryViolence:
	default:
		return Report{}, ErrInvalidCategory
	}

	return s.repo.Create(ctx, Report{
		ID:           uuid.New(),
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		PlatformName: strings.TrimSpace(in.PlatformName),
		Category:     in.Category,
		Status:       StatusPending,
	})
}

// Get fetches one report.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Report, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered, sorted page of reports.
func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.SortBy != "oldest" {
		q.SortBy = "newest"
	}

	reports, total, err := s.repo.List(ctx, q)
	if err != nil {
		return ListResult{}, err
	}
	if reports == nil {
		reports = []Report{}
	}

	totalPages := total / q.Limit
	if total%q.Limit != 0 {
		totalPages++
	}

	return ListResult{
		Reports: reports,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}
