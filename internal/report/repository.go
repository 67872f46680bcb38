package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository provides access to report storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new report repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new report.
func (r *Repository) Create(ctx context.Context, rep Report) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO reports (id, title, description, platform_name, category, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, title, description, platform_name, category, status, created_at, updated_at;`

	row := r.pool.QueryRow(ctx, query,
		rep.ID,
		rep.Title,
		rep.Description,
		rep.PlatformName,
		rep.Category,
		rep.Status,
	)

	var stored Report
	if err := row.Scan(&stored.ID, &stored.Title, &stored.Description, &stored.PlatformName, &stored.Category, &stored.Status, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return Report{}, fmt.Errorf("create report: %w", err)
	}
	return stored, nil
}

// Get fetches a single report.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, title, description, platform_name, category, status, created_at, updated_at
FROM reports
WHERE id = $1;`

	var rep Report
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rep.ID,
		&rep.Title,
		&rep.Description,
		&rep.PlatformName,
		&rep.Category,
		&rep.Status,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Report{}, ErrReportNotFound
		}
		return Report{}, fmt.Errorf("get report: %w", err)
	}
	return rep, nil
}

// List returns one page of reports matching the query plus the total count.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]Report, int, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var (
		conditions []string
		args       []any
	)

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.Category != "" && q.Category != "all" {
		args = append(args, q.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.Status != "" && q.Status != "all" {
		args = append(args, q.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	order := "ORDER BY created_at DESC"
	if q.SortBy == "oldest" {
		order = "ORDER BY created_at ASC"
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM reports %s;", where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	listQuery := fmt.Sprintf(`
SELECT id, title, description, platform_name, category, status, created_at, updated_at
FROM reports
%s
%s
LIMIT $%d OFFSET $%d;`, where, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.Title, &rep.Description, &rep.PlatformName, &rep.Category, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, total, nil
}
