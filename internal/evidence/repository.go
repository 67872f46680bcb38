package evidence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository provides access to evidence metadata storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new evidence repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a row for a newly stored object.
func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO evidence (id, report_id, filename, size_bytes, content_type, object_key, url, uploaded_by)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
RETURNING id, COALESCE(report_id, ''), filename, size_bytes, content_type, object_key, url, uploaded_by, created_at;`

	row := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.ReportID,
		rec.Filename,
		rec.SizeBytes,
		rec.ContentType,
		rec.ObjectKey,
		rec.URL,
		rec.UploadedBy,
	)

	var stored Record
	if err := row.Scan(&stored.ID, &stored.ReportID, &stored.Filename, &stored.SizeBytes, &stored.ContentType, &stored.ObjectKey, &stored.URL, &stored.UploadedBy, &stored.CreatedAt); err != nil {
		return Record{}, fmt.Errorf("create evidence record: %w", err)
	}
	return stored, nil
}

// ListByReport returns all evidence rows attached to a report, newest first.
func (r *Repository) ListByReport(ctx context.Context, reportID string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, COALESCE(report_id, ''), filename, size_bytes, content_type, object_key, url, uploaded_by, created_at
FROM evidence
WHERE report_id = $1
ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ReportID, &rec.Filename, &rec.SizeBytes, &rec.ContentType, &rec.ObjectKey, &rec.URL, &rec.UploadedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan evidence record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence records: %w", err)
	}
	return records, nil
}
