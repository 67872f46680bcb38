package report

import "errors"

var (
	// ErrReportNotFound signals that the report could not be located.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidCategory rejects a category outside the known set.
	ErrInvalidCategory = errors.New("invalid report category")
	// ErrMissingTitle rejects a submission without a title.
	ErrMissingTitle = errors.New("report title is required")
)
