// internal/domain/checkin/report.go
package checkin

import (
	"context"
	"time"
)

// Report is the aggregated outcome of one check-in run. Fields are merged
// across rounds; the snapshot is final once the run reaches a terminal state.
type Report struct {
	RunID      string
	Provider   string
	Status     Classification
	Fields     Result
	Error      string // diagnostic detail when Status is TRANSPORT_ERROR
	StartedAt  time.Time
	FinishedAt time.Time
}

// Repository persists finalized run reports.
type Repository interface {
	Save(ctx context.Context, report *Report) error
	ListRecent(ctx context.Context, provider string, limit int) ([]*Report, error)
}
