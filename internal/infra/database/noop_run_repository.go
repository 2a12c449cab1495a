// internal/infra/database/noop_run_repository.go
package database

import (
	"context"

	"tg_checkin_bot/internal/domain/checkin"
)

// NoopRunRepository is used when DATABASE_URL is not configured: runs are
// not persisted and history queries find nothing.
type NoopRunRepository struct{}

func NewNoopRunRepository() *NoopRunRepository {
	return &NoopRunRepository{}
}

func (*NoopRunRepository) Save(ctx context.Context, report *checkin.Report) error {
	return nil
}

func (*NoopRunRepository) ListRecent(ctx context.Context, provider string, limit int) ([]*checkin.Report, error) {
	return nil, nil
}
