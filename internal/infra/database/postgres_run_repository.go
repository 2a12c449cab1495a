// internal/infra/database/postgres_run_repository.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tg_checkin_bot/internal/domain/checkin"
)

// Custom errors specific to the run repository
var ErrRunNotFound = fmt.Errorf("check-in run not found")

// PostgresRunRepository persists finalized run reports to the
// 'checkin_runs' table. Parsed fields are stored as a JSONB document since
// the field set varies per provider.
type PostgresRunRepository struct {
	db *sql.DB
}

func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

func (r *PostgresRunRepository) Save(ctx context.Context, report *checkin.Report) error {
	fields, err := json.Marshal(report.Fields)
	if err != nil {
		return fmt.Errorf("error encoding run fields: %w", err)
	}

	query := `INSERT INTO checkin_runs (run_id, provider, status, fields, error, started_at, finished_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query,
		report.RunID, report.Provider, report.Status, fields,
		sql.NullString{String: report.Error, Valid: report.Error != ""},
		report.StartedAt, report.FinishedAt)
	if err != nil {
		return fmt.Errorf("error saving check-in run: %w", err)
	}
	return nil
}

func (r *PostgresRunRepository) ListRecent(ctx context.Context, provider string, limit int) ([]*checkin.Report, error) {
	query := `SELECT run_id, provider, status, fields, error, started_at, finished_at
              FROM checkin_runs
              WHERE ($1 = '' OR provider = $1)
              ORDER BY started_at DESC
              LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, provider, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing check-in runs: %w", err)
	}
	defer rows.Close()

	var reports []*checkin.Report
	for rows.Next() {
		var report checkin.Report
		var fields []byte
		var errText sql.NullString
		if err := rows.Scan(&report.RunID, &report.Provider, &report.Status, &fields,
			&errText, &report.StartedAt, &report.FinishedAt); err != nil {
			return nil, fmt.Errorf("error scanning check-in run: %w", err)
		}
		if err := json.Unmarshal(fields, &report.Fields); err != nil {
			return nil, fmt.Errorf("error decoding run fields: %w", err)
		}
		report.Error = errText.String
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check-in runs: %w", err)
	}
	return reports, nil
}
