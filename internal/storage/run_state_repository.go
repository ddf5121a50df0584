package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
)

// runStateRepository реализует RunStateStore поверх sqlx
type runStateRepository struct {
	db *sqlx.DB
}

// NewRunStateRepository создает хранилище маркеров запусков
func NewRunStateRepository(db *sqlx.DB) RunStateStore {
	return &runStateRepository{
		db: db,
	}
}

// LastRunWeekStart возвращает начало недели последнего успешного запуска
func (r *runStateRepository) LastRunWeekStart(ctx context.Context) (time.Time, bool, error) {
	query := `SELECT week_start FROM weekly_reset_runs ORDER BY week_start DESC LIMIT 1`

	var weekStart time.Time
	err := r.db.GetContext(ctx, &weekStart, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errors.Wrap(err, "failed to get last reset run")
	}

	return weekStart, true, nil
}

// RecordRun сохраняет успешный запуск; повторная запись той же недели игнорируется
func (r *runStateRepository) RecordRun(ctx context.Context, run models.ResetRun) error {
	query := `
		INSERT INTO weekly_reset_runs (
			id, week_start, started_at, finished_at, clubs_processed, badges_awarded, affected_users
		) VALUES (
			:id, :week_start, :started_at, :finished_at, :clubs_processed, :badges_awarded, :affected_users
		)
		ON CONFLICT (week_start) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return errors.Wrap(err, "failed to record reset run")
	}

	return nil
}
