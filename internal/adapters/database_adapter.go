package adapters

import (
	"context"
	"errors"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/database"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// execer общая часть пула и транзакции pgx
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// execRowsAffected выполняет запрос и возвращает число затронутых строк
func execRowsAffected(ctx context.Context, e execer, query string, args ...interface{}) (int64, error) {
	tag, err := e.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DatabaseAdapter адаптирует пул database.DB к storage.DatabaseInterface
type DatabaseAdapter struct {
	db *database.DB
}

// NewDatabaseAdapter создает адаптер поверх пула PostgreSQL
func NewDatabaseAdapter(db *database.DB) storage.DatabaseInterface {
	return &DatabaseAdapter{db: db}
}

func (a *DatabaseAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) storage.Row {
	return a.db.Pool().QueryRow(ctx, query, args...)
}

func (a *DatabaseAdapter) Query(ctx context.Context, query string, args ...interface{}) (storage.Rows, error) {
	rows, err := a.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *DatabaseAdapter) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return execRowsAffected(ctx, a.db.Pool(), query, args...)
}

// BeginTx открывает транзакцию на пуле
func (a *DatabaseAdapter) BeginTx(ctx context.Context) (storage.Tx, error) {
	tx, err := a.db.Pool().Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txAdapter{tx: tx}, nil
}

func (a *DatabaseAdapter) Health(ctx context.Context) error {
	return a.db.Health(ctx)
}

// txAdapter адаптирует pgx.Tx к storage.Tx
type txAdapter struct {
	tx pgx.Tx
}

func (t *txAdapter) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return execRowsAffected(ctx, t.tx, query, args...)
}

func (t *txAdapter) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback после Commit возвращает pgx.ErrTxClosed, это не ошибка
func (t *txAdapter) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
