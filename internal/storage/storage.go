package storage

import (
	"github.com/jmoiron/sqlx"
)

// NewRepository создает Postgres-репозитории: пользователи и клубы через DatabaseInterface,
// маркеры запусков через sqlx на том же пуле
func NewRepository(deps *RepositoryDependencies, runsDB *sqlx.DB) *Repository {
	return &Repository{
		User:     NewUserRepository(deps),
		Club:     NewClubRepository(deps),
		RunState: NewRunStateRepository(runsDB),
	}
}
