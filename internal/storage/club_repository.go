package storage

import (
	"context"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
)

// clubRepository реализует ClubStore
type clubRepository struct {
	db      DatabaseInterface
	metrics MetricsInterface
}

// NewClubRepository создает новый экземпляр репозитория клубов
func NewClubRepository(deps *RepositoryDependencies) ClubStore {
	return &clubRepository{
		db:      deps.DB,
		metrics: deps.MetricsCollector,
	}
}

// ListClubs возвращает все клубы
func (r *clubRepository) ListClubs(ctx context.Context) ([]models.Club, error) {
	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.IncDBQuery("club_list")
			r.metrics.ObserveDBQueryDuration("club_list", time.Since(start))
		}
	}()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM clubs ORDER BY id`)
	if err != nil {
		return nil, handleDatabaseError(err, "failed to query clubs")
	}
	defer rows.Close()

	var clubs []models.Club
	for rows.Next() {
		var club models.Club
		if err := rows.Scan(&club.ID, &club.Name); err != nil {
			return nil, handleDatabaseError(err, "failed to scan club")
		}
		clubs = append(clubs, club)
	}

	if err := rows.Err(); err != nil {
		return nil, handleDatabaseError(err, "failed to iterate clubs")
	}

	return clubs, nil
}
