package storage

import (
	"context"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
)

// UserStore определяет операции с пользователями, нужные недельному сбросу
type UserStore interface {
	// GetTopClubMembers возвращает участников клуба по убыванию weeklyXP (при равенстве по id), не более limit
	GetTopClubMembers(ctx context.Context, clubID string, limit int) ([]models.ClubMember, error)

	// AppendWeeklyBadge добавляет значок пользователю; false если значок за эту неделю и клуб уже есть
	AppendWeeklyBadge(ctx context.Context, userID string, badge models.RankBadge) (bool, error)

	// ResetAllWeeklyXP обнуляет weeklyXP у всех пользователей и возвращает их количество
	ResetAllWeeklyXP(ctx context.Context) (int64, error)

	// GetUser возвращает пользователя по ID вместе со значками
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// ClubBadgeWriter необязательное расширение UserStore: значки одного клуба записываются атомарно.
// Возвращает для каждой награды признак, что значок был добавлен.
type ClubBadgeWriter interface {
	AppendClubBadges(ctx context.Context, awards []models.BadgeAward) ([]bool, error)
}

// ClubStore определяет операции с клубами
type ClubStore interface {
	// ListClubs возвращает все клубы
	ListClubs(ctx context.Context) ([]models.Club, error)
}

// RunStateStore хранит маркер последнего успешного недельного сброса
type RunStateStore interface {
	// LastRunWeekStart возвращает начало недели последнего успешного запуска
	LastRunWeekStart(ctx context.Context) (time.Time, bool, error)

	// RecordRun сохраняет успешный запуск
	RecordRun(ctx context.Context, run models.ResetRun) error
}

// Locker распределенная блокировка запуска
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Repository объединяет все репозитории
type Repository struct {
	User     UserStore
	Club     ClubStore
	RunState RunStateStore
}

// RepositoryDependencies содержит зависимости для создания репозиториев
type RepositoryDependencies struct {
	DB               DatabaseInterface
	MetricsCollector MetricsInterface
}

// DatabaseInterface определяет интерфейс для работы с базой данных
type DatabaseInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	Exec(ctx context.Context, query string, args ...interface{}) (int64, error)
	BeginTx(ctx context.Context) (Tx, error)
	Health(ctx context.Context) error
}

// CacheInterface определяет интерфейс для работы с кешем
type CacheInterface interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key string, value string) (bool, error)
	Health(ctx context.Context) error
}

// MetricsInterface определяет интерфейс для сбора метрик
type MetricsInterface interface {
	IncDBQuery(operation string)
	ObserveDBQueryDuration(operation string, duration time.Duration)
	IncResetRun(status string)
	ObserveResetDuration(duration time.Duration)
	IncBadgeAwarded(rank int)
	AddUsersReset(count int64)
	IncLevelCalculation(status string)
}

// Row интерфейс для работы с результатом одной строки
type Row interface {
	Scan(dest ...interface{}) error
}

// Rows интерфейс для работы с результатом множества строк
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close()
}

// Tx интерфейс для работы с транзакциями. Rollback после Commit ничего не делает.
type Tx interface {
	Exec(ctx context.Context, query string, args ...interface{}) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
