package service

import (
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
	"go.uber.org/zap"
)

// ServiceDependencies содержит зависимости для создания сервисов
type ServiceDependencies struct {
	Repository  *storage.Repository
	Locker      storage.Locker
	Clock       Clock
	Metrics     storage.MetricsInterface
	Logger      *zap.Logger
	WeeklyReset WeeklyResetConfig
}

// Service объединяет все сервисы
type Service struct {
	WeeklyReset *WeeklyResetService
	Level       *LevelService
}

// NewService создает новый экземпляр Service со всеми сервисами
func NewService(deps *ServiceDependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		WeeklyReset: NewWeeklyResetService(WeeklyResetDependencies{
			Users:    deps.Repository.User,
			Clubs:    deps.Repository.Club,
			RunState: deps.Repository.RunState,
			Locker:   deps.Locker,
			Clock:    deps.Clock,
			Metrics:  deps.Metrics,
			Logger:   log.Named("weekly_reset"),
		}, deps.WeeklyReset),
		Level: NewLevelService(deps.Repository.User, deps.Metrics, log.Named("level")),
	}
}
