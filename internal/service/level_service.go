package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/leveling"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrUserNotFound пользователь не найден в хранилище
var ErrUserNotFound = errors.New("user not found")

// UserLevel уровень пользователя вместе с прогрессом
type UserLevel struct {
	UserID   string             `json:"user_id"`
	Name     string             `json:"name"`
	WeeklyXP int64              `json:"weekly_xp"`
	Progress leveling.Progress  `json:"progress"`
	Badges   []models.RankBadge `json:"club_weekly_badges"`
}

// LevelService отдает расчет уровня внешним потребителям
type LevelService struct {
	users    storage.UserStore
	metrics  storage.MetricsInterface
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLevelService создает сервис уровней
func NewLevelService(users storage.UserStore, metrics storage.MetricsInterface, logger *zap.Logger) *LevelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &LevelService{
		users:    users,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
	}
}

// Calculate проверяет запрос и возвращает прогресс для заданного опыта
func (s *LevelService) Calculate(query models.LevelQuery) (leveling.Progress, error) {
	progress, err := leveling.CalculateProgress(query.XP)
	if err != nil {
		s.metrics.IncLevelCalculation("invalid")
		return leveling.Progress{}, err
	}
	if err := s.validate.Struct(query); err != nil {
		s.metrics.IncLevelCalculation("invalid")
		return leveling.Progress{}, fmt.Errorf("invalid level query: %w", err)
	}

	s.metrics.IncLevelCalculation("ok")
	return progress, nil
}

// GetUserLevel пересчитывает уровень пользователя по его суммарному опыту
func (s *LevelService) GetUserLevel(ctx context.Context, userID string) (*UserLevel, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("Failed to load user for level calculation",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	progress, err := leveling.CalculateProgress(float64(user.TotalXP))
	if err != nil {
		return nil, err
	}
	s.metrics.IncLevelCalculation("ok")

	badges := user.ClubWeeklyBadges
	if badges == nil {
		badges = []models.RankBadge{}
	}

	return &UserLevel{
		UserID:   user.ID,
		Name:     user.Name,
		WeeklyXP: user.WeeklyXP,
		Progress: progress,
		Badges:   badges,
	}, nil
}
