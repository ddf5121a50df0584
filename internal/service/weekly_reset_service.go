package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// maxRankBadges значки выдаются только за 1, 2 и 3 места
	maxRankBadges = 3

	weeklyResetLockPrefix = "weekly_reset:"

	resetStatusSuccess = "success"
	resetStatusFailure = "failure"
	resetStatusSkipped = "skipped"
)

var (
	// ErrResetAlreadyDone сброс за текущую неделю уже выполнен
	ErrResetAlreadyDone = errors.New("weekly reset already performed for this week")
	// ErrResetInProgress блокировка сброса удерживается другим процессом
	ErrResetInProgress = errors.New("weekly reset is already running")
)

// WeeklyResetConfig конфигурация еженедельного сброса
type WeeklyResetConfig struct {
	// CheckInterval как часто проверять окно сброса
	CheckInterval time.Duration
	// RunTimeout ограничение на один запуск
	RunTimeout time.Duration
	// LockTTL время жизни распределенной блокировки
	LockTTL time.Duration
	// TopRanks сколько мест в клубе получают значки (1..3)
	TopRanks int
	// CatchUpMissed запускать пропущенный сброс вне окна понедельника
	CatchUpMissed bool
}

// GetDefaultWeeklyResetConfig возвращает конфигурацию по умолчанию
func GetDefaultWeeklyResetConfig() WeeklyResetConfig {
	return WeeklyResetConfig{
		CheckInterval: 5 * time.Minute,  // окно сброса длится час
		RunTimeout:    10 * time.Minute, // весь проход по клубам
		LockTTL:       time.Hour,
		TopRanks:      maxRankBadges,
	}
}

// WeeklyResetDependencies зависимости сервиса сброса
type WeeklyResetDependencies struct {
	Users    storage.UserStore
	Clubs    storage.ClubStore
	RunState storage.RunStateStore
	Locker   storage.Locker
	Clock    Clock
	Metrics  storage.MetricsInterface
	Logger   *zap.Logger
}

// WeeklyResetService ранжирует участников клубов, выдает значки и обнуляет недельный опыт
type WeeklyResetService struct {
	users    storage.UserStore
	clubs    storage.ClubStore
	runState storage.RunStateStore
	locker   storage.Locker
	clock    Clock
	metrics  storage.MetricsInterface
	validate *validator.Validate
	logger   *zap.Logger
	config   WeeklyResetConfig
}

// NewWeeklyResetService создает сервис еженедельного сброса
func NewWeeklyResetService(deps WeeklyResetDependencies, config WeeklyResetConfig) *WeeklyResetService {
	defaults := GetDefaultWeeklyResetConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaults.RunTimeout
	}
	if config.LockTTL <= 0 {
		config.LockTTL = defaults.LockTTL
	}
	if config.TopRanks <= 0 || config.TopRanks > maxRankBadges {
		config.TopRanks = maxRankBadges
	}

	clock := deps.Clock
	if clock == nil {
		clock = &SystemClock{Location: time.Local}
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &WeeklyResetService{
		users:    deps.Users,
		clubs:    deps.Clubs,
		runState: deps.RunState,
		locker:   deps.Locker,
		clock:    clock,
		metrics:  metrics,
		validate: validator.New(),
		logger:   log,
		config:   config,
	}
}

// Start запускает фоновую проверку окна сброса
func (s *WeeklyResetService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	s.logger.Info("Starting weekly reset scheduler",
		zap.Duration("interval", s.config.CheckInterval),
		zap.Duration("run_timeout", s.config.RunTimeout),
		zap.Int("top_ranks", s.config.TopRanks),
		zap.Bool("catch_up_missed", s.config.CatchUpMissed))

	// Первая проверка сразу: процесс мог быть перезапущен внутри окна
	s.CheckAndResetIfMonday(ctx, s.clock.Now())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping weekly reset scheduler")
			return
		case <-ticker.C:
			s.CheckAndResetIfMonday(ctx, s.clock.Now())
		}
	}
}

// CheckAndResetIfMonday запускает сброс в первый час понедельника, если за эту неделю он еще не выполнялся.
// Результат виден только в логах и метриках.
func (s *WeeklyResetService) CheckAndResetIfMonday(ctx context.Context, now time.Time) {
	inWindow := IsResetWindow(now)
	if !inWindow && !s.config.CatchUpMissed {
		return
	}

	weekStart := GetWeekStart(now)
	checkLogger := s.logger.With(zap.Time("now", now), zap.Time("week_start", weekStart))

	lastRun, found, err := s.runState.LastRunWeekStart(ctx)
	if err != nil {
		checkLogger.Error("Failed to read last weekly reset marker", zap.Error(err))
		return
	}
	if found && !lastRun.Before(weekStart) {
		checkLogger.Debug("Weekly reset already performed for this week", zap.Time("last_run_week_start", lastRun))
		return
	}
	// Вне окна догоняем только пропущенную неделю, а не первый запуск на пустом хранилище
	if !inWindow && !found {
		return
	}
	if !inWindow {
		checkLogger.Warn("Catching up missed weekly reset", zap.Time("last_run_week_start", lastRun))
	}

	// Начатый сброс не прерывается остановкой планировщика, его ограничивает только RunTimeout
	result, err := s.runExclusive(context.WithoutCancel(ctx), now, true)
	switch {
	case errors.Is(err, ErrResetAlreadyDone):
		checkLogger.Debug("Weekly reset completed by another instance")
	case errors.Is(err, ErrResetInProgress):
		checkLogger.Info("Weekly reset lock is held by another instance")
	case err != nil:
		checkLogger.Error("Weekly reset was not started", zap.Error(err))
	case !result.Success:
		checkLogger.Error("Scheduled weekly reset failed",
			zap.String("run_id", result.RunID.String()),
			zap.String("error", result.Error))
	default:
		checkLogger.Info("Scheduled weekly reset completed",
			zap.String("run_id", result.RunID.String()),
			zap.Int("clubs_processed", result.ClubsProcessed),
			zap.Int("badges_awarded", result.BadgesAwarded),
			zap.Int64("affected_users", result.AffectedUsers))
	}
}

// TriggerNow запускает сброс немедленно. Без force уважает маркер текущей недели.
func (s *WeeklyResetService) TriggerNow(ctx context.Context, force bool) (models.ResetResult, error) {
	now := s.clock.Now()
	s.logger.Info("Manual weekly reset requested",
		zap.Bool("force", force),
		zap.Time("week_start", GetWeekStart(now)))
	return s.runExclusive(ctx, now, !force)
}

// runExclusive выполняет сброс под блокировкой и сохраняет маркер после успеха
func (s *WeeklyResetService) runExclusive(ctx context.Context, now time.Time, honourMarker bool) (models.ResetResult, error) {
	weekStart := GetWeekStart(now)
	lockKey := weeklyResetLockPrefix + weekStart.Format("2006-01-02")

	acquired, err := s.locker.TryLock(ctx, lockKey, s.config.LockTTL)
	if err != nil {
		return models.ResetResult{}, fmt.Errorf("failed to acquire weekly reset lock: %w", err)
	}
	if !acquired {
		s.metrics.IncResetRun(resetStatusSkipped)
		return models.ResetResult{}, ErrResetInProgress
	}
	defer s.unlock(ctx, lockKey)

	// Повторная проверка под блокировкой: другой экземпляр мог закончить между проверкой и захватом
	if honourMarker {
		lastRun, found, err := s.runState.LastRunWeekStart(ctx)
		if err != nil {
			return models.ResetResult{}, fmt.Errorf("failed to read last weekly reset marker: %w", err)
		}
		if found && !lastRun.Before(weekStart) {
			s.metrics.IncResetRun(resetStatusSkipped)
			return models.ResetResult{}, ErrResetAlreadyDone
		}
	}

	result := s.performReset(ctx, now)
	if result.Success {
		s.recordRun(ctx, result, now)
	}
	return result, nil
}

func (s *WeeklyResetService) unlock(ctx context.Context, key string) {
	unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.locker.Unlock(unlockCtx, key); err != nil {
		s.logger.Warn("Failed to release weekly reset lock", zap.String("key", key), zap.Error(err))
	}
}

func (s *WeeklyResetService) recordRun(ctx context.Context, result models.ResetResult, startedAt time.Time) {
	run := models.ResetRun{
		ID:             result.RunID,
		WeekStart:      result.WeekStart,
		StartedAt:      startedAt,
		FinishedAt:     s.clock.Now(),
		ClubsProcessed: result.ClubsProcessed,
		BadgesAwarded:  result.BadgesAwarded,
		AffectedUsers:  result.AffectedUsers,
	}

	// Маркер пишется даже если вызывающий контекст уже отменен
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.runState.RecordRun(recordCtx, run); err != nil {
		// Повторный запуск безопасен: значки не дублируются, обнуление идемпотентно
		s.logger.Error("Failed to record weekly reset run",
			zap.String("run_id", run.ID.String()),
			zap.Time("week_start", run.WeekStart),
			zap.Error(err))
	}
}

// PerformWeeklyReset выдает значки лучшим участникам каждого клуба и обнуляет недельный опыт всех пользователей.
// Ошибки не пробрасываются, а возвращаются в ResetResult.
func (s *WeeklyResetService) PerformWeeklyReset(ctx context.Context) models.ResetResult {
	return s.performReset(ctx, s.clock.Now())
}

func (s *WeeklyResetService) performReset(ctx context.Context, now time.Time) (result models.ResetResult) {
	started := time.Now()
	weekStart := GetWeekStart(now)
	result = models.ResetResult{
		RunID:     uuid.New(),
		WeekStart: weekStart,
	}

	runLogger := s.logger.With(
		zap.String("run_id", result.RunID.String()),
		zap.Time("week_start", weekStart))
	runLogger.Info("Starting weekly reset")

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Message = ""
			result.Error = fmt.Sprintf("weekly reset panicked: %v", r)
			runLogger.Error("Weekly reset panicked", zap.Any("panic", r))
		}

		status := resetStatusSuccess
		if !result.Success {
			status = resetStatusFailure
		}
		s.metrics.IncResetRun(status)
		s.metrics.ObserveResetDuration(time.Since(started))
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	if err := s.runReset(runCtx, runLogger, weekStart, now, &result); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("weekly reset timed out after %s: %w", s.config.RunTimeout, err)
		}
		result.Success = false
		result.Error = err.Error()
		runLogger.Error("Weekly reset failed",
			zap.Error(err),
			zap.Int("clubs_processed", result.ClubsProcessed),
			zap.Int("badges_awarded", result.BadgesAwarded),
			zap.Duration("duration", time.Since(started)))
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("weekly reset completed: %d users reset, %d badges awarded across %d clubs",
		result.AffectedUsers, result.BadgesAwarded, result.ClubsProcessed)
	runLogger.Info("Weekly reset completed",
		zap.Int("clubs_processed", result.ClubsProcessed),
		zap.Int("badges_awarded", result.BadgesAwarded),
		zap.Int64("affected_users", result.AffectedUsers),
		zap.Duration("duration", time.Since(started)))
	return result
}

// runReset сначала значки по всем клубам, затем общее обнуление
func (s *WeeklyResetService) runReset(ctx context.Context, runLogger *zap.Logger, weekStart, earnedAt time.Time, result *models.ResetResult) error {
	clubs, err := s.clubs.ListClubs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list clubs: %w", err)
	}

	for _, club := range clubs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("weekly reset interrupted before club %s: %w", club.ID, err)
		}

		awarded, err := s.awardClubBadges(ctx, runLogger, club, weekStart, earnedAt)
		result.BadgesAwarded += awarded
		if err != nil {
			return err
		}
		result.ClubsProcessed++
	}

	// Обнуляются все пользователи, включая тех, кто не состоит ни в одном клубе
	affected, err := s.users.ResetAllWeeklyXP(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset weekly XP: %w", err)
	}
	result.AffectedUsers = affected
	s.metrics.AddUsersReset(affected)

	return nil
}

// awardClubBadges выдает значки лучшим участникам одного клуба
func (s *WeeklyResetService) awardClubBadges(ctx context.Context, runLogger *zap.Logger, club models.Club, weekStart, earnedAt time.Time) (int, error) {
	members, err := s.users.GetTopClubMembers(ctx, club.ID, s.config.TopRanks)
	if err != nil {
		return 0, fmt.Errorf("failed to get top members of club %s: %w", club.ID, err)
	}

	awards := make([]models.BadgeAward, 0, maxRankBadges)
	for i, member := range RankMembers(members, s.config.TopRanks) {
		// Участник без опыта за неделю значок не получает, даже попав в тройку
		if member.WeeklyXP <= 0 {
			continue
		}

		badge := models.RankBadge{
			ClubID:    club.ID,
			ClubName:  club.Name,
			Rank:      i + 1,
			WeekStart: weekStart,
			EarnedAt:  earnedAt,
		}
		if err := s.validate.Struct(badge); err != nil {
			return 0, fmt.Errorf("invalid badge for user %s in club %s: %w", member.UserID, club.ID, err)
		}
		awards = append(awards, models.BadgeAward{UserID: member.UserID, Badge: badge})
	}
	if len(awards) == 0 {
		return 0, nil
	}

	appended, err := s.appendBadges(ctx, awards)

	awarded := 0
	for i, ok := range appended {
		award := awards[i]
		if !ok {
			runLogger.Debug("Badge already awarded for this week",
				zap.String("club_id", club.ID),
				zap.String("user_id", award.UserID),
				zap.Int("rank", award.Badge.Rank))
			continue
		}
		awarded++
		s.metrics.IncBadgeAwarded(award.Badge.Rank)
	}

	return awarded, err
}

// appendBadges пишет значки клуба одной транзакцией, если хранилище это умеет, иначе по одному
func (s *WeeklyResetService) appendBadges(ctx context.Context, awards []models.BadgeAward) ([]bool, error) {
	clubID := awards[0].Badge.ClubID

	if writer, ok := s.users.(storage.ClubBadgeWriter); ok {
		appended, err := writer.AppendClubBadges(ctx, awards)
		if err != nil {
			return nil, fmt.Errorf("failed to award badges in club %s: %w", clubID, err)
		}
		return appended, nil
	}

	appended := make([]bool, 0, len(awards))
	for _, award := range awards {
		ok, err := s.users.AppendWeeklyBadge(ctx, award.UserID, award.Badge)
		if err != nil {
			return appended, fmt.Errorf("failed to award rank %d badge to user %s in club %s: %w",
				award.Badge.Rank, award.UserID, clubID, err)
		}
		appended = append(appended, ok)
	}
	return appended, nil
}

// RankMembers сортирует участников по убыванию weeklyXP, при равенстве по возрастанию id,
// и оставляет не более limit (и не более трех) первых
func RankMembers(members []models.ClubMember, limit int) []models.ClubMember {
	if limit <= 0 || limit > maxRankBadges {
		limit = maxRankBadges
	}

	ranked := make([]models.ClubMember, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].WeeklyXP != ranked[j].WeeklyXP {
			return ranked[i].WeeklyXP > ranked[j].WeeklyXP
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// noopMetrics используется, когда сборщик метрик не передан
type noopMetrics struct{}

func (noopMetrics) IncDBQuery(string) {}
func (noopMetrics) ObserveDBQueryDuration(string, time.Duration) {}
func (noopMetrics) IncResetRun(string) {}
func (noopMetrics) ObserveResetDuration(time.Duration) {}
func (noopMetrics) IncBadgeAwarded(int) {}
func (noopMetrics) AddUsersReset(int64) {}
func (noopMetrics) IncLevelCalculation(string) {}
