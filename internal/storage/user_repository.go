package storage

import (
	"context"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/leveling"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
)

// userRepository реализует UserStore поверх PostgreSQL
type userRepository struct {
	db      DatabaseInterface
	metrics MetricsInterface
}

var _ ClubBadgeWriter = (*userRepository)(nil)

// NewUserRepository создает новый экземпляр репозитория пользователей
func NewUserRepository(deps *RepositoryDependencies) UserStore {
	return &userRepository{
		db:      deps.DB,
		metrics: deps.MetricsCollector,
	}
}

const selectTopClubMembersQuery = `
		SELECT u.id, u.name, COALESCE(u.weekly_xp, 0) AS weekly_xp
		FROM users u
		JOIN club_members cm ON cm.user_id = u.id
		WHERE cm.club_id = $1
		ORDER BY weekly_xp DESC, u.id ASC
		LIMIT $2`

const insertWeeklyBadgeQuery = `
		INSERT INTO user_club_weekly_badges (
			user_id, club_id, club_name, rank, week_start, earned_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (user_id, club_id, week_start) DO NOTHING`

const resetWeeklyXPQuery = `UPDATE users SET weekly_xp = 0`

// GetTopClubMembers возвращает лучших участников клуба по недельному опыту
func (r *userRepository) GetTopClubMembers(ctx context.Context, clubID string, limit int) ([]models.ClubMember, error) {
	start := time.Now()
	defer r.observe("club_top_members", start)

	rows, err := r.db.Query(ctx, selectTopClubMembersQuery, clubID, limit)
	if err != nil {
		return nil, handleDatabaseError(err, "failed to query club members")
	}
	defer rows.Close()

	members := make([]models.ClubMember, 0, limit)
	for rows.Next() {
		var member models.ClubMember
		if err := rows.Scan(&member.UserID, &member.Name, &member.WeeklyXP); err != nil {
			return nil, handleDatabaseError(err, "failed to scan club member")
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, handleDatabaseError(err, "failed to iterate club members")
	}

	return members, nil
}

// AppendWeeklyBadge добавляет значок; повтор за ту же неделю игнорируется уникальным ключом
func (r *userRepository) AppendWeeklyBadge(ctx context.Context, userID string, badge models.RankBadge) (bool, error) {
	start := time.Now()
	defer r.observe("badge_append", start)

	affected, err := r.db.Exec(ctx, insertWeeklyBadgeQuery,
		userID,
		badge.ClubID,
		badge.ClubName,
		badge.Rank,
		badge.WeekStart,
		badge.EarnedAt,
	)
	if err != nil {
		return false, handleDatabaseError(err, "failed to insert weekly badge")
	}

	return affected > 0, nil
}

// AppendClubBadges записывает значки одного клуба в одной транзакции: либо все, либо ни одного
func (r *userRepository) AppendClubBadges(ctx context.Context, awards []models.BadgeAward) ([]bool, error) {
	start := time.Now()
	defer r.observe("club_badges_append", start)

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, handleDatabaseError(err, "failed to begin badge transaction")
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	appended := make([]bool, 0, len(awards))
	for _, award := range awards {
		affected, err := tx.Exec(ctx, insertWeeklyBadgeQuery,
			award.UserID,
			award.Badge.ClubID,
			award.Badge.ClubName,
			award.Badge.Rank,
			award.Badge.WeekStart,
			award.Badge.EarnedAt,
		)
		if err != nil {
			return nil, handleDatabaseError(err, "failed to insert weekly badge")
		}
		appended = append(appended, affected > 0)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, handleDatabaseError(err, "failed to commit badge transaction")
	}
	return appended, nil
}

// ResetAllWeeklyXP обнуляет недельный опыт всем пользователям одним запросом
func (r *userRepository) ResetAllWeeklyXP(ctx context.Context) (int64, error) {
	start := time.Now()
	defer r.observe("weekly_xp_reset", start)

	affected, err := r.db.Exec(ctx, resetWeeklyXPQuery)
	if err != nil {
		return 0, handleDatabaseError(err, "failed to reset weekly xp")
	}
	return affected, nil
}

// GetUser возвращает пользователя с клубами и значками
func (r *userRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	start := time.Now()
	defer r.observe("user_get", start)

	var user models.User
	query := `
		SELECT id, name, COALESCE(weekly_xp, 0), COALESCE(total_xp, 0)
		FROM users
		WHERE id = $1`

	if err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Name, &user.WeeklyXP, &user.TotalXP); err != nil {
		return nil, handleDatabaseError(err, "failed to get user")
	}
	user.Level = leveling.LevelForXP(user.TotalXP)

	clubRows, err := r.db.Query(ctx, `SELECT club_id FROM club_members WHERE user_id = $1 ORDER BY club_id`, userID)
	if err != nil {
		return nil, handleDatabaseError(err, "failed to query user clubs")
	}
	defer clubRows.Close()

	user.JoinedClubs = []string{}
	for clubRows.Next() {
		var clubID string
		if err := clubRows.Scan(&clubID); err != nil {
			return nil, handleDatabaseError(err, "failed to scan user club")
		}
		user.JoinedClubs = append(user.JoinedClubs, clubID)
	}
	if err := clubRows.Err(); err != nil {
		return nil, handleDatabaseError(err, "failed to iterate user clubs")
	}

	badgeQuery := `
		SELECT club_id, club_name, rank, week_start, earned_at
		FROM user_club_weekly_badges
		WHERE user_id = $1
		ORDER BY earned_at, club_id`

	badgeRows, err := r.db.Query(ctx, badgeQuery, userID)
	if err != nil {
		return nil, handleDatabaseError(err, "failed to query user badges")
	}
	defer badgeRows.Close()

	user.ClubWeeklyBadges = []models.RankBadge{}
	for badgeRows.Next() {
		var badge models.RankBadge
		if err := badgeRows.Scan(&badge.ClubID, &badge.ClubName, &badge.Rank, &badge.WeekStart, &badge.EarnedAt); err != nil {
			return nil, handleDatabaseError(err, "failed to scan user badge")
		}
		user.ClubWeeklyBadges = append(user.ClubWeeklyBadges, badge)
	}
	if err := badgeRows.Err(); err != nil {
		return nil, handleDatabaseError(err, "failed to iterate user badges")
	}

	return &user, nil
}

func (r *userRepository) observe(operation string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.IncDBQuery(operation)
	r.metrics.ObserveDBQueryDuration(operation, time.Since(start))
}
