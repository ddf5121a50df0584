package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
)

func newTestUserRepository() (*MockDatabaseInterface, *MockMetricsInterface, UserStore) {
	mockDB := &MockDatabaseInterface{}
	mockMetrics := &MockMetricsInterface{}
	repo := NewUserRepository(&RepositoryDependencies{
		DB:               mockDB,
		MetricsCollector: mockMetrics,
	})
	return mockDB, mockMetrics, repo
}

func TestUserRepository_GetTopClubMembers(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()

	rows := &MockRows{data: [][]interface{}{
		{"u1", "Asha", int64(50)},
		{"u3", "Ben", int64(30)},
		{"u4", "Chen", int64(30)},
	}}
	rows.On("Err").Return(nil)
	rows.On("Close").Return()

	mockDB.On("Query", mock.Anything, selectTopClubMembersQuery, []interface{}{"chess", 3}).Return(rows, nil)
	mockMetrics.On("IncDBQuery", "club_top_members")
	mockMetrics.On("ObserveDBQueryDuration", "club_top_members", mock.Anything)

	members, err := repo.GetTopClubMembers(context.Background(), "chess", 3)

	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, models.ClubMember{UserID: "u1", Name: "Asha", WeeklyXP: 50}, members[0])
	assert.Equal(t, "u4", members[2].UserID)
	mockDB.AssertExpectations(t)
	rows.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

func TestUserRepository_GetTopClubMembers_QueryError(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()

	mockDB.On("Query", mock.Anything, selectTopClubMembersQuery, mock.Anything).Return(nil, errors.New("connection reset"))
	mockMetrics.On("IncDBQuery", mock.Anything)
	mockMetrics.On("ObserveDBQueryDuration", mock.Anything, mock.Anything)

	members, err := repo.GetTopClubMembers(context.Background(), "chess", 3)

	assert.Nil(t, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query club members")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestUserRepository_AppendWeeklyBadge(t *testing.T) {
	weekStart := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	badge := models.RankBadge{
		ClubID:    "chess",
		ClubName:  "Chess Club",
		Rank:      1,
		WeekStart: weekStart,
		EarnedAt:  weekStart.Add(15 * time.Minute),
	}
	args := []interface{}{"u1", "chess", "Chess Club", 1, badge.WeekStart, badge.EarnedAt}

	t.Run("inserted", func(t *testing.T) {
		mockDB, mockMetrics, repo := newTestUserRepository()
		mockDB.On("Exec", mock.Anything, insertWeeklyBadgeQuery, args).Return(int64(1), nil)
		mockMetrics.On("IncDBQuery", "badge_append")
		mockMetrics.On("ObserveDBQueryDuration", "badge_append", mock.Anything)

		appended, err := repo.AppendWeeklyBadge(context.Background(), "u1", badge)

		require.NoError(t, err)
		assert.True(t, appended)
		mockDB.AssertExpectations(t)
	})

	t.Run("duplicate week is ignored", func(t *testing.T) {
		mockDB, mockMetrics, repo := newTestUserRepository()
		mockDB.On("Exec", mock.Anything, insertWeeklyBadgeQuery, args).Return(int64(0), nil)
		mockMetrics.On("IncDBQuery", mock.Anything)
		mockMetrics.On("ObserveDBQueryDuration", mock.Anything, mock.Anything)

		appended, err := repo.AppendWeeklyBadge(context.Background(), "u1", badge)

		require.NoError(t, err)
		assert.False(t, appended)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockDB, mockMetrics, repo := newTestUserRepository()
		pgErr := &pgconn.PgError{Code: PgErrorCodeForeignKeyViolation, Message: "violates foreign key"}
		mockDB.On("Exec", mock.Anything, insertWeeklyBadgeQuery, args).Return(int64(0), pgErr)
		mockMetrics.On("IncDBQuery", mock.Anything)
		mockMetrics.On("ObserveDBQueryDuration", mock.Anything, mock.Anything)

		appended, err := repo.AppendWeeklyBadge(context.Background(), "u1", badge)

		assert.False(t, appended)
		var dbErr *DatabaseError
		require.ErrorAs(t, err, &dbErr)
		assert.ErrorIs(t, err, pgErr)
	})
}

func testBadgeAwards() []models.BadgeAward {
	weekStart := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	earnedAt := weekStart.Add(10 * time.Minute)
	return []models.BadgeAward{
		{UserID: "u1", Badge: models.RankBadge{ClubID: "chess", ClubName: "Chess Club", Rank: 1, WeekStart: weekStart, EarnedAt: earnedAt}},
		{UserID: "u3", Badge: models.RankBadge{ClubID: "chess", ClubName: "Chess Club", Rank: 2, WeekStart: weekStart, EarnedAt: earnedAt}},
	}
}

func TestUserRepository_AppendClubBadges(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()
	mockTx := &MockTx{}
	awards := testBadgeAwards()

	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("Exec", mock.Anything, insertWeeklyBadgeQuery, []interface{}{
		"u1", "chess", "Chess Club", 1, awards[0].Badge.WeekStart, awards[0].Badge.EarnedAt,
	}).Return(int64(1), nil)
	mockTx.On("Exec", mock.Anything, insertWeeklyBadgeQuery, []interface{}{
		"u3", "chess", "Chess Club", 2, awards[1].Badge.WeekStart, awards[1].Badge.EarnedAt,
	}).Return(int64(0), nil)
	mockTx.On("Commit", mock.Anything).Return(nil)
	mockTx.On("Rollback", mock.Anything).Return(nil)
	mockMetrics.On("IncDBQuery", "club_badges_append")
	mockMetrics.On("ObserveDBQueryDuration", "club_badges_append", mock.Anything)

	writer, ok := repo.(ClubBadgeWriter)
	require.True(t, ok)

	appended, err := writer.AppendClubBadges(context.Background(), awards)

	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, appended)
	mockDB.AssertExpectations(t)
	mockTx.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

func TestUserRepository_AppendClubBadges_RollsBackOnError(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()
	mockTx := &MockTx{}

	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("Exec", mock.Anything, insertWeeklyBadgeQuery, mock.Anything).Return(int64(1), nil).Once()
	mockTx.On("Exec", mock.Anything, insertWeeklyBadgeQuery, mock.Anything).Return(int64(0), errors.New("connection reset")).Once()
	mockTx.On("Rollback", mock.Anything).Return(nil)
	mockMetrics.On("IncDBQuery", mock.Anything)
	mockMetrics.On("ObserveDBQueryDuration", mock.Anything, mock.Anything)

	appended, err := repo.(ClubBadgeWriter).AppendClubBadges(context.Background(), testBadgeAwards())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Nil(t, appended)
	mockTx.AssertCalled(t, "Rollback", mock.Anything)
	mockTx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestUserRepository_AppendClubBadges_BeginError(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()

	mockDB.On("BeginTx", mock.Anything).Return(nil, errors.New("too many connections"))
	mockMetrics.On("IncDBQuery", mock.Anything)
	mockMetrics.On("ObserveDBQueryDuration", mock.Anything, mock.Anything)

	_, err := repo.(ClubBadgeWriter).AppendClubBadges(context.Background(), testBadgeAwards())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin badge transaction")
}

func TestUserRepository_ResetAllWeeklyXP(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()
	mockDB.On("Exec", mock.Anything, resetWeeklyXPQuery, []interface{}(nil)).Return(int64(42), nil)
	mockMetrics.On("IncDBQuery", "weekly_xp_reset")
	mockMetrics.On("ObserveDBQueryDuration", "weekly_xp_reset", mock.Anything)

	affected, err := repo.ResetAllWeeklyXP(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), affected)
	mockDB.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

func TestUserRepository_ResetAllWeeklyXP_Error(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()
	mockDB.On("Exec", mock.Anything, resetWeeklyXPQuery, mock.Anything).Return(int64(0), errors.New("read-only transaction"))
	mockMetrics.On("IncDBQuery", mock.Anything)
	mockMetrics.On("ObserveDBQueryDuration", mock.Anything, mock.Anything)

	_, err := repo.ResetAllWeeklyXP(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reset weekly xp")
}

func TestUserRepository_GetUser(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()
	weekStart := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	mockDB.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []interface{}{"u1"}).Return(&MockRow{values: []interface{}{"u1", "Asha", int64(15), int64(2600)}})

	clubRows := &MockRows{data: [][]interface{}{{"chess"}, {"drama"}}}
	clubRows.On("Err").Return(nil)
	clubRows.On("Close").Return()
	badgeRows := &MockRows{data: [][]interface{}{
		{"chess", "Chess Club", 2, weekStart, weekStart.Add(time.Minute)},
	}}
	badgeRows.On("Err").Return(nil)
	badgeRows.On("Close").Return()

	mockDB.On("Query", mock.Anything, `SELECT club_id FROM club_members WHERE user_id = $1 ORDER BY club_id`, []interface{}{"u1"}).Return(clubRows, nil)
	mockDB.On("Query", mock.Anything, mock.MatchedBy(func(q string) bool {
		return q != `SELECT club_id FROM club_members WHERE user_id = $1 ORDER BY club_id`
	}), []interface{}{"u1"}).Return(badgeRows, nil)
	mockMetrics.On("IncDBQuery", "user_get")
	mockMetrics.On("ObserveDBQueryDuration", "user_get", mock.Anything)

	user, err := repo.GetUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, int64(15), user.WeeklyXP)
	assert.Equal(t, 3, user.Level)
	assert.Equal(t, []string{"chess", "drama"}, user.JoinedClubs)
	require.Len(t, user.ClubWeeklyBadges, 1)
	assert.Equal(t, 2, user.ClubWeeklyBadges[0].Rank)
	assert.True(t, weekStart.Equal(user.ClubWeeklyBadges[0].WeekStart))
}

func TestUserRepository_GetUser_NotFound(t *testing.T) {
	mockDB, mockMetrics, repo := newTestUserRepository()
	mockDB.On("QueryRow", mock.Anything, mock.Anything, []interface{}{"ghost"}).Return(&MockRow{err: pgx.ErrNoRows})
	mockMetrics.On("IncDBQuery", mock.Anything)
	mockMetrics.On("ObserveDBQueryDuration", mock.Anything, mock.Anything)

	user, err := repo.GetUser(context.Background(), "ghost")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrNotFound)
	mockDB.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestClubRepository_ListClubs(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	repo := NewClubRepository(&RepositoryDependencies{DB: mockDB})

	rows := &MockRows{data: [][]interface{}{{"chess", "Chess Club"}, {"drama", "Drama Society"}}}
	rows.On("Err").Return(nil)
	rows.On("Close").Return()
	mockDB.On("Query", mock.Anything, `SELECT id, name FROM clubs ORDER BY id`, []interface{}(nil)).Return(rows, nil)

	clubs, err := repo.ListClubs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []models.Club{
		{ID: "chess", Name: "Chess Club"},
		{ID: "drama", Name: "Drama Society"},
	}, clubs)
	rows.AssertExpectations(t)
}

func TestClubRepository_ListClubs_IterationError(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	repo := NewClubRepository(&RepositoryDependencies{DB: mockDB})

	rows := &MockRows{}
	rows.On("Err").Return(errors.New("conn closed"))
	rows.On("Close").Return()
	mockDB.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

	clubs, err := repo.ListClubs(context.Background())

	assert.Nil(t, clubs)
	assert.Error(t, err)
}

func TestHandleDatabaseError(t *testing.T) {
	assert.NoError(t, handleDatabaseError(nil, "noop"))
	assert.ErrorIs(t, handleDatabaseError(pgx.ErrNoRows, "get"), ErrNotFound)

	undefined := handleDatabaseError(&pgconn.PgError{Code: PgErrorCodeUndefinedTable}, "list clubs")
	var dbErr *DatabaseError
	require.ErrorAs(t, undefined, &dbErr)
	assert.Contains(t, dbErr.Error(), "run migrations")

	duplicate := handleDatabaseError(&pgconn.PgError{Code: PgErrorCodeUniqueViolation, ConstraintName: "weekly_reset_runs_pkey"}, "record run")
	require.ErrorAs(t, duplicate, &dbErr)
	assert.Contains(t, dbErr.Error(), "duplicate record (weekly_reset_runs_pkey)")

	wrapped := handleDatabaseError(errors.New("boom"), "reset")
	assert.EqualError(t, wrapped, "reset: boom")
}
