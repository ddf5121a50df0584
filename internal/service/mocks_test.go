package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
)

// MockUserStore мок для storage.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetTopClubMembers(ctx context.Context, clubID string, limit int) ([]models.ClubMember, error) {
	args := m.Called(ctx, clubID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ClubMember), args.Error(1)
}

func (m *MockUserStore) AppendWeeklyBadge(ctx context.Context, userID string, badge models.RankBadge) (bool, error) {
	args := m.Called(ctx, userID, badge)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) ResetAllWeeklyXP(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockClubStore мок для storage.ClubStore
type MockClubStore struct {
	mock.Mock
}

func (m *MockClubStore) ListClubs(ctx context.Context) ([]models.Club, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Club), args.Error(1)
}

// MockRunStateStore мок для storage.RunStateStore
type MockRunStateStore struct {
	mock.Mock
}

func (m *MockRunStateStore) LastRunWeekStart(ctx context.Context) (time.Time, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockRunStateStore) RecordRun(ctx context.Context, run models.ResetRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// MockLocker мок для storage.Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) Unlock(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockBadgeWriterStore мок хранилища, которое пишет значки клуба одной транзакцией
type MockBadgeWriterStore struct {
	MockUserStore
}

func (m *MockBadgeWriterStore) AppendClubBadges(ctx context.Context, awards []models.BadgeAward) ([]bool, error) {
	args := m.Called(ctx, awards)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bool), args.Error(1)
}

// MockMetrics мок для storage.MetricsInterface
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) IncDBQuery(operation string) {
	m.Called(operation)
}

func (m *MockMetrics) ObserveDBQueryDuration(operation string, duration time.Duration) {
	m.Called(operation, duration)
}

func (m *MockMetrics) IncResetRun(status string) {
	m.Called(status)
}

func (m *MockMetrics) ObserveResetDuration(duration time.Duration) {
	m.Called(duration)
}

func (m *MockMetrics) IncBadgeAwarded(rank int) {
	m.Called(rank)
}

func (m *MockMetrics) AddUsersReset(count int64) {
	m.Called(count)
}

func (m *MockMetrics) IncLevelCalculation(status string) {
	m.Called(status)
}

// fixedClock всегда возвращает одно и то же время
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}
