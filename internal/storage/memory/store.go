// Package memory содержит хранилище в памяти для разработки и тестов.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/leveling"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
)

// Store хранит пользователей, клубы и запуски сброса в картах под одним мьютексом
type Store struct {
	mu    sync.RWMutex
	users map[string]*models.User
	clubs map[string]models.Club
	runs  []models.ResetRun

	*Locker
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		users: make(map[string]*models.User),
		clubs: make(map[string]models.Club),

		Locker: NewLocker(),
	}
}

// AddClub добавляет клуб
func (s *Store) AddClub(club models.Club) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubs[club.ID] = club
}

// PutUser добавляет или заменяет пользователя
func (s *Store) PutUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	u.JoinedClubs = append([]string(nil), user.JoinedClubs...)
	u.ClubWeeklyBadges = append([]models.RankBadge(nil), user.ClubWeeklyBadges...)
	s.users[u.ID] = &u
}

// Users возвращает копию всех пользователей, отсортированную по id
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// GetUser возвращает копию пользователя
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	user := copyUser(u)
	user.Level = leveling.LevelForXP(user.TotalXP)
	return &user, nil
}

// GetTopClubMembers возвращает лучших участников клуба по weeklyXP
func (s *Store) GetTopClubMembers(ctx context.Context, clubID string, limit int) ([]models.ClubMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []models.ClubMember
	for _, u := range s.users {
		if !contains(u.JoinedClubs, clubID) {
			continue
		}
		members = append(members, models.ClubMember{UserID: u.ID, Name: u.Name, WeeklyXP: u.WeeklyXP})
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].WeeklyXP != members[j].WeeklyXP {
			return members[i].WeeklyXP > members[j].WeeklyXP
		}
		return members[i].UserID < members[j].UserID
	})

	if limit >= 0 && len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

// AppendWeeklyBadge добавляет значок, если за эту неделю и клуб его еще нет
func (s *Store) AppendWeeklyBadge(ctx context.Context, userID string, badge models.RankBadge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, storage.ErrNotFound
	}
	for _, existing := range u.ClubWeeklyBadges {
		if existing.ClubID == badge.ClubID && existing.WeekStart.Equal(badge.WeekStart) {
			return false, nil
		}
	}
	u.ClubWeeklyBadges = append(u.ClubWeeklyBadges, badge)
	return true, nil
}

// ResetAllWeeklyXP обнуляет weeklyXP всем пользователям
func (s *Store) ResetAllWeeklyXP(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		u.WeeklyXP = 0
	}
	return int64(len(s.users)), nil
}

// ListClubs возвращает клубы по id
func (s *Store) ListClubs(ctx context.Context) ([]models.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clubs := make([]models.Club, 0, len(s.clubs))
	for _, c := range s.clubs {
		clubs = append(clubs, c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].ID < clubs[j].ID })
	return clubs, nil
}

// LastRunWeekStart возвращает неделю последнего успешного запуска
func (s *Store) LastRunWeekStart(ctx context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return time.Time{}, false, nil
	}
	latest := s.runs[0].WeekStart
	for _, run := range s.runs[1:] {
		if run.WeekStart.After(latest) {
			latest = run.WeekStart
		}
	}
	return latest, true, nil
}

// RecordRun сохраняет запуск; повтор той же недели игнорируется
func (s *Store) RecordRun(ctx context.Context, run models.ResetRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.runs {
		if existing.WeekStart.Equal(run.WeekStart) {
			return nil
		}
	}
	s.runs = append(s.runs, run)
	return nil
}

// Health всегда успешен
func (s *Store) Health(ctx context.Context) error {
	return nil
}

func copyUser(u *models.User) models.User {
	user := *u
	user.JoinedClubs = append([]string{}, u.JoinedClubs...)
	user.ClubWeeklyBadges = append([]models.RankBadge{}, u.ClubWeeklyBadges...)
	return user
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
