package models

import "time"

// User представляет участника платформы с полями, которые нужны прогрессии
type User struct {
	ID               string      `json:"id" bson:"_id" db:"id"`
	Name             string      `json:"name" bson:"name" db:"name"`
	WeeklyXP         int64       `json:"weekly_xp" bson:"weeklyXP" db:"weekly_xp"`
	TotalXP          int64       `json:"total_xp" bson:"totalXP" db:"total_xp"`
	Level            int         `json:"level" bson:"level" db:"level"`
	JoinedClubs      []string    `json:"joined_clubs" bson:"joinedClubs" db:"-"`
	ClubWeeklyBadges []RankBadge `json:"club_weekly_badges" bson:"clubWeeklyBadges" db:"-"`
}

// ClubMember проекция пользователя для ранжирования внутри клуба
type ClubMember struct {
	UserID   string `json:"user_id" bson:"_id" db:"user_id"`
	Name     string `json:"name" bson:"name" db:"name"`
	WeeklyXP int64  `json:"weekly_xp" bson:"weeklyXP" db:"weekly_xp"`
}

// Club представляет клуб кампуса
type Club struct {
	ID   string `json:"id" bson:"_id" db:"id"`
	Name string `json:"name" bson:"name" db:"name"`
}

// RankBadge неизменяемая запись о месте пользователя в недельном рейтинге клуба
type RankBadge struct {
	ClubID    string    `json:"club_id" bson:"clubId" db:"club_id" validate:"required"`
	ClubName  string    `json:"club_name" bson:"clubName" db:"club_name"`
	Rank      int       `json:"rank" bson:"rank" db:"rank" validate:"min=1,max=3"`
	WeekStart time.Time `json:"week_start" bson:"weekStart" db:"week_start" validate:"required"`
	EarnedAt  time.Time `json:"earned_at" bson:"earnedAt" db:"earned_at" validate:"required"`
}
