package models

import (
	"time"

	"github.com/google/uuid"
)

// ResetResult результат одного запуска еженедельного сброса
type ResetResult struct {
	Success        bool      `json:"success"`
	Message        string    `json:"message,omitempty"`
	Error          string    `json:"error,omitempty"`
	RunID          uuid.UUID `json:"run_id"`
	WeekStart      time.Time `json:"week_start"`
	ClubsProcessed int       `json:"clubs_processed"`
	BadgesAwarded  int       `json:"badges_awarded"`
	AffectedUsers  int64     `json:"affected_users"`
}

// ResetRun запись об успешном запуске, используется как маркер идемпотентности
type ResetRun struct {
	ID             uuid.UUID `json:"id" bson:"_id" db:"id"`
	WeekStart      time.Time `json:"week_start" bson:"weekStart" db:"week_start"`
	StartedAt      time.Time `json:"started_at" bson:"startedAt" db:"started_at"`
	FinishedAt     time.Time `json:"finished_at" bson:"finishedAt" db:"finished_at"`
	ClubsProcessed int       `json:"clubs_processed" bson:"clubsProcessed" db:"clubs_processed"`
	BadgesAwarded  int       `json:"badges_awarded" bson:"badgesAwarded" db:"badges_awarded"`
	AffectedUsers  int64     `json:"affected_users" bson:"affectedUsers" db:"affected_users"`
}

// BadgeAward значок, назначенный конкретному участнику клуба
type BadgeAward struct {
	UserID string
	Badge  RankBadge
}

// LevelQuery параметры запроса расчета уровня
type LevelQuery struct {
	XP float64 `validate:"gte=0,lte=1000000000000000"`
}
