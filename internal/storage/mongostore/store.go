// Package mongostore реализует хранилища прогрессии поверх MongoDB,
// где пользователи хранят клубы и значки внутри документа.
package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/leveling"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage"
)

// Имена коллекций
const (
	CollectionUsers     = "users"
	CollectionClubs     = "clubs"
	CollectionResetRuns = "weekly_reset_runs"
)

// Store реализует storage.UserStore, storage.ClubStore и storage.RunStateStore
type Store struct {
	users   *mongo.Collection
	clubs   *mongo.Collection
	runs    *mongo.Collection
	metrics storage.MetricsInterface
}

// NewStore создает хранилище поверх базы данных
func NewStore(db *mongo.Database, metrics storage.MetricsInterface) *Store {
	return &Store{
		users:   db.Collection(CollectionUsers),
		clubs:   db.Collection(CollectionClubs),
		runs:    db.Collection(CollectionResetRuns),
		metrics: metrics,
	}
}

// runDocument документ запуска; uuid хранится строкой
type runDocument struct {
	ID             string    `bson:"_id"`
	WeekStart      time.Time `bson:"weekStart"`
	StartedAt      time.Time `bson:"startedAt"`
	FinishedAt     time.Time `bson:"finishedAt"`
	ClubsProcessed int       `bson:"clubsProcessed"`
	BadgesAwarded  int       `bson:"badgesAwarded"`
	AffectedUsers  int64     `bson:"affectedUsers"`
}

// GetTopClubMembers возвращает лучших участников клуба по weeklyXP
func (s *Store) GetTopClubMembers(ctx context.Context, clubID string, limit int) ([]models.ClubMember, error) {
	defer s.observe("club_top_members", time.Now())

	opts := options.Find().
		SetSort(bson.D{{Key: "weeklyXP", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"name": 1, "weeklyXP": 1})

	cursor, err := s.users.Find(ctx, clubMembersFilter(clubID), opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query club members")
	}
	defer cursor.Close(ctx)

	members := make([]models.ClubMember, 0, limit)
	if err := cursor.All(ctx, &members); err != nil {
		return nil, errors.Wrap(err, "failed to decode club members")
	}
	return members, nil
}

// AppendWeeklyBadge добавляет значок, если за эту неделю и клуб его еще нет
func (s *Store) AppendWeeklyBadge(ctx context.Context, userID string, badge models.RankBadge) (bool, error) {
	defer s.observe("badge_append", time.Now())

	update := bson.M{"$push": bson.M{"clubWeeklyBadges": badge}}
	result, err := s.users.UpdateOne(ctx, badgeAppendFilter(userID, badge), update)
	if err != nil {
		return false, errors.Wrap(err, "failed to append weekly badge")
	}
	return result.ModifiedCount > 0, nil
}

// ResetAllWeeklyXP обнуляет weeklyXP во всех документах пользователей
func (s *Store) ResetAllWeeklyXP(ctx context.Context) (int64, error) {
	defer s.observe("weekly_xp_reset", time.Now())

	result, err := s.users.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"weeklyXP": 0}})
	if err != nil {
		return 0, errors.Wrap(err, "failed to reset weekly xp")
	}
	return result.MatchedCount, nil
}

// GetUser возвращает пользователя по ID
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	defer s.observe("user_get", time.Now())

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": idValue(userID)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get user")
	}
	user.Level = leveling.LevelForXP(user.TotalXP)
	return &user, nil
}

// ListClubs возвращает все клубы
func (s *Store) ListClubs(ctx context.Context) ([]models.Club, error) {
	defer s.observe("club_list", time.Now())

	opts := options.Find().SetProjection(bson.M{"name": 1})
	cursor, err := s.clubs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query clubs")
	}
	defer cursor.Close(ctx)

	var clubs []models.Club
	if err := cursor.All(ctx, &clubs); err != nil {
		return nil, errors.Wrap(err, "failed to decode clubs")
	}
	return clubs, nil
}

// LastRunWeekStart возвращает неделю последнего успешного запуска
func (s *Store) LastRunWeekStart(ctx context.Context) (time.Time, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "weekStart", Value: -1}})

	var run runDocument
	err := s.runs.FindOne(ctx, bson.M{}, opts).Decode(&run)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errors.Wrap(err, "failed to get last reset run")
	}
	return run.WeekStart, true, nil
}

// RecordRun сохраняет запуск; повторная запись той же недели не меняет документ
func (s *Store) RecordRun(ctx context.Context, run models.ResetRun) error {
	doc := runDocument{
		ID:             run.ID.String(),
		WeekStart:      run.WeekStart,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		ClubsProcessed: run.ClubsProcessed,
		BadgesAwarded:  run.BadgesAwarded,
		AffectedUsers:  run.AffectedUsers,
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.runs.UpdateOne(ctx, bson.M{"weekStart": run.WeekStart}, bson.M{"$setOnInsert": doc}, opts)
	if err != nil {
		return errors.Wrap(err, "failed to record reset run")
	}
	return nil
}

func (s *Store) observe(operation string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncDBQuery(operation)
	s.metrics.ObserveDBQueryDuration(operation, time.Since(start))
}

// idValue возвращает ObjectID для hex-идентификаторов, иначе строку как есть
func idValue(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// idValues значения для поиска в массивах, где идентификатор мог сохраниться строкой или ObjectID
func idValues(id string) bson.A {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.A{id, oid}
	}
	return bson.A{id}
}

func clubMembersFilter(clubID string) bson.M {
	return bson.M{"joinedClubs": bson.M{"$in": idValues(clubID)}}
}

func badgeAppendFilter(userID string, badge models.RankBadge) bson.M {
	return bson.M{
		"_id": idValue(userID),
		"clubWeeklyBadges": bson.M{
			"$not": bson.M{
				"$elemMatch": bson.M{
					"clubId":    badge.ClubID,
					"weekStart": badge.WeekStart,
				},
			},
		},
	}
}
