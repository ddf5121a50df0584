package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/leveling"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/service"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/storage/memory"
)

type MockResetTrigger struct {
	mock.Mock
}

func (m *MockResetTrigger) TriggerNow(ctx context.Context, force bool) (models.ResetResult, error) {
	args := m.Called(ctx, force)
	return args.Get(0).(models.ResetResult), args.Error(1)
}

func TestResetHandler_TriggerWeeklyReset(t *testing.T) {
	runID := uuid.New()
	tests := []struct {
		name           string
		query          string
		force          bool
		result         models.ResetResult
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success",
			query:          "",
			result:         models.ResetResult{Success: true, RunID: runID, BadgesAwarded: 3, AffectedUsers: 10},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "forced run",
			query:          "?force=true",
			force:          true,
			result:         models.ResetResult{Success: true, RunID: runID},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "failure result",
			query:          "",
			result:         models.ResetResult{Success: false, RunID: runID, Error: "failed to reset weekly XP: timeout"},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "already done",
			query:          "?force=false",
			err:            service.ErrResetAlreadyDone,
			expectedStatus: http.StatusConflict,
			expectedError:  models.ErrorCodeConflict,
		},
		{
			name:           "lock held",
			err:            service.ErrResetInProgress,
			expectedStatus: http.StatusConflict,
			expectedError:  models.ErrorCodeConflict,
		},
		{
			name:           "lock backend down",
			err:            errors.New("redis: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  models.ErrorCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := new(MockResetTrigger)
			trigger.On("TriggerNow", mock.Anything, tt.force).Return(tt.result, tt.err)
			handler := NewResetHandler(trigger, zap.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/internal/weekly-reset"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.TriggerWeeklyReset(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.expectedError != "" {
				var resp models.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			} else {
				var resp models.ResetResult
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.result.Success, resp.Success)
				assert.Equal(t, runID, resp.RunID)
			}
			trigger.AssertExpectations(t)
		})
	}
}

func TestResetHandler_InvalidForce(t *testing.T) {
	trigger := new(MockResetTrigger)
	handler := NewResetHandler(trigger, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/internal/weekly-reset?force=maybe", nil)
	w := httptest.NewRecorder()
	handler.TriggerWeeklyReset(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	trigger.AssertNotCalled(t, "TriggerNow", mock.Anything, mock.Anything)
}

func newLevelRouter(store *memory.Store) http.Handler {
	handler := NewLevelHandler(service.NewLevelService(store, nil, zap.NewNop()), zap.NewNop())
	r := chi.NewRouter()
	r.Get("/internal/levels", handler.GetLevel)
	r.Get("/internal/users/{userID}/level", handler.GetUserLevel)
	return r
}

func TestLevelHandler_GetLevel(t *testing.T) {
	router := newLevelRouter(memory.NewStore())

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedLevel  int
	}{
		{"zero", "?xp=0", http.StatusOK, 1},
		{"just below threshold", "?xp=999", http.StatusOK, 1},
		{"threshold inclusive", "?xp=1000", http.StatusOK, 2},
		{"fractional", "?xp=2500.5", http.StatusOK, 3},
		{"missing", "", http.StatusBadRequest, 0},
		{"not a number", "?xp=lots", http.StatusBadRequest, 0},
		{"nan", "?xp=NaN", http.StatusBadRequest, 0},
		{"infinite", "?xp=Inf", http.StatusBadRequest, 0},
		{"negative", "?xp=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/internal/levels"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus == http.StatusOK {
				var progress leveling.Progress
				require.NoError(t, json.NewDecoder(w.Body).Decode(&progress))
				assert.Equal(t, tt.expectedLevel, progress.Level)
			}
		})
	}
}

func TestLevelHandler_GetUserLevel(t *testing.T) {
	store := memory.NewStore()
	weekStart := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	store.PutUser(models.User{
		ID:      "u1",
		Name:    "Asha",
		TotalXP: 13250,
		ClubWeeklyBadges: []models.RankBadge{
			{ClubID: "chess", ClubName: "Chess Club", Rank: 1, WeekStart: weekStart, EarnedAt: weekStart},
		},
	})
	router := newLevelRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/internal/users/u1/level", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var level service.UserLevel
	require.NoError(t, json.NewDecoder(w.Body).Decode(&level))
	assert.Equal(t, "u1", level.UserID)
	assert.Equal(t, 6, level.Progress.Level)
	require.Len(t, level.Badges, 1)
	assert.Equal(t, "Chess Club", level.Badges[0].ClubName)
}

func TestLevelHandler_GetUserLevel_NotFound(t *testing.T) {
	router := newLevelRouter(memory.NewStore())

	req := httptest.NewRequest(http.MethodGet, "/internal/users/ghost/level", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, models.ErrorCodeNotFound, resp.Error)
}
