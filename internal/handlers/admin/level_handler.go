package admin

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/leveling"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/service"
)

// LevelProvider расчет уровня по опыту и по пользователю
type LevelProvider interface {
	Calculate(query models.LevelQuery) (leveling.Progress, error)
	GetUserLevel(ctx context.Context, userID string) (*service.UserLevel, error)
}

// LevelHandler обрабатывает запросы расчета уровня
type LevelHandler struct {
	levels LevelProvider
	logger *zap.Logger
}

// NewLevelHandler создает новый обработчик уровней
func NewLevelHandler(levels LevelProvider, logger *zap.Logger) *LevelHandler {
	return &LevelHandler{
		levels: levels,
		logger: logger,
	}
}

// GetLevel обрабатывает GET /internal/levels?xp=<number>
func (h *LevelHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("xp")
	if raw == "" {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, models.ErrorCodeValidation,
			"Query parameter xp is required", nil)
		return
	}

	xp, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(xp) || math.IsInf(xp, 0) {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, models.ErrorCodeValidation,
			"Query parameter xp must be a finite number", map[string]interface{}{"xp": raw})
		return
	}

	progress, err := h.levels.Calculate(models.LevelQuery{XP: xp})
	if err != nil {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, models.ErrorCodeValidation,
			"Invalid xp value", map[string]interface{}{"xp": raw, "reason": err.Error()})
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, progress)
}

// GetUserLevel обрабатывает GET /internal/users/{userID}/level
func (h *LevelHandler) GetUserLevel(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, models.ErrorCodeBadRequest,
			"User ID is required", nil)
		return
	}

	level, err := h.levels.GetUserLevel(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeErrorResponse(w, h.logger, http.StatusNotFound, models.ErrorCodeNotFound,
				"User not found", map[string]interface{}{"user_id": userID})
			return
		}
		h.logger.Error("Failed to get user level",
			zap.String("user_id", userID),
			zap.String("request_id", getRequestID(r)),
			zap.Error(err))
		writeErrorResponse(w, h.logger, http.StatusInternalServerError, models.ErrorCodeInternalError,
			"Failed to get user level", nil)
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, level)
}
