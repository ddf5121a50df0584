package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/service"
)

// ResetTrigger запускает недельный сброс вне расписания
type ResetTrigger interface {
	TriggerNow(ctx context.Context, force bool) (models.ResetResult, error)
}

// ResetHandler обрабатывает POST /internal/weekly-reset
type ResetHandler struct {
	trigger ResetTrigger
	logger  *zap.Logger
}

// NewResetHandler создает новый обработчик ручного сброса
func NewResetHandler(trigger ResetTrigger, logger *zap.Logger) *ResetHandler {
	return &ResetHandler{
		trigger: trigger,
		logger:  logger,
	}
}

// TriggerWeeklyReset запускает сброс; ?force=true игнорирует маркер текущей недели
func (h *ResetHandler) TriggerWeeklyReset(w http.ResponseWriter, r *http.Request) {
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeErrorResponse(w, h.logger, http.StatusBadRequest, models.ErrorCodeValidation,
				"Invalid force parameter", map[string]interface{}{"force": raw})
			return
		}
		force = parsed
	}

	requestLogger := h.logger.With(
		zap.Bool("force", force),
		zap.String("request_id", getRequestID(r)))

	result, err := h.trigger.TriggerNow(r.Context(), force)
	switch {
	case errors.Is(err, service.ErrResetAlreadyDone):
		writeErrorResponse(w, h.logger, http.StatusConflict, models.ErrorCodeConflict,
			"Weekly reset already performed for this week", nil)
		return
	case errors.Is(err, service.ErrResetInProgress):
		writeErrorResponse(w, h.logger, http.StatusConflict, models.ErrorCodeConflict,
			"Weekly reset is already running", nil)
		return
	case err != nil:
		requestLogger.Error("Failed to start weekly reset", zap.Error(err))
		writeErrorResponse(w, h.logger, http.StatusInternalServerError, models.ErrorCodeInternalError,
			"Failed to start weekly reset", nil)
		return
	}

	if !result.Success {
		requestLogger.Error("Manual weekly reset failed",
			zap.String("run_id", result.RunID.String()),
			zap.String("error", result.Error))
		writeJSONResponse(w, h.logger, http.StatusInternalServerError, result)
		return
	}

	requestLogger.Info("Manual weekly reset completed",
		zap.String("run_id", result.RunID.String()),
		zap.Int("badges_awarded", result.BadgesAwarded),
		zap.Int64("affected_users", result.AffectedUsers))
	writeJSONResponse(w, h.logger, http.StatusOK, result)
}
