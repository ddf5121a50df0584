package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/database"
)

// HealthChecker зависимость, состояние которой отражается в /health и /ready
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NamedCheck проверка с именем для ответа
type NamedCheck struct {
	Name    string
	Checker HealthChecker
}

type HealthHandler struct {
	checks []NamedCheck
	db     *database.DB
}

// NewHealthHandler создает обработчик; db нужен только для статистики пула и может быть nil
func NewHealthHandler(db *database.DB, checks ...NamedCheck) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		db:     db,
	}
}

type HealthResponse struct {
	Status       string             `json:"status"`
	Services     map[string]string  `json:"services"`
	DatabasePool *DatabasePoolStats `json:"database_pool,omitempty"`
}

type DatabasePoolStats struct {
	TotalConns    int32 `json:"total_connections"`
	IdleConns     int32 `json:"idle_connections"`
	AcquiredConns int32 `json:"acquired_connections"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	response := HealthResponse{
		Status:   "ok",
		Services: make(map[string]string),
	}

	for _, check := range h.checks {
		if err := check.Checker.Health(ctx); err != nil {
			response.Status = "unhealthy"
			response.Services[check.Name] = "down: " + err.Error()
		} else {
			response.Services[check.Name] = "ok"
		}
	}

	if h.db != nil {
		stats := h.db.Stats()
		response.DatabasePool = &DatabasePoolStats{
			TotalConns:    stats.TotalConns(),
			IdleConns:     stats.IdleConns(),
			AcquiredConns: stats.AcquiredConns(),
		}
	}

	// Set appropriate status code
	statusCode := http.StatusOK
	if response.Status != "ok" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	for _, check := range h.checks {
		if err := check.Checker.Health(ctx); err != nil {
			http.Error(w, check.Name+" not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
