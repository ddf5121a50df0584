// Package admin содержит обработчики служебного порта: ручной запуск сброса и расчет уровней.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/models"
)

// writeJSONResponse отправляет JSON ответ
func writeJSONResponse(w http.ResponseWriter, logger *zap.Logger, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse отправляет JSON ответ с ошибкой
func writeErrorResponse(w http.ResponseWriter, logger *zap.Logger, statusCode int, errorCode, message string, details map[string]interface{}) {
	errorResponse := models.ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	}

	writeJSONResponse(w, logger, statusCode, errorResponse)
}

// getRequestID извлекает request ID из middleware или заголовка
func getRequestID(r *http.Request) string {
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		return requestID
	}
	if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
		return requestID
	}
	return "unknown"
}
