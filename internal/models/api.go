package models

// ErrorResponse представляет стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes
const (
	ErrorCodeValidation    = "validation_error"
	ErrorCodeBadRequest    = "bad_request"
	ErrorCodeInternalError = "internal_error"
	ErrorCodeNotFound      = "not_found"
	ErrorCodeConflict      = "conflict"
)
