// Package response формирует JSON-ответы HTTP-обработчиков и переводит
// виды ошибок предметной области в HTTP-статусы.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/splitex/internal/models"
)

// ErrorResponse — тело любого ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error" example:"Expense not found"`
}

// MessageResponse — тело успешного ответа без данных.
type MessageResponse struct {
	Message string `json:"message" example:"Expense updated successfully"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// Message возвращает MessageResponse.
func Message(format string, args ...any) MessageResponse {
	return MessageResponse{Message: fmt.Sprintf(format, args...)}
}

// ValidationError формирует ErrorResponse по ошибкам валидатора.
// Нарушения перечисляются через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("Missing required field: %s", err.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("Field %s must be at most %s characters", err.Field(), err.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("Field %s must be a valid email", err.Field()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("Field %s must be a date in format YYYY-MM-DD", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("Field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(msgs, ", "))
}

// StatusCode возвращает HTTP-статус для ошибки по её виду.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RenderError пишет ошибку со статусом по её виду. Для непредвиденных
// ошибок отдаётся 500 с исходным текстом ошибки.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, StatusCode(err))
	render.JSON(w, r, Error(models.Message(err)))
}

// Render пишет v с указанным статусом.
func Render(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
