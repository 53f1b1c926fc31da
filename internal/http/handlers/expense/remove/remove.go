// Package remove реализует удаление расхода плательщиком.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/http/request"
	"github.com/magabrotheeeer/splitex/internal/http/response"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Delete(ctx context.Context, expenseID, actorID uuid.UUID) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить расход
// @Tags Expenses
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID расхода"
// @Success 200 {object} response.MessageResponse
// @Failure 403 {object} response.ErrorResponse "Пользователь не плательщик"
// @Failure 404 {object} response.ErrorResponse "Расход не найден"
// @Router /expenses/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actorID, err := request.Actor(r)
	if err != nil {
		response.RenderError(w, r, err)
		return
	}
	expenseID, err := request.ExpenseID(r)
	if err != nil {
		response.RenderError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), expenseID, actorID); err != nil {
		log.Error("failed to delete expense", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("expense deleted", slog.String("id", expenseID.String()))
	response.Render(w, r, http.StatusOK, response.Message("Expense deleted successfully"))
}
