// Package read отдаёт расход с распределением долей. Доступно только участникам.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/http/dto"
	"github.com/magabrotheeeer/splitex/internal/http/request"
	"github.com/magabrotheeeer/splitex/internal/http/response"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
	"github.com/magabrotheeeer/splitex/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Get(ctx context.Context, expenseID, actorID uuid.UUID) (*models.Expense, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить расход
// @Tags Expenses
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID расхода"
// @Success 200 {object} dto.Expense
// @Failure 403 {object} response.ErrorResponse "Пользователь не участвует в расходе"
// @Failure 404 {object} response.ErrorResponse "Расход не найден"
// @Router /expenses/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.read"
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

	e, err := h.service.Get(r.Context(), expenseID, actorID)
	if err != nil {
		log.Info("failed to read expense", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	response.Render(w, r, http.StatusOK, dto.NewExpense(e))
}
