// Package list отдаёт все расходы, в которых участвует текущий пользователь.
package list

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
	List(ctx context.Context, actorID uuid.UUID) ([]*models.Expense, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список расходов
// @Description Возвращает расходы, в которых участвует текущий пользователь.
// @Tags Expenses
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} dto.Expense
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /expenses/ [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actorID, err := request.Actor(r)
	if err != nil {
		response.RenderError(w, r, err)
		return
	}

	expenses, err := h.service.List(r.Context(), actorID)
	if err != nil {
		log.Error("failed to list expenses", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Debug("expenses listed", slog.Int("count", len(expenses)))
	response.Render(w, r, http.StatusOK, dto.NewExpenses(expenses))
}
