// Package update реализует частичное изменение расхода плательщиком.
//
// Меняются только переданные поля. Доли участников не пересчитываются,
// даже если изменились сумма или способ деления.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/http/dto"
	"github.com/magabrotheeeer/splitex/internal/http/request"
	"github.com/magabrotheeeer/splitex/internal/http/response"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
	"github.com/magabrotheeeer/splitex/internal/lib/validate"
	"github.com/magabrotheeeer/splitex/internal/models"
)

// Request — изменяемые поля расхода. Отсутствующее поле не меняется.
type Request struct {
	Title       *string `json:"title" validate:"omitempty,max=100" example:"Road trip"`
	Date        *string `json:"date" example:"2024-05-02"`
	TotalAmount *int64  `json:"total_amount" example:"120"`
	SplitMethod *string `json:"split_method" example:"unequal"`
}

// Handler управляет HTTP-запросами на изменение расхода.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики изменения расхода.
type Service interface {
	Update(ctx context.Context, expenseID, actorID uuid.UUID, f models.ExpenseFields) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить расход
// @Description Частично обновляет расход. Доступно только плательщику.
// @Tags Expenses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID расхода"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 403 {object} response.ErrorResponse "Пользователь не плательщик"
// @Failure 404 {object} response.ErrorResponse "Расход не найден"
// @Router /expenses/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.update"
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

	var req Request
	if err := request.Decode(r, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Render(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.Render(w, r, http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	fields := models.ExpenseFields{
		Title:       req.Title,
		TotalAmount: req.TotalAmount,
	}
	if req.Date != nil {
		date, err := dto.ParseDate(*req.Date)
		if err != nil {
			response.RenderError(w, r, err)
			return
		}
		fields.Date = &date
	}
	if req.SplitMethod != nil {
		method := models.ParseSplitMethod(*req.SplitMethod)
		fields.SplitMethod = &method
	}

	if err := h.service.Update(r.Context(), expenseID, actorID, fields); err != nil {
		log.Error("failed to update expense", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("expense updated", slog.String("id", expenseID.String()))
	response.Render(w, r, http.StatusOK, response.Message("Expense updated successfully"))
}
