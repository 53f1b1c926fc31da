// Package create реализует HTTP-обработчик создания расхода.
//
// Текущий пользователь становится плательщиком и единственным участником
// расхода с долей, равной всей сумме.
package create

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
	expenseservice "github.com/magabrotheeeer/splitex/internal/services/expense"
)

// Request — данные нового расхода. split_method по умолчанию equal,
// date по умолчанию сегодня.
type Request struct {
	Title       string  `json:"title" validate:"required,max=100" example:"Trip"`
	TotalAmount *int64  `json:"total_amount" validate:"required" example:"90"`
	SplitMethod string  `json:"split_method" example:"equal"`
	Date        *string `json:"date" example:"2024-05-01"`
	Item        *string `json:"item" validate:"omitempty,max=100" example:"hotel"`
}

// Response — ответ на успешное создание.
type Response struct {
	Message   string `json:"message" example:"Expense created successfully"`
	ExpenseID string `json:"expense_id"`
}

// Handler управляет HTTP-запросами на создание расходов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис расходов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания расхода.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, p expenseservice.CreateParams) (uuid.UUID, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать расход
// @Description Создает расход, плательщиком которого становится текущий пользователь.
// @Tags Expenses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные расхода"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Не заполнено обязательное поле"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /expenses/ [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actorID, err := request.Actor(r)
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

	params := expenseservice.CreateParams{
		Title:       req.Title,
		TotalAmount: *req.TotalAmount,
		SplitMethod: req.SplitMethod,
		Item:        req.Item,
	}
	if req.Date != nil {
		date, err := dto.ParseDate(*req.Date)
		if err != nil {
			response.RenderError(w, r, err)
			return
		}
		params.Date = &date
	}

	id, err := h.service.Create(r.Context(), actorID, params)
	if err != nil {
		log.Error("failed to create expense", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("expense created", slog.String("id", id.String()))
	response.Render(w, r, http.StatusCreated, Response{
		Message:   "Expense created successfully",
		ExpenseID: id.String(),
	})
}
