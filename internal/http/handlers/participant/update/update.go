// Package update реализует изменение суммы и пометки участника плательщиком.
// Доли остальных участников не меняются.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/http/request"
	"github.com/magabrotheeeer/splitex/internal/http/response"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
	"github.com/magabrotheeeer/splitex/internal/lib/validate"
	"github.com/magabrotheeeer/splitex/internal/models"
)

// Request — изменяемые поля строки распределения.
type Request struct {
	Amount *int64                 `json:"amount" example:"25"`
	Item   request.OptionalString `json:"item" validate:"omitempty,max=100" swaggertype:"string" example:"dinner"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	UpdateParticipant(ctx context.Context, expenseID, actorID uuid.UUID, username string, f models.ParticipantFields) error
}

func New(log *slog.Logger, service Service) *Handler {
	v := validate.New()
	v.RegisterCustomTypeFunc(request.OptionalStringValue, request.OptionalString{})
	return &Handler{
		log:      log,
		service:  service,
		validate: v,
	}
}

// ServeHTTP godoc
// @Summary Изменить участника
// @Tags Participants
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID расхода"
// @Param username path string true "Username участника"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.MessageResponse
// @Failure 403 {object} response.ErrorResponse "Пользователь не плательщик"
// @Failure 404 {object} response.ErrorResponse "Расход, пользователь или участие не найдены"
// @Router /participants/{id}/update/{username} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.participant.update"
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
	username := chi.URLParam(r, "username")

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

	// явный "item": null снимает пометку
	fields := models.ParticipantFields{
		Amount:  req.Amount,
		Item:    req.Item.Value,
		SetItem: req.Item.Set,
	}
	if err := h.service.UpdateParticipant(r.Context(), expenseID, actorID, username, fields); err != nil {
		log.Info("failed to update participant", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	response.Render(w, r, http.StatusOK, response.Message("Participant %s updated successfully", username))
}
