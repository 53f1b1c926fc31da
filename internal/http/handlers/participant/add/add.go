// Package add реализует добавление участника в расход.
//
// Добавлять может плательщик или любой участник. При равном делении доли
// всех участников пересчитываются.
package add

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/http/request"
	"github.com/magabrotheeeer/splitex/internal/http/response"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
	"github.com/magabrotheeeer/splitex/internal/lib/validate"
	"github.com/magabrotheeeer/splitex/internal/models"
)

// Request — добавляемый участник. amount учитывается только при неравном делении.
type Request struct {
	Username string  `json:"username" validate:"required" example:"bob"`
	Amount   *int64  `json:"amount" example:"30"`
	Item     *string `json:"item" validate:"omitempty,max=100" example:"tickets"`
}

// Response — ответ на успешное добавление.
type Response struct {
	Message       string `json:"message" example:"User bob added to expense"`
	ParticipantID string `json:"participant_id"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	AddParticipant(ctx context.Context, expenseID, actorID uuid.UUID, username string, amount *int64, item *string) (models.Participant, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить участника
// @Tags Participants
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID расхода"
// @Param request body Request true "Участник"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Нет username или пользователь уже участник"
// @Failure 403 {object} response.ErrorResponse "Нет прав на добавление"
// @Failure 404 {object} response.ErrorResponse "Расход или пользователь не найден"
// @Router /participants/{id}/add [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.participant.add"
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

	expenseID, err := request.ExpenseID(r)
	if err != nil {
		response.RenderError(w, r, err)
		return
	}

	p, err := h.service.AddParticipant(r.Context(), expenseID, actorID, req.Username, req.Amount, req.Item)
	if err != nil {
		log.Info("failed to add participant", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("participant added", slog.String("expense_id", expenseID.String()),
		slog.String("username", p.Username), slog.Int64("amount", p.Amount))
	response.Render(w, r, http.StatusCreated, Response{
		Message:       "User " + req.Username + " added to expense",
		ParticipantID: p.ID.String(),
	})
}
