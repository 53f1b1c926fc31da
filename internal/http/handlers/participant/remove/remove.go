// Package remove реализует удаление участника из расхода плательщиком.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
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
	RemoveParticipant(ctx context.Context, expenseID, actorID uuid.UUID, username string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить участника
// @Description При равном делении доли оставшихся участников пересчитываются.
// @Tags Participants
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID расхода"
// @Param username path string true "Username участника"
// @Success 200 {object} response.MessageResponse
// @Failure 403 {object} response.ErrorResponse "Пользователь не плательщик"
// @Failure 404 {object} response.ErrorResponse "Расход, пользователь или участие не найдены"
// @Router /participants/{id}/remove/{username} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.participant.remove"
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

	if err := h.service.RemoveParticipant(r.Context(), expenseID, actorID, username); err != nil {
		log.Info("failed to remove participant", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("participant removed", slog.String("expense_id", expenseID.String()),
		slog.String("username", username))
	response.Render(w, r, http.StatusOK, response.Message("Participant %s removed successfully", username))
}
