// Package profile отдаёт профиль текущего пользователя.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

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
	Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /auth/u [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := request.Actor(r)
	if err != nil {
		response.RenderError(w, r, err)
		return
	}

	p, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	response.Render(w, r, http.StatusOK, p)
}
