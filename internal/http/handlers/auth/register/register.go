// Package register реализует HTTP-обработчик регистрации пользователя.
//
// При успешной регистрации возвращается JWT, пользователь сразу считается вошедшим.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/splitex/internal/http/middlewarectx"
	"github.com/magabrotheeeer/splitex/internal/http/request"
	"github.com/magabrotheeeer/splitex/internal/http/response"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
	"github.com/magabrotheeeer/splitex/internal/lib/validate"
)

// Request — данные для регистрации.
type Request struct {
	Username string `json:"username" validate:"required" example:"Alice"`
	Email    string `json:"email" validate:"required" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"Secret1"`
}

// TokenResponse содержит токен доступа.
type TokenResponse struct {
	Token string `json:"token"`
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, username, email, password, ip string) (string, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает пользователя и возвращает JWT. Username хранится в нижнем регистре.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} response.ErrorResponse "Пустые поля, занятый email или username, слабый пароль"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.Decode(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Render(w, r, http.StatusBadRequest,
			response.Error("Username, email, and password are mandatory."))
		return
	}

	token, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password,
		middlewarectx.ClientIP(r))
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("user registered", slog.String("username", req.Username))
	response.Render(w, r, http.StatusOK, TokenResponse{Token: token})
}
