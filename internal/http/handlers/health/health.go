// Package health отвечает на HTTP-проверки живости и проверяет доступность базы.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/splitex/internal/lib/sl"
)

// Pinger — то, что умеет проверить соединение, например *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StatusResponse — тело ответа проверки.
type StatusResponse struct {
	Status string `json:"status"`
}

type Handler struct {
	log *slog.Logger
	db  Pinger
}

func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Error("database is unreachable", slog.String("op", op), sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, StatusResponse{Status: "unavailable"})
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, StatusResponse{Status: "ok"})
}
