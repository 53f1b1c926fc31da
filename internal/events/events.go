// Package events публикует доменные события расходов в RabbitMQ.
// Публикация выполняется после фиксации транзакции, её ошибки только
// логируются и не влияют на ответ клиенту.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/splitex/internal/lib/sl"
	"github.com/magabrotheeeer/splitex/internal/metrics"
)

// Type — тип события, он же routing key.
type Type string

const (
	ExpenseCreated     Type = "expense.created"
	ExpenseUpdated     Type = "expense.updated"
	ExpenseDeleted     Type = "expense.deleted"
	ParticipantAdded   Type = "participant.added"
	ParticipantUpdated Type = "participant.updated"
	ParticipantRemoved Type = "participant.removed"
)

// Event — тело сообщения.
type Event struct {
	Type       Type      `json:"type"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Username   string    `json:"username,omitempty"`
	Amount     *int64    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AMQPPublisher публикует события в topic-exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       rabbitmq.Channel
	exchange string
	log      *slog.Logger
}

func NewAMQPPublisher(ch rabbitmq.Channel, exchange string, log *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange, log: log}
}

// Publish отправляет событие. Ошибка брокера записывается в лог.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) {
	const op = "events.Publish"
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	p.mu.Lock()
	err := rabbitmq.PublishMessage(p.ch, p.exchange, string(e.Type), e)
	p.mu.Unlock()

	if err != nil {
		metrics.Events.WithLabelValues(string(e.Type), "error").Inc()
		p.log.WarnContext(ctx, "failed to publish event",
			slog.String("op", op),
			slog.String("type", string(e.Type)),
			slog.String("expense_id", e.ExpenseID.String()),
			sl.Err(err))
		return
	}
	metrics.Events.WithLabelValues(string(e.Type), "ok").Inc()
}

// Noop отбрасывает события, используется без брокера.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
