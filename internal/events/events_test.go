package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/splitex/internal/metrics"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAMQPPublisher_Publish(t *testing.T) {
	expenseID, actorID := uuid.New(), uuid.New()

	var published Event
	ch := new(mockChannel)
	ch.On("Publish", "splitex.events", "participant.added", false, false, mock.Anything).
		Run(func(args mock.Arguments) {
			msg := args.Get(4).(amqp.Publishing)
			require.NoError(t, json.Unmarshal(msg.Body, &published))
		}).
		Return(nil).Once()

	before := testutil.ToFloat64(metrics.Events.WithLabelValues("participant.added", "ok"))

	p := NewAMQPPublisher(ch, "splitex.events", newNoopLogger())
	p.Publish(context.Background(), Event{
		Type:      ParticipantAdded,
		ExpenseID: expenseID,
		ActorID:   actorID,
		Username:  "bob",
	})

	ch.AssertExpectations(t)
	assert.Equal(t, ParticipantAdded, published.Type)
	assert.Equal(t, expenseID, published.ExpenseID)
	assert.Equal(t, actorID, published.ActorID)
	assert.Equal(t, "bob", published.Username)
	assert.False(t, published.OccurredAt.IsZero())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Events.WithLabelValues("participant.added", "ok")))
}

func TestAMQPPublisher_PublishErrorIsSwallowed(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection closed")).Once()

	before := testutil.ToFloat64(metrics.Events.WithLabelValues("expense.deleted", "error"))

	p := NewAMQPPublisher(ch, "splitex.events", newNoopLogger())
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Event{Type: ExpenseDeleted, ExpenseID: uuid.New()})
	})

	ch.AssertExpectations(t)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Events.WithLabelValues("expense.deleted", "error")))
}
