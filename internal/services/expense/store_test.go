package services_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/events"
	"github.com/magabrotheeeer/splitex/internal/models"
	services "github.com/magabrotheeeer/splitex/internal/services/expense"
)

// memRepo хранит состояние в памяти, Atomic работает с его копией.
type memRepo struct {
	users    map[uuid.UUID]models.User
	expenses map[uuid.UUID]models.Expense
	rows     map[uuid.UUID][]models.Participant

	failSetShares error
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:    make(map[uuid.UUID]models.User),
		expenses: make(map[uuid.UUID]models.Expense),
		rows:     make(map[uuid.UUID][]models.Participant),
	}
}

func (r *memRepo) clone() *memRepo {
	c := newMemRepo()
	for k, v := range r.users {
		c.users[k] = v
	}
	for k, v := range r.expenses {
		c.expenses[k] = v
	}
	for k, v := range r.rows {
		c.rows[k] = append([]models.Participant(nil), v...)
	}
	c.failSetShares = r.failSetShares
	return c
}

func (r *memRepo) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, models.NotFound("User not found")
	}
	return &u, nil
}

func (r *memRepo) UserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == strings.ToLower(username) {
			return &u, nil
		}
	}
	return nil, models.NotFound("User not found")
}

func (r *memRepo) Expense(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	base, ok := r.expenses[id]
	if !ok {
		return nil, models.NotFound("Expense not found")
	}
	return models.RestoreExpense(base, r.rows[id]), nil
}

func (r *memRepo) ExpensesByParticipant(_ context.Context, userID uuid.UUID) ([]*models.Expense, error) {
	var list []*models.Expense
	for id, rows := range r.rows {
		for _, p := range rows {
			if p.UserID == userID {
				list = append(list, models.RestoreExpense(r.expenses[id], rows))
				break
			}
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *memRepo) CreateExpense(_ context.Context, e *models.Expense) error {
	r.expenses[e.ID] = *e
	r.rows[e.ID] = e.Participants()
	return nil
}

func (r *memRepo) UpdateExpense(_ context.Context, e *models.Expense) error {
	if _, ok := r.expenses[e.ID]; !ok {
		return models.NotFound("Expense not found")
	}
	r.expenses[e.ID] = *e
	return nil
}

func (r *memRepo) DeleteExpense(_ context.Context, id uuid.UUID) error {
	if _, ok := r.expenses[id]; !ok {
		return models.NotFound("Expense not found")
	}
	delete(r.expenses, id)
	delete(r.rows, id)
	return nil
}

func (r *memRepo) CreateParticipant(_ context.Context, p models.Participant) error {
	for _, row := range r.rows[p.ExpenseID] {
		if row.UserID == p.UserID {
			return models.Conflict("User %s is already a participant", p.Username)
		}
	}
	r.rows[p.ExpenseID] = append(r.rows[p.ExpenseID], p)
	return nil
}

func (r *memRepo) UpdateParticipant(_ context.Context, p models.Participant) error {
	rows := r.rows[p.ExpenseID]
	for i := range rows {
		if rows[i].ID == p.ID {
			rows[i].Amount = p.Amount
			rows[i].Item = p.Item
			return nil
		}
	}
	return models.NotFound("Participant not found")
}

func (r *memRepo) DeleteParticipant(_ context.Context, id uuid.UUID) error {
	for expenseID, rows := range r.rows {
		for i := range rows {
			if rows[i].ID == id {
				r.rows[expenseID] = append(rows[:i:i], rows[i+1:]...)
				return nil
			}
		}
	}
	return models.NotFound("Participant not found")
}

func (r *memRepo) SetShares(_ context.Context, expenseID uuid.UUID, amount int64) error {
	if r.failSetShares != nil {
		return r.failSetShares
	}
	rows := r.rows[expenseID]
	for i := range rows {
		rows[i].Amount = amount
	}
	return nil
}

type memStore struct {
	mu    sync.Mutex
	state *memRepo
}

func (s *memStore) Atomic(_ context.Context, fn func(services.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.state.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx
	return nil
}

func (s *memStore) addUser(username string) models.User {
	u := models.User{
		ID:       uuid.New(),
		Email:    username + "@example.com",
		Username: strings.ToLower(username),
		Name:     username,
	}
	s.state.users[u.ID] = u
	return u
}

func (s *memStore) amounts(expenseID uuid.UUID) map[string]int64 {
	out := make(map[string]int64)
	for _, p := range s.state.rows[expenseID] {
		out[p.Username] = p.Amount
	}
	return out
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []events.Type {
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errBoom = errors.New("boom")
