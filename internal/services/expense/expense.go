// Package services реализует операции над расходами и их участниками.
// Каждая операция выполняется в одной транзакции, события публикуются
// только после фиксации.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/events"
	"github.com/magabrotheeeer/splitex/internal/metrics"
	"github.com/magabrotheeeer/splitex/internal/models"
)

// Repository описывает запросы к хранилищу внутри транзакции.
type Repository interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	Expense(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ExpensesByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.Expense, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	UpdateExpense(ctx context.Context, e *models.Expense) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	CreateParticipant(ctx context.Context, p models.Participant) error
	UpdateParticipant(ctx context.Context, p models.Participant) error
	DeleteParticipant(ctx context.Context, id uuid.UUID) error
	SetShares(ctx context.Context, expenseID uuid.UUID, amount int64) error
}

// Store выполняет fn в транзакции и фиксирует её, если fn не вернула ошибку.
type Store interface {
	Atomic(ctx context.Context, fn func(Repository) error) error
}

// Publisher отправляет доменные события. Ошибки публикации не влияют на запрос.
type Publisher interface {
	Publish(ctx context.Context, e events.Event)
}

// CreateParams — поля нового расхода.
type CreateParams struct {
	Title       string
	TotalAmount int64
	SplitMethod string
	Date        *time.Time
	Item        *string
}

// ExpenseService управляет расходами.
type ExpenseService struct {
	store  Store
	events Publisher
	log    *slog.Logger
	now    func() time.Time
}

// NewExpenseService создает новый экземпляр ExpenseService.
func NewExpenseService(store Store, publisher Publisher, log *slog.Logger) *ExpenseService {
	return &ExpenseService{
		store:  store,
		events: publisher,
		log:    log,
		now:    time.Now,
	}
}

// Create создаёт расход, плательщиком и единственным участником которого
// становится actor.
func (s *ExpenseService) Create(ctx context.Context, actorID uuid.UUID, p CreateParams) (uuid.UUID, error) {
	const op = "services.expense.Create"

	date := s.today()
	if p.Date != nil {
		date = *p.Date
	}

	var created *models.Expense
	err := s.store.Atomic(ctx, func(repo Repository) error {
		payer, err := repo.UserByID(ctx, actorID)
		if err != nil {
			return err
		}
		created = models.NewExpense(*payer, p.Title, p.TotalAmount,
			models.ParseSplitMethod(p.SplitMethod), date, p.Item)
		return repo.CreateExpense(ctx, created)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("expense created", slog.String("op", op), slog.String("expense_id", created.ID.String()))
	s.publish(ctx, events.ExpenseCreated, created.ID, actorID, "", &created.TotalAmount)
	return created.ID, nil
}

// List возвращает расходы, в которых участвует actor.
func (s *ExpenseService) List(ctx context.Context, actorID uuid.UUID) ([]*models.Expense, error) {
	const op = "services.expense.List"

	var list []*models.Expense
	err := s.store.Atomic(ctx, func(repo Repository) error {
		if _, err := repo.UserByID(ctx, actorID); err != nil {
			return err
		}
		var err error
		list, err = repo.ExpensesByParticipant(ctx, actorID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Get возвращает расход, если actor в нём участвует.
func (s *ExpenseService) Get(ctx context.Context, expenseID, actorID uuid.UUID) (*models.Expense, error) {
	const op = "services.expense.Get"

	var e *models.Expense
	err := s.store.Atomic(ctx, func(repo Repository) error {
		var err error
		e, err = repo.Expense(ctx, expenseID)
		if err != nil {
			return err
		}
		if !e.CanView(actorID) {
			return models.Forbidden("You do not have permission to view this expense")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// Update частично перезаписывает поля расхода. Доли участников не меняются.
func (s *ExpenseService) Update(ctx context.Context, expenseID, actorID uuid.UUID, f models.ExpenseFields) error {
	const op = "services.expense.Update"

	err := s.store.Atomic(ctx, func(repo Repository) error {
		e, err := repo.Expense(ctx, expenseID)
		if err != nil {
			return err
		}
		if !e.CanEdit(actorID) {
			return models.Forbidden("Only the payer can update this expense")
		}
		e.Update(f)
		return repo.UpdateExpense(ctx, e)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.ExpenseUpdated, expenseID, actorID, "", f.TotalAmount)
	return nil
}

// Delete удаляет расход вместе со всеми строками распределения.
func (s *ExpenseService) Delete(ctx context.Context, expenseID, actorID uuid.UUID) error {
	const op = "services.expense.Delete"

	err := s.store.Atomic(ctx, func(repo Repository) error {
		e, err := repo.Expense(ctx, expenseID)
		if err != nil {
			return err
		}
		if !e.CanEdit(actorID) {
			return models.Forbidden("Only the payer can delete this expense")
		}
		return repo.DeleteExpense(ctx, expenseID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("expense deleted", slog.String("op", op), slog.String("expense_id", expenseID.String()))
	s.publish(ctx, events.ExpenseDeleted, expenseID, actorID, "", nil)
	return nil
}

// AddParticipant добавляет пользователя username в расход. При равном делении
// доли всех участников пересчитываются в той же транзакции.
func (s *ExpenseService) AddParticipant(ctx context.Context, expenseID, actorID uuid.UUID, username string, amount *int64, item *string) (models.Participant, error) {
	const op = "services.expense.AddParticipant"

	var (
		added      models.Participant
		recomputed bool
	)
	err := s.store.Atomic(ctx, func(repo Repository) error {
		e, err := repo.Expense(ctx, expenseID)
		if err != nil {
			return err
		}
		if !e.CanAddParticipants(actorID) {
			return models.Forbidden("You do not have permission to add participants to this expense")
		}
		user, err := s.lookupUser(ctx, repo, username)
		if err != nil {
			return err
		}
		added, err = e.AddParticipant(*user, amount, item)
		if err != nil {
			return err
		}
		if err := repo.CreateParticipant(ctx, added); err != nil {
			return err
		}
		if e.SplitMethod != models.SplitEqual {
			return nil
		}
		recomputed = true
		return repo.SetShares(ctx, e.ID, added.Amount)
	})
	if err != nil {
		return models.Participant{}, fmt.Errorf("%s: %w", op, err)
	}

	if recomputed {
		metrics.SplitRecalculations.WithLabelValues("add").Inc()
	}
	s.log.Info("participant added", slog.String("op", op),
		slog.String("expense_id", expenseID.String()), slog.String("username", added.Username))
	s.publish(ctx, events.ParticipantAdded, expenseID, actorID, added.Username, &added.Amount)
	return added, nil
}

// UpdateParticipant перезаписывает сумму и/или пометку участника.
// Остальные строки не пересчитываются.
func (s *ExpenseService) UpdateParticipant(ctx context.Context, expenseID, actorID uuid.UUID, username string, f models.ParticipantFields) error {
	const op = "services.expense.UpdateParticipant"

	err := s.store.Atomic(ctx, func(repo Repository) error {
		e, err := repo.Expense(ctx, expenseID)
		if err != nil {
			return err
		}
		if !e.CanEdit(actorID) {
			return models.Forbidden("Only the payer can update participant details")
		}
		user, err := s.lookupUser(ctx, repo, username)
		if err != nil {
			return err
		}
		updated, err := e.UpdateParticipant(user.ID, f)
		if err != nil {
			return notParticipant(err, username)
		}
		return repo.UpdateParticipant(ctx, updated)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.ParticipantUpdated, expenseID, actorID, username, f.Amount)
	return nil
}

// RemoveParticipant удаляет участника. При равном делении доли оставшихся
// пересчитываются, если кто-то остался.
func (s *ExpenseService) RemoveParticipant(ctx context.Context, expenseID, actorID uuid.UUID, username string) error {
	const op = "services.expense.RemoveParticipant"

	var recomputed bool
	err := s.store.Atomic(ctx, func(repo Repository) error {
		e, err := repo.Expense(ctx, expenseID)
		if err != nil {
			return err
		}
		if !e.CanEdit(actorID) {
			return models.Forbidden("Only the payer can remove participants")
		}
		user, err := s.lookupUser(ctx, repo, username)
		if err != nil {
			return err
		}
		removed, err := e.RemoveParticipant(user.ID)
		if err != nil {
			return notParticipant(err, username)
		}
		if err := repo.DeleteParticipant(ctx, removed.ID); err != nil {
			return err
		}
		rest := e.Participants()
		if e.SplitMethod != models.SplitEqual || len(rest) == 0 {
			return nil
		}
		recomputed = true
		return repo.SetShares(ctx, e.ID, rest[0].Amount)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if recomputed {
		metrics.SplitRecalculations.WithLabelValues("remove").Inc()
	}
	s.log.Info("participant removed", slog.String("op", op),
		slog.String("expense_id", expenseID.String()), slog.String("username", username))
	s.publish(ctx, events.ParticipantRemoved, expenseID, actorID, username, nil)
	return nil
}

// Participants возвращает расход со строками распределения для списка участников.
func (s *ExpenseService) Participants(ctx context.Context, expenseID, actorID uuid.UUID) (*models.Expense, error) {
	const op = "services.expense.Participants"

	e, err := s.Get(ctx, expenseID, actorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func (s *ExpenseService) lookupUser(ctx context.Context, repo Repository, username string) (*models.User, error) {
	user, err := repo.UserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NotFound("User %s not found", username)
	}
	return user, err
}

func notParticipant(err error, username string) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NotFound("User %s is not a participant in this expense", username)
	}
	return err
}

func (s *ExpenseService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *ExpenseService) publish(ctx context.Context, t events.Type, expenseID, actorID uuid.UUID, username string, amount *int64) {
	s.events.Publish(ctx, events.Event{
		Type:       t,
		ExpenseID:  expenseID,
		ActorID:    actorID,
		Username:   username,
		Amount:     amount,
		OccurredAt: s.now().UTC(),
	})
}
