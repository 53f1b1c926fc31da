package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/models"
)

// CreateParticipant вставляет строку распределения.
func (q *Queries) CreateParticipant(ctx context.Context, p models.Participant) error {
	const op = "storage.CreateParticipant"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO expense_participants (id, expense_id, user_id, amount, item, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := q.db.ExecContext(ctx, query,
		p.ID, p.ExpenseID, p.UserID, p.Amount, p.Item, p.CreatedAt); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%s: %w", op,
				models.Conflict("User %s is already a participant", p.Username))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateParticipant перезаписывает сумму и пометку строки распределения.
func (q *Queries) UpdateParticipant(ctx context.Context, p models.Participant) error {
	const op = "storage.UpdateParticipant"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := q.db.ExecContext(ctx,
		`UPDATE expense_participants SET amount = $1, item = $2 WHERE id = $3`,
		p.Amount, p.Item, p.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkAffected(res, models.NotFound("Participant not found")); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteParticipant удаляет строку распределения по ID.
func (q *Queries) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteParticipant"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := q.db.ExecContext(ctx, `DELETE FROM expense_participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkAffected(res, models.NotFound("Participant not found")); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetShares записывает одинаковую сумму во все строки расхода.
func (q *Queries) SetShares(ctx context.Context, expenseID uuid.UUID, amount int64) error {
	const op = "storage.SetShares"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := q.db.ExecContext(ctx,
		`UPDATE expense_participants SET amount = $1 WHERE expense_id = $2`,
		amount, expenseID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
