package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/models"
)

const expenseSelect = `SELECT e.id, e.title, e.date, e.split_method, e.total_amount,
			      e.payer_id, u.username, e.created_at, e.updated_at
			  FROM expenses e
			  LEFT JOIN users u ON u.id = e.payer_id`

const participantSelect = `SELECT ep.id, ep.expense_id, ep.user_id, u.username, u.name,
			      ep.amount, ep.item, ep.created_at
			  FROM expense_participants ep
			  JOIN users u ON u.id = ep.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (models.Expense, error) {
	var (
		e             models.Expense
		method        string
		payerID       uuid.NullUUID
		payerUsername sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Date, &method, &e.TotalAmount,
		&payerID, &payerUsername, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.Expense{}, err
	}
	e.SplitMethod = models.SplitMethod(method)
	if payerID.Valid {
		id := payerID.UUID
		e.PayerID = &id
	}
	if payerUsername.Valid {
		name := payerUsername.String
		e.PayerUsername = &name
	}
	return e, nil
}

func scanParticipant(row rowScanner) (models.Participant, error) {
	var (
		p    models.Participant
		item sql.NullString
	)
	if err := row.Scan(&p.ID, &p.ExpenseID, &p.UserID, &p.Username, &p.Name,
		&p.Amount, &item, &p.CreatedAt); err != nil {
		return models.Participant{}, err
	}
	if item.Valid {
		s := item.String
		p.Item = &s
	}
	return p, nil
}

// Expense загружает расход вместе со строками распределения.
func (q *Queries) Expense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	const op = "storage.Expense"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	base, err := scanExpense(q.db.QueryRowContext(ctx, expenseSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.NotFound("Expense not found"))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := q.db.QueryContext(ctx,
		participantSelect+` WHERE ep.expense_id = $1 ORDER BY ep.created_at, ep.id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.RestoreExpense(base, participants), nil
}

// ExpensesByParticipant возвращает все расходы, в которых участвует пользователь.
func (q *Queries) ExpensesByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.Expense, error) {
	const op = "storage.ExpensesByParticipant"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := expenseSelect + `
			  WHERE EXISTS (
			      SELECT 1 FROM expense_participants mine
			      WHERE mine.expense_id = e.id AND mine.user_id = $1)
			  ORDER BY e.created_at, e.id`
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var bases []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bases = append(bases, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = participantSelect + `
			  JOIN expense_participants mine
			      ON mine.expense_id = ep.expense_id AND mine.user_id = $1
			  ORDER BY ep.created_at, ep.id`
	rows, err = q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	byExpense := make(map[uuid.UUID][]models.Participant, len(bases))
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		byExpense[p.ExpenseID] = append(byExpense[p.ExpenseID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*models.Expense, 0, len(bases))
	for _, base := range bases {
		result = append(result, models.RestoreExpense(base, byExpense[base.ID]))
	}
	return result, nil
}

// CreateExpense сохраняет расход и все его строки распределения.
func (q *Queries) CreateExpense(ctx context.Context, e *models.Expense) error {
	const op = "storage.CreateExpense"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO expenses (id, title, date, split_method, total_amount, payer_id,
			      created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := q.db.ExecContext(ctx, query, e.ID, e.Title, e.Date, string(e.SplitMethod),
		e.TotalAmount, e.PayerID, e.CreatedAt, e.UpdatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range e.Participants() {
		if err := q.CreateParticipant(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// UpdateExpense перезаписывает поля расхода. Строки распределения не трогает.
func (q *Queries) UpdateExpense(ctx context.Context, e *models.Expense) error {
	const op = "storage.UpdateExpense"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE expenses
			  SET title = $1, date = $2, split_method = $3, total_amount = $4, updated_at = $5
			  WHERE id = $6`
	res, err := q.db.ExecContext(ctx, query, e.Title, e.Date, string(e.SplitMethod),
		e.TotalAmount, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkAffected(res, models.NotFound("Expense not found")); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteExpense удаляет расход, строки распределения удаляются каскадно.
func (q *Queries) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteExpense"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkAffected(res, models.NotFound("Expense not found")); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
