// Package dto описывает JSON-представления расходов и участников.
package dto

import (
	"time"

	"github.com/magabrotheeeer/splitex/internal/models"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Participant — строка распределения в составе расхода.
type Participant struct {
	Username string  `json:"username" example:"bob"`
	Amount   int64   `json:"amount" example:"45"`
	Item     *string `json:"item" example:"tickets"`
}

// Expense — расход со строками распределения.
type Expense struct {
	ID           string        `json:"id" example:"3f1c9a3e-8b7d-4a44-9d0e-2f4b1d6c7a10"`
	Title        string        `json:"title" example:"Trip"`
	Date         string        `json:"date" example:"2024-05-01"`
	SplitMethod  string        `json:"split_method" example:"equal"`
	TotalAmount  int64         `json:"total_amount" example:"90"`
	CreatedAt    string        `json:"created_at" example:"2024-05-01 12:30:00"`
	PaidBy       *string       `json:"paid_by" example:"alice"`
	Participants []Participant `json:"participants"`
}

// ParticipantDetail — элемент списка участников расхода.
type ParticipantDetail struct {
	Username string  `json:"username" example:"bob"`
	Name     string  `json:"name" example:"Bob"`
	Amount   int64   `json:"amount" example:"45"`
	Item     *string `json:"item"`
	IsPayer  bool    `json:"is_payer"`
}

func NewExpense(e *models.Expense) Expense {
	rows := e.Participants()
	participants := make([]Participant, 0, len(rows))
	for _, p := range rows {
		participants = append(participants, Participant{
			Username: p.Username,
			Amount:   p.Amount,
			Item:     p.Item,
		})
	}
	return Expense{
		ID:           e.ID.String(),
		Title:        e.Title,
		Date:         e.Date.Format(DateLayout),
		SplitMethod:  string(e.SplitMethod),
		TotalAmount:  e.TotalAmount,
		CreatedAt:    e.CreatedAt.UTC().Format(TimestampLayout),
		PaidBy:       e.PayerUsername,
		Participants: participants,
	}
}

// NewExpenses никогда не возвращает nil, чтобы пустой список кодировался как [].
func NewExpenses(list []*models.Expense) []Expense {
	out := make([]Expense, 0, len(list))
	for _, e := range list {
		out = append(out, NewExpense(e))
	}
	return out
}

func NewParticipantDetails(e *models.Expense) []ParticipantDetail {
	rows := e.Participants()
	out := make([]ParticipantDetail, 0, len(rows))
	for _, p := range rows {
		out = append(out, ParticipantDetail{
			Username: p.Username,
			Name:     p.Name,
			Amount:   p.Amount,
			Item:     p.Item,
			IsPayer:  e.IsPayer(p.UserID),
		})
	}
	return out
}

// ParseDate разбирает дату в формате YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, models.Validation("Field date must be a date in format YYYY-MM-DD")
	}
	return d, nil
}
