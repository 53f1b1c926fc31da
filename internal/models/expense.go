package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/lib/split"
)

// SplitMethod определяет способ распределения суммы расхода.
type SplitMethod string

const (
	SplitEqual   SplitMethod = "equal"
	SplitUnequal SplitMethod = "unequal"
)

// ParseSplitMethod возвращает SplitUnequal только для строки "unequal",
// любое другое значение трактуется как равное деление.
func ParseSplitMethod(s string) SplitMethod {
	if strings.TrimSpace(s) == string(SplitUnequal) {
		return SplitUnequal
	}
	return SplitEqual
}

// Participant — строка распределения: доля одного пользователя в одном расходе.
type Participant struct {
	ID        uuid.UUID
	ExpenseID uuid.UUID
	UserID    uuid.UUID
	Username  string
	Name      string
	Amount    int64
	Item      *string
	CreatedAt time.Time
}

// Expense — агрегат расхода. Набор участников и их доли хранятся в одном срезе,
// поэтому у каждого участника ровно одна строка распределения. Срез изменяется
// только методами агрегата.
type Expense struct {
	ID            uuid.UUID
	Title         string
	Date          time.Time
	TotalAmount   int64
	SplitMethod   SplitMethod
	PayerID       *uuid.UUID
	PayerUsername *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	participants []Participant
}

// ExpenseFields — набор изменяемых полей расхода, nil означает «не менять».
type ExpenseFields struct {
	Title       *string
	Date        *time.Time
	TotalAmount *int64
	SplitMethod *SplitMethod
}

// ParticipantFields — изменяемые поля строки распределения. Пометка
// меняется только при SetItem, а SetItem с Item == nil снимает её.
type ParticipantFields struct {
	Amount  *int64
	Item    *string
	SetItem bool
}

// NewExpense создаёт расход, в котором плательщик является единственным
// участником и должен всю сумму.
func NewExpense(payer User, title string, total int64, method SplitMethod, date time.Time, item *string) *Expense {
	now := time.Now().UTC()
	e := &Expense{
		ID:            uuid.New(),
		Title:         title,
		Date:          date,
		TotalAmount:   total,
		SplitMethod:   method,
		PayerID:       &payer.ID,
		PayerUsername: &payer.Username,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	e.participants = []Participant{{
		ID:        uuid.New(),
		ExpenseID: e.ID,
		UserID:    payer.ID,
		Username:  payer.Username,
		Name:      payer.Name,
		Amount:    total,
		Item:      item,
		CreatedAt: now,
	}}
	return e
}

// RestoreExpense собирает агрегат из сохранённых данных.
func RestoreExpense(base Expense, rows []Participant) *Expense {
	e := base
	e.participants = append([]Participant(nil), rows...)
	return &e
}

// Participants возвращает копию строк распределения.
func (e *Expense) Participants() []Participant {
	return append([]Participant(nil), e.participants...)
}

func (e *Expense) ParticipantCount() int {
	return len(e.participants)
}

// Participant возвращает строку распределения пользователя.
func (e *Expense) Participant(userID uuid.UUID) (Participant, bool) {
	if i := e.indexOf(userID); i >= 0 {
		return e.participants[i], true
	}
	return Participant{}, false
}

func (e *Expense) IsPayer(userID uuid.UUID) bool {
	return e.PayerID != nil && *e.PayerID == userID
}

func (e *Expense) HasParticipant(userID uuid.UUID) bool {
	return e.indexOf(userID) >= 0
}

// CanView — просматривать расход и его участников могут только участники.
func (e *Expense) CanView(userID uuid.UUID) bool {
	return e.HasParticipant(userID)
}

// CanEdit — менять расход и доли может только плательщик.
func (e *Expense) CanEdit(userID uuid.UUID) bool {
	return e.IsPayer(userID)
}

// CanAddParticipants — добавлять участников может плательщик или любой участник.
func (e *Expense) CanAddParticipants(userID uuid.UUID) bool {
	return e.IsPayer(userID) || e.HasParticipant(userID)
}

// AddParticipant добавляет пользователя в расход. При равном делении доли
// пересчитываются для всех участников, включая нового; при неравном новая
// строка получает amount (0, если сумма не указана).
func (e *Expense) AddParticipant(u User, amount *int64, item *string) (Participant, error) {
	if e.HasParticipant(u.ID) {
		return Participant{}, Conflict("User %s is already a participant", u.Username)
	}

	p := Participant{
		ID:        uuid.New(),
		ExpenseID: e.ID,
		UserID:    u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Item:      item,
		CreatedAt: time.Now().UTC(),
	}
	if e.SplitMethod == SplitUnequal && amount != nil {
		p.Amount = *amount
	}
	e.participants = append(e.participants, p)

	if e.SplitMethod == SplitEqual {
		share, err := e.ApplyEqualSplit()
		if err != nil {
			return Participant{}, err
		}
		p.Amount = share
	}
	return p, nil
}

// RemoveParticipant удаляет строку пользователя. При равном делении доли
// оставшихся участников пересчитываются, если кто-то остался.
func (e *Expense) RemoveParticipant(userID uuid.UUID) (Participant, error) {
	i := e.indexOf(userID)
	if i < 0 {
		return Participant{}, NotFound("User is not a participant in this expense")
	}
	removed := e.participants[i]
	e.participants = append(e.participants[:i:i], e.participants[i+1:]...)

	if e.SplitMethod == SplitEqual && len(e.participants) > 0 {
		if _, err := e.ApplyEqualSplit(); err != nil {
			return Participant{}, err
		}
	}
	return removed, nil
}

// UpdateParticipant перезаписывает только переданные поля строки,
// доли остальных участников не пересчитываются.
func (e *Expense) UpdateParticipant(userID uuid.UUID, f ParticipantFields) (Participant, error) {
	i := e.indexOf(userID)
	if i < 0 {
		return Participant{}, NotFound("User is not a participant in this expense")
	}
	if f.Amount != nil {
		e.participants[i].Amount = *f.Amount
	}
	if f.SetItem {
		e.participants[i].Item = f.Item
	}
	return e.participants[i], nil
}

// ApplyEqualSplit записывает равную долю во все строки и возвращает её.
func (e *Expense) ApplyEqualSplit() (int64, error) {
	share, err := split.EqualShare(e.TotalAmount, len(e.participants))
	if err != nil {
		return 0, err
	}
	for i := range e.participants {
		e.participants[i].Amount = share
	}
	return share, nil
}

// Update применяет частичное изменение полей. Доли участников при этом
// не пересчитываются, даже если изменились сумма или способ деления.
func (e *Expense) Update(f ExpenseFields) {
	if f.Title != nil {
		e.Title = *f.Title
	}
	if f.Date != nil {
		e.Date = *f.Date
	}
	if f.TotalAmount != nil {
		e.TotalAmount = *f.TotalAmount
	}
	if f.SplitMethod != nil {
		e.SplitMethod = *f.SplitMethod
	}
	e.UpdatedAt = time.Now().UTC()
}

func (e *Expense) indexOf(userID uuid.UUID) int {
	for i := range e.participants {
		if e.participants[i].UserID == userID {
			return i
		}
	}
	return -1
}
