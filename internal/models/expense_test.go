package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(username string) User {
	return User{ID: uuid.New(), Username: username, Name: username}
}

func amounts(e *Expense) []int64 {
	res := make([]int64, 0, e.ParticipantCount())
	for _, p := range e.Participants() {
		res = append(res, p.Amount)
	}
	return res
}

func sum(values []int64) int64 {
	var s int64
	for _, v := range values {
		s += v
	}
	return s
}

func TestParseSplitMethod(t *testing.T) {
	assert.Equal(t, SplitUnequal, ParseSplitMethod("unequal"))
	assert.Equal(t, SplitEqual, ParseSplitMethod("equal"))
	assert.Equal(t, SplitEqual, ParseSplitMethod(""))
	assert.Equal(t, SplitEqual, ParseSplitMethod("percent"))
}

func TestNewExpense(t *testing.T) {
	payer := newUser("alice")
	item := "tickets"

	e := NewExpense(payer, "Trip", 90, SplitEqual, time.Now(), &item)

	require.Equal(t, 1, e.ParticipantCount())
	assert.True(t, e.IsPayer(payer.ID))
	assert.True(t, e.HasParticipant(payer.ID))
	p, ok := e.Participant(payer.ID)
	require.True(t, ok)
	assert.Equal(t, int64(90), p.Amount)
	assert.Equal(t, e.ID, p.ExpenseID)
	require.NotNil(t, p.Item)
	assert.Equal(t, "tickets", *p.Item)
}

func TestExpense_TripScenario(t *testing.T) {
	a, b, c := newUser("a"), newUser("b"), newUser("c")
	e := NewExpense(a, "Trip", 90, SplitEqual, time.Now(), nil)
	assert.Equal(t, []int64{90}, amounts(e))

	added, err := e.AddParticipant(b, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(45), added.Amount)
	assert.Equal(t, []int64{45, 45}, amounts(e))

	_, err = e.AddParticipant(c, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 30, 30}, amounts(e))

	_, err = e.RemoveParticipant(b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{45, 45}, amounts(e))
	assert.Equal(t, int64(90), sum(amounts(e)))
}

func TestExpense_RoundingLoss(t *testing.T) {
	a, b, c := newUser("a"), newUser("b"), newUser("c")
	e := NewExpense(a, "Dinner", 100, SplitEqual, time.Now(), nil)

	_, err := e.AddParticipant(b, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{50, 50}, amounts(e))

	_, err = e.AddParticipant(c, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{33, 33, 33}, amounts(e))
	assert.Equal(t, int64(99), sum(amounts(e)))

	_, err = e.RemoveParticipant(c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{50, 50}, amounts(e))
}

func TestExpense_EqualInvariantAfterMembershipChanges(t *testing.T) {
	payer := newUser("payer")
	e := NewExpense(payer, "Rent", 1000, SplitEqual, time.Now(), nil)

	users := make([]User, 0, 6)
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		u := newUser(name)
		users = append(users, u)
		_, err := e.AddParticipant(u, nil, nil)
		require.NoError(t, err)
		assertEqualSplit(t, e)
	}
	for _, u := range users[:3] {
		_, err := e.RemoveParticipant(u.ID)
		require.NoError(t, err)
		assertEqualSplit(t, e)
	}
}

func assertEqualSplit(t *testing.T, e *Expense) {
	t.Helper()
	n := int64(e.ParticipantCount())
	for _, p := range e.Participants() {
		assert.Equal(t, e.TotalAmount/n, p.Amount)
	}
	s := sum(amounts(e))
	assert.LessOrEqual(t, s, e.TotalAmount)
	assert.Less(t, e.TotalAmount-s, n)
}

func TestExpense_AddParticipantTwice(t *testing.T) {
	a, b := newUser("a"), newUser("b")
	e := NewExpense(a, "Trip", 90, SplitEqual, time.Now(), nil)

	_, err := e.AddParticipant(b, nil, nil)
	require.NoError(t, err)
	before := e.Participants()

	_, err = e.AddParticipant(b, nil, nil)
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "User b is already a participant", err.Error())
	assert.Equal(t, before, e.Participants())
}

func TestExpense_RemoveNonParticipant(t *testing.T) {
	a, b := newUser("a"), newUser("b")
	e := NewExpense(a, "Trip", 90, SplitEqual, time.Now(), nil)
	before := e.Participants()

	_, err := e.RemoveParticipant(b.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, e.Participants())
}

func TestExpense_RemoveLastParticipant(t *testing.T) {
	a := newUser("a")
	e := NewExpense(a, "Solo", 90, SplitEqual, time.Now(), nil)

	removed, err := e.RemoveParticipant(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.UserID)
	assert.Equal(t, 0, e.ParticipantCount())
}

func TestExpense_Unequal(t *testing.T) {
	a, b, c := newUser("a"), newUser("b"), newUser("c")
	e := NewExpense(a, "Groceries", 100, SplitUnequal, time.Now(), nil)

	amount := int64(70)
	p, err := e.AddParticipant(b, &amount, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(70), p.Amount)

	p, err = e.AddParticipant(c, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Amount)

	// суммы не сверяются с общей и не пересчитываются
	assert.Equal(t, []int64{100, 70, 0}, amounts(e))

	_, err = e.RemoveParticipant(b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 0}, amounts(e))
}

func TestExpense_UpdateParticipant(t *testing.T) {
	a, b := newUser("a"), newUser("b")
	e := NewExpense(a, "Trip", 90, SplitEqual, time.Now(), nil)
	_, err := e.AddParticipant(b, nil, nil)
	require.NoError(t, err)

	amount := int64(10)
	p, err := e.UpdateParticipant(b.ID, ParticipantFields{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Amount)
	assert.Nil(t, p.Item)
	assert.Equal(t, []int64{45, 10}, amounts(e))

	item := "fuel"
	p, err = e.UpdateParticipant(b.ID, ParticipantFields{Item: &item, SetItem: true})
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Amount)
	require.NotNil(t, p.Item)
	assert.Equal(t, "fuel", *p.Item)

	// без SetItem пометка сохраняется
	p, err = e.UpdateParticipant(b.ID, ParticipantFields{Amount: &amount})
	require.NoError(t, err)
	require.NotNil(t, p.Item)
	assert.Equal(t, "fuel", *p.Item)

	p, err = e.UpdateParticipant(b.ID, ParticipantFields{SetItem: true})
	require.NoError(t, err)
	assert.Nil(t, p.Item)
	row, _ := e.Participant(b.ID)
	assert.Nil(t, row.Item)

	_, err = e.UpdateParticipant(uuid.New(), ParticipantFields{Amount: &amount})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpense_UpdateDoesNotRecalculate(t *testing.T) {
	a, b := newUser("a"), newUser("b")
	e := NewExpense(a, "Trip", 90, SplitEqual, time.Now(), nil)
	_, err := e.AddParticipant(b, nil, nil)
	require.NoError(t, err)

	total := int64(200)
	title := "Road trip"
	method := SplitUnequal
	e.Update(ExpenseFields{Title: &title, TotalAmount: &total, SplitMethod: &method})

	assert.Equal(t, "Road trip", e.Title)
	assert.Equal(t, int64(200), e.TotalAmount)
	assert.Equal(t, SplitUnequal, e.SplitMethod)
	assert.Equal(t, []int64{45, 45}, amounts(e))
}

func TestExpense_Permissions(t *testing.T) {
	payer, member, stranger := newUser("payer"), newUser("member"), newUser("stranger")
	e := NewExpense(payer, "Trip", 90, SplitEqual, time.Now(), nil)
	_, err := e.AddParticipant(member, nil, nil)
	require.NoError(t, err)

	assert.True(t, e.CanEdit(payer.ID))
	assert.False(t, e.CanEdit(member.ID))

	assert.True(t, e.CanView(member.ID))
	assert.False(t, e.CanView(stranger.ID))

	assert.True(t, e.CanAddParticipants(member.ID))
	assert.False(t, e.CanAddParticipants(stranger.ID))

	e.PayerID = nil
	assert.False(t, e.CanEdit(payer.ID))
}

func TestExpense_ParticipantsIsACopy(t *testing.T) {
	a := newUser("a")
	e := NewExpense(a, "Trip", 90, SplitEqual, time.Now(), nil)

	rows := e.Participants()
	rows[0].Amount = 1

	p, _ := e.Participant(a.ID)
	assert.Equal(t, int64(90), p.Amount)
}

func TestKindErrors(t *testing.T) {
	err := NotFound("Expense not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Expense not found", err.Error())

	err = Forbidden("Only the payer can %s this expense", "delete")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Only the payer can delete this expense", err.Error())

	wrapped := fmt.Errorf("storage.Expense: %w", NotFound("Expense not found"))
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, "Expense not found", Message(wrapped))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
