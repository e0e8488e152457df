package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	ord, err := NewOrder(uuid.New(), "ORD-1001", NewMoney(25000, "usd"))
	require.NoError(t, err)
	return ord
}

func TestNewOrder(t *testing.T) {
	ord := newTestOrder(t)
	assert.Equal(t, StatusPendingApproval, ord.Status())
	assert.Equal(t, SettlementPending, ord.Payment().Status)
	assert.Equal(t, int64(25000), ord.Payment().Balance)
	assert.Equal(t, int64(0), ord.Payment().TotalPaid)

	_, err := NewOrder(uuid.Nil, "ORD-1", NewMoney(100, "usd"))
	assert.Error(t, err)
	_, err = NewOrder(uuid.New(), "", NewMoney(100, "usd"))
	assert.Error(t, err)
	_, err = NewOrder(uuid.New(), "ORD-1", NewMoney(0, "usd"))
	assert.Error(t, err)
}

func TestOrder_Transition(t *testing.T) {
	staff := actor.Staff(uuid.New())
	ord := newTestOrder(t)

	require.NoError(t, ord.Transition(StatusQuoted, staff, "quote sent"))
	require.NoError(t, ord.Transition(StatusApproved, staff, ""))
	require.NoError(t, ord.Transition(StatusInProduction, staff, ""))
	require.NoError(t, ord.Transition(StatusReadyForDelivery, staff, ""))
	require.NoError(t, ord.Transition(StatusDelivered, staff, ""))
	require.NoError(t, ord.Transition(StatusCompleted, staff, ""))

	history := ord.History()
	require.Len(t, history, 6)
	assert.Equal(t, StatusPendingApproval, history[0].From)
	assert.Equal(t, StatusQuoted, history[0].To)
	assert.Equal(t, "quote sent", history[0].Note)
}

func TestOrder_IllegalTransition(t *testing.T) {
	staff := actor.Staff(uuid.New())
	ord := newTestOrder(t)

	err := ord.Transition(StatusDelivered, staff, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPendingApproval, ord.Status())
	assert.Empty(t, ord.History())
}

func TestOrder_TerminalStatuses(t *testing.T) {
	staff := actor.Staff(uuid.New())
	ord := newTestOrder(t)
	require.NoError(t, ord.Transition(StatusCancelled, staff, "out of stock"))

	assert.True(t, ord.Status().IsTerminal())
	assert.ErrorIs(t, ord.Transition(StatusApproved, staff, ""), ErrInvalidTransition)
}

func TestOrder_IsPayable(t *testing.T) {
	assert.True(t, StatusPendingApproval.IsPayable())
	assert.True(t, StatusQuoted.IsPayable())
	assert.True(t, StatusApproved.IsPayable())
	assert.True(t, StatusReadyForDelivery.IsPayable())
	assert.False(t, StatusInProduction.IsPayable())
	assert.False(t, StatusDelivered.IsPayable())
	assert.False(t, StatusCompleted.IsPayable())
	assert.False(t, StatusCancelled.IsPayable())
}

func TestOrder_IsOwnedBy(t *testing.T) {
	customerID := uuid.New()
	ord, err := NewOrder(customerID, "ORD-7", NewMoney(100, "usd"))
	require.NoError(t, err)

	assert.True(t, ord.IsOwnedBy(actor.Customer(customerID)))
	assert.False(t, ord.IsOwnedBy(actor.Customer(uuid.New())))
	// Staff act on orders but never own them.
	assert.False(t, ord.IsOwnedBy(actor.Staff(customerID)))
}

func TestOrder_ApplyPaymentSummary(t *testing.T) {
	ord := newTestOrder(t)
	ord.ApplyPaymentSummary(PaymentSummary{
		Method:    "cash",
		Status:    SettlementCompleted,
		TotalPaid: 25000,
		Balance:   0,
	})

	assert.True(t, ord.IsFullyPaid())
	assert.Equal(t, SettlementCompleted, ord.Payment().Status)
	assert.Equal(t, "cash", ord.Payment().Method)
}
