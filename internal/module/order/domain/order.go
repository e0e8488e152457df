package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
)

// Order errors.
var (
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// PaymentSummary is the derived settlement view of an order. It is a
// pure function of the order's payment set; the payment processor
// recomputes and replaces it in full after every payment mutation.
type PaymentSummary struct {
	Method    string           `json:"method,omitempty"`
	Status    SettlementStatus `json:"status"`
	TotalPaid int64            `json:"total_paid"`
	Balance   int64            `json:"balance"`
}

// StatusChange is one entry of the order's status history.
type StatusChange struct {
	From  Status    `json:"from"`
	To    Status    `json:"to"`
	Actor string    `json:"actor"`
	Note  string    `json:"note,omitempty"`
	At    time.Time `json:"at"`
}

// Order is the aggregate root for customer orders. Only the fields the
// settlement subsystem touches are modeled; item/design data lives with
// the catalog.
type Order struct {
	id         uuid.UUID
	orderNo    string
	customerID uuid.UUID
	status     Status

	total   Money
	payment PaymentSummary

	history   []StatusChange
	createdAt time.Time
	updatedAt time.Time
}

// NewOrder creates a new Order awaiting approval.
func NewOrder(customerID uuid.UUID, orderNo string, total Money) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, fmt.Errorf("customer ID cannot be empty")
	}
	if orderNo == "" {
		return nil, fmt.Errorf("order number cannot be empty")
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("order total must be positive")
	}

	now := time.Now()
	return &Order{
		id:         uuid.New(),
		orderNo:    orderNo,
		customerID: customerID,
		status:     StatusPendingApproval,
		total:      total,
		payment: PaymentSummary{
			Status:  SettlementPending,
			Balance: total.Amount(),
		},
		createdAt: now,
		updatedAt: now,
	}, nil
}

// RestoreOrder recreates an Order from persisted data.
// This bypasses validation for hydration from database.
func RestoreOrder(
	id uuid.UUID,
	orderNo string,
	customerID uuid.UUID,
	status Status,
	total int64,
	currency string,
	payment PaymentSummary,
	history []StatusChange,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:         id,
		orderNo:    orderNo,
		customerID: customerID,
		status:     status,
		total:      NewMoney(total, currency),
		payment:    payment,
		history:    history,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (o *Order) ID() uuid.UUID           { return o.id }
func (o *Order) OrderNo() string         { return o.orderNo }
func (o *Order) CustomerID() uuid.UUID   { return o.customerID }
func (o *Order) Status() Status          { return o.status }
func (o *Order) Total() Money            { return o.total }
func (o *Order) Payment() PaymentSummary { return o.payment }
func (o *Order) CreatedAt() time.Time    { return o.createdAt }
func (o *Order) UpdatedAt() time.Time    { return o.updatedAt }

// History returns a copy of the status history.
func (o *Order) History() []StatusChange {
	result := make([]StatusChange, len(o.history))
	copy(result, o.history)
	return result
}

// IsOwnedBy reports whether the given actor is the order's customer.
func (o *Order) IsOwnedBy(a actor.Actor) bool {
	return a.IsCustomer() && a.ID == o.customerID
}

// IsPayable reports whether a new payment may be taken for this order.
func (o *Order) IsPayable() bool {
	return o.status.IsPayable()
}

// IsFullyPaid reports whether the settlement view shows a zero balance.
func (o *Order) IsFullyPaid() bool {
	return o.payment.TotalPaid >= o.total.Amount()
}

// Transition moves the order to a new status and appends a history
// entry. Illegal transitions fail without mutating the order.
func (o *Order) Transition(to Status, by actor.Actor, note string) error {
	if !o.status.CanTransitionTo(to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, o.status, to)
	}
	now := time.Now()
	o.history = append(o.history, StatusChange{
		From:  o.status,
		To:    to,
		Actor: by.String(),
		Note:  note,
		At:    now,
	})
	o.status = to
	o.updatedAt = now
	return nil
}

// ApplyPaymentSummary replaces the derived settlement view atomically.
func (o *Order) ApplyPaymentSummary(s PaymentSummary) {
	o.payment = s
	o.updatedAt = time.Now()
}
