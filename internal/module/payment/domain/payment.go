package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
)

// Domain errors.
var (
	ErrInvalidTransition = errors.New("invalid payment status transition")
	ErrDetailMismatch    = errors.New("detail record does not match payment method")
	ErrInvalidAmount     = errors.New("payment amount must be positive")
	ErrInvalidPercentage = errors.New("percentage must be between 1 and 100")
)

// Payment is the aggregate root for one settlement attempt against one
// order. The amount is immutable after creation; adjustments require a
// new Payment. Exactly one method-specific sub-record is populated,
// matching the method.
type Payment struct {
	id      uuid.UUID
	orderID uuid.UUID

	amount   int64
	currency string

	method      Method
	status      Status
	timing      Timing
	paymentType Type
	percentage  int

	providerData map[string]string
	cash         *CashDetails
	transfer     *TransferDetails
	gateway      *GatewayDetails

	createdBy       actor.Actor
	statusChangedBy actor.Actor

	processedAt *time.Time
	completedAt *time.Time
	failedAt    *time.Time
	cancelledAt *time.Time
	refundedAt  *time.Time

	errorLog []ErrorEntry

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewPayment creates a pending Payment for an order.
func NewPayment(
	orderID uuid.UUID,
	amount int64,
	currency string,
	method Method,
	timing Timing,
	paymentType Type,
	percentage int,
	createdBy actor.Actor,
) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order ID cannot be empty")
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid payment method: %s", method)
	}
	if !timing.IsValid() {
		timing = TimingAdvance
	}
	if !paymentType.IsValid() {
		paymentType = TypeFull
	}
	if paymentType == TypePartial && (percentage < 1 || percentage > 100) {
		return nil, ErrInvalidPercentage
	}

	now := time.Now()
	p := &Payment{
		id:           uuid.New(),
		orderID:      orderID,
		amount:       amount,
		currency:     currency,
		method:       method,
		status:       StatusPending,
		timing:       timing,
		paymentType:  paymentType,
		percentage:   percentage,
		providerData: make(map[string]string),
		createdBy:    createdBy,
		createdAt:    now,
		updatedAt:    now,
	}

	// Exactly one sub-record, chosen by method.
	switch method {
	case MethodCash:
		p.cash = &CashDetails{ExpectedAmount: amount}
	case MethodBankTransfer:
		p.transfer = &TransferDetails{}
	case MethodGateway:
		p.gateway = &GatewayDetails{}
	}

	return p, nil
}

// RestorePayment recreates a Payment from persisted data.
func RestorePayment(
	id, orderID uuid.UUID,
	amount int64,
	currency string,
	method Method,
	status Status,
	timing Timing,
	paymentType Type,
	percentage int,
	providerData map[string]string,
	cash *CashDetails,
	transfer *TransferDetails,
	gateway *GatewayDetails,
	createdBy, statusChangedBy actor.Actor,
	processedAt, completedAt, failedAt, cancelledAt, refundedAt *time.Time,
	errorLog []ErrorEntry,
	version int64,
	createdAt, updatedAt time.Time,
) *Payment {
	if providerData == nil {
		providerData = make(map[string]string)
	}
	return &Payment{
		id:              id,
		orderID:         orderID,
		amount:          amount,
		currency:        currency,
		method:          method,
		status:          status,
		timing:          timing,
		paymentType:     paymentType,
		percentage:      percentage,
		providerData:    providerData,
		cash:            cash,
		transfer:        transfer,
		gateway:         gateway,
		createdBy:       createdBy,
		statusChangedBy: statusChangedBy,
		processedAt:     processedAt,
		completedAt:     completedAt,
		failedAt:        failedAt,
		cancelledAt:     cancelledAt,
		refundedAt:      refundedAt,
		errorLog:        errorLog,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID                 { return p.id }
func (p *Payment) OrderID() uuid.UUID            { return p.orderID }
func (p *Payment) Amount() int64                 { return p.amount }
func (p *Payment) Currency() string              { return p.currency }
func (p *Payment) Method() Method                { return p.method }
func (p *Payment) Status() Status                { return p.status }
func (p *Payment) Timing() Timing                { return p.timing }
func (p *Payment) PaymentType() Type             { return p.paymentType }
func (p *Payment) Percentage() int               { return p.percentage }
func (p *Payment) CreatedBy() actor.Actor        { return p.createdBy }
func (p *Payment) StatusChangedBy() actor.Actor  { return p.statusChangedBy }
func (p *Payment) ProcessedAt() *time.Time       { return p.processedAt }
func (p *Payment) CompletedAt() *time.Time       { return p.completedAt }
func (p *Payment) FailedAt() *time.Time          { return p.failedAt }
func (p *Payment) CancelledAt() *time.Time       { return p.cancelledAt }
func (p *Payment) RefundedAt() *time.Time        { return p.refundedAt }
func (p *Payment) Version() int64                { return p.version }
func (p *Payment) CreatedAt() time.Time          { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time          { return p.updatedAt }
func (p *Payment) Cash() *CashDetails            { return p.cash }
func (p *Payment) Transfer() *TransferDetails    { return p.transfer }
func (p *Payment) Gateway() *GatewayDetails      { return p.gateway }

// ProviderData returns a copy of the opaque provider metadata.
func (p *Payment) ProviderData() map[string]string {
	out := make(map[string]string, len(p.providerData))
	for k, v := range p.providerData {
		out[k] = v
	}
	return out
}

// ErrorLog returns a copy of the append-only error log.
func (p *Payment) ErrorLog() []ErrorEntry {
	out := make([]ErrorEntry, len(p.errorLog))
	copy(out, p.errorLog)
	return out
}

// IsCompleted returns true if the payment settled.
func (p *Payment) IsCompleted() bool {
	return p.status == StatusCompleted
}

// --- Mutation ---

// MergeProviderData merges opaque channel metadata into the payment.
func (p *Payment) MergeProviderData(data map[string]string) {
	for k, v := range data {
		p.providerData[k] = v
	}
	p.updatedAt = time.Now()
}

// AppendError records a non-fatal failure for postmortem. Entries are
// never removed.
func (p *Payment) AppendError(message, context string) {
	p.errorLog = append(p.errorLog, ErrorEntry{
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
	})
	p.updatedAt = time.Now()
}

// transition applies a status change, stamping the entry timestamp only
// the first time a status is reached. Illegal transitions leave the
// payment untouched.
func (p *Payment) transition(to Status, by actor.Actor) error {
	if !p.status.CanTransitionTo(to) {
		return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, p.status, to)
	}

	now := time.Now()
	switch to {
	case StatusProcessing:
		if p.processedAt == nil {
			p.processedAt = &now
		}
	case StatusCompleted:
		if p.completedAt == nil {
			p.completedAt = &now
		}
	case StatusFailed:
		if p.failedAt == nil {
			p.failedAt = &now
		}
	case StatusCancelled:
		if p.cancelledAt == nil {
			p.cancelledAt = &now
		}
	case StatusRefunded:
		if p.refundedAt == nil {
			p.refundedAt = &now
		}
	}

	p.status = to
	p.statusChangedBy = by
	p.updatedAt = now
	return nil
}

// BeginProcessing moves the payment from pending to processing.
func (p *Payment) BeginProcessing(by actor.Actor) error {
	return p.transition(StatusProcessing, by)
}

// Complete marks the payment settled.
func (p *Payment) Complete(by actor.Actor) error {
	return p.transition(StatusCompleted, by)
}

// Fail marks the payment failed and records the reason in the error log.
func (p *Payment) Fail(by actor.Actor, reason, context string) error {
	if err := p.transition(StatusFailed, by); err != nil {
		return err
	}
	p.AppendError(reason, context)
	return nil
}

// Cancel aborts a pending or processing payment.
func (p *Payment) Cancel(by actor.Actor, reason string) error {
	if err := p.transition(StatusCancelled, by); err != nil {
		return err
	}
	if reason != "" {
		p.providerData["cancel_reason"] = reason
	}
	return nil
}

// Refund marks a completed payment refunded.
func (p *Payment) Refund(by actor.Actor) error {
	return p.transition(StatusRefunded, by)
}
