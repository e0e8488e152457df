package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/notify"
	"go.uber.org/zap"
)

// implausibleFactor caps the received amount a collector can record.
// Anything above amount*5 is treated as a data-entry error.
const implausibleFactor = 5

// CashProvider settles in-person payments collected by staff, usually
// on delivery. Creation records where collection happens; confirmation
// records the count, computes change and issues a receipt.
type CashProvider struct {
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewCashProvider creates a cash settlement provider.
func NewCashProvider(notifier notify.Notifier, logger *zap.Logger) *CashProvider {
	return &CashProvider{notifier: notifier, logger: logger.Named("provider.cash")}
}

// Method returns the settlement method this strategy serves.
func (c *CashProvider) Method() domain.Method {
	return domain.MethodCash
}

// Process records the expected collection. The payment stays pending
// until staff confirm the count.
func (c *CashProvider) Process(_ context.Context, p *domain.Payment, ord OrderInfo, data ProcessData) (*ProcessResult, error) {
	details := p.Cash()
	if details == nil {
		return nil, fmt.Errorf("%w: cash details missing", ErrInvalidState)
	}
	details.ExpectedAmount = p.Amount()
	details.Location = data.Location

	c.logger.Info("cash payment registered",
		zap.String("payment_id", p.ID().String()),
		zap.String("order_no", ord.OrderNo),
		zap.String("location", data.Location),
	)

	return &ProcessResult{Instructions: map[string]any{
		"expected_amount": formatCents(p.Amount(), p.Currency()),
		"location":        data.Location,
	}}, nil
}

// Confirm records the counted cash. The received amount must cover the
// payment and stay within a plausible bound; change is computed against
// the expected amount and a receipt number is issued.
func (c *CashProvider) Confirm(ctx context.Context, p *domain.Payment, data ConfirmData, by actor.Actor) (*ConfirmResult, error) {
	if !by.IsStaff() {
		return nil, ErrStaffOnly
	}
	if p.Status().IsTerminal() {
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidState, p.Status())
	}

	details := p.Cash()
	if details == nil {
		return nil, fmt.Errorf("%w: cash details missing", ErrInvalidState)
	}

	received := data.ReceivedAmount
	if received < p.Amount() {
		return nil, fmt.Errorf("%w: %s required, %s received",
			ErrInsufficientAmount,
			formatCents(p.Amount(), p.Currency()),
			formatCents(received, p.Currency()),
		)
	}
	if received > p.Amount()*implausibleFactor {
		return nil, fmt.Errorf("%w: %s received against %s due",
			ErrImplausibleAmount,
			formatCents(received, p.Currency()),
			formatCents(p.Amount(), p.Currency()),
		)
	}

	now := time.Now()
	details.ReceivedAmount = received
	details.ChangeGiven = received - details.ExpectedAmount
	details.CollectedBy = data.CollectedBy
	if details.CollectedBy == "" {
		details.CollectedBy = by.String()
	}
	details.CollectedAt = &now
	details.ReceiptNumber = newReference("REC", now)

	if err := p.Complete(by); err != nil {
		return nil, err
	}

	c.notifier.Send(ctx, notify.EventCashReceipt, map[string]any{
		"payment_id":     p.ID().String(),
		"receipt_number": details.ReceiptNumber,
		"received":       formatCents(received, p.Currency()),
		"change_given":   formatCents(details.ChangeGiven, p.Currency()),
	})

	return &ConfirmResult{
		Status: p.Status(),
		Notice: map[string]any{
			"receipt_number": details.ReceiptNumber,
			"change_given":   formatCents(details.ChangeGiven, p.Currency()),
		},
	}, nil
}

// Cancel aborts an uncollected cash payment.
func (c *CashProvider) Cancel(_ context.Context, p *domain.Payment, reason string, by actor.Actor) error {
	return p.Cancel(by, reason)
}
