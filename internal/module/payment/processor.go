package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/order"
	orderdomain "github.com/santiagoavs/expo2025-sub004/internal/module/order/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/provider"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/cache"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/metrics"
	"go.uber.org/zap"
)

// OrderService is the slice of the order module the processor needs.
type OrderService interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*orderdomain.Order, error)
	ApplyPaymentSummary(ctx context.Context, orderID uuid.UUID, summary orderdomain.PaymentSummary) error
	PromoteQuoted(ctx context.Context, orderID uuid.UUID) error
}

// ConfirmLocker serializes racing confirmations of one payment.
type ConfirmLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// CreatePaymentInput describes a new payment request.
type CreatePaymentInput struct {
	OrderID     uuid.UUID
	Method      domain.Method
	Amount      int64 // cents; 0 derives from type and percentage
	Timing      domain.Timing
	PaymentType domain.Type
	Percentage  int
	Location    string
	PayerEmail  string
}

// CreatePaymentOutput pairs the created payment with channel
// instructions for the caller.
type CreatePaymentOutput struct {
	Payment      *domain.Payment
	Instructions map[string]any
}

// ConfirmOutput reports the post-confirmation state.
type ConfirmOutput struct {
	Payment *domain.Payment
	Notice  map[string]any
}

// Processor orchestrates the settlement lifecycle: it owns persistence,
// delegates channel behavior to the registered strategies and keeps the
// order's derived settlement view consistent after every change.
type Processor struct {
	repo     Repository
	registry *provider.Registry
	orders   OrderService
	locker   ConfirmLocker
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewProcessor creates a payment processor.
func NewProcessor(
	repo Repository,
	registry *provider.Registry,
	orders OrderService,
	locker ConfirmLocker,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		repo:     repo,
		registry: registry,
		orders:   orders,
		locker:   locker,
		metrics:  m,
		logger:   logger.Named("payment.processor"),
	}
}

// ProcessPayment creates a payment against an order and initiates it on
// the selected channel.
func (pr *Processor) ProcessPayment(ctx context.Context, in CreatePaymentInput, by actor.Actor) (*CreatePaymentOutput, error) {
	ord, err := pr.orders.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if by.IsCustomer() && !ord.IsOwnedBy(by) {
		return nil, provider.ErrNotPayer
	}
	if !ord.IsPayable() {
		return nil, fmt.Errorf("%w: order is %s", order.ErrOrderNotPayable, ord.Status())
	}

	strategy, err := pr.registry.GetByMethod(in.Method)
	if err != nil {
		return nil, err
	}

	amount, err := pr.resolveAmount(ord, in)
	if err != nil {
		return nil, err
	}

	p, err := domain.NewPayment(
		in.OrderID,
		amount,
		ord.Total().Currency(),
		in.Method,
		in.Timing,
		in.PaymentType,
		in.Percentage,
		by,
	)
	if err != nil {
		return nil, err
	}

	result, err := strategy.Process(ctx, p, provider.OrderInfo{
		OrderNo:    ord.OrderNo(),
		CustomerID: ord.CustomerID().String(),
	}, provider.ProcessData{
		Location:   in.Location,
		PayerEmail: in.PayerEmail,
	})
	if err != nil {
		return nil, err
	}

	if err := pr.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	pr.metrics.PaymentsCreated.WithLabelValues(string(in.Method)).Inc()
	pr.logger.Info("payment created",
		zap.String("payment_id", p.ID().String()),
		zap.String("order_id", in.OrderID.String()),
		zap.String("method", string(in.Method)),
		zap.Int64("amount", amount),
		zap.String("actor", by.String()),
	)

	if err := pr.recomputeSettlement(ctx, in.OrderID); err != nil {
		pr.logger.Error("settlement recompute failed", zap.Error(err))
	}

	return &CreatePaymentOutput{Payment: p, Instructions: result.Instructions}, nil
}

// resolveAmount derives the payment amount in cents from the request
// and the order. An explicit amount wins; a partial payment takes its
// percentage of the order total; everything else covers the remaining
// balance.
func (pr *Processor) resolveAmount(ord *orderdomain.Order, in CreatePaymentInput) (int64, error) {
	if in.Amount > 0 {
		return in.Amount, nil
	}
	if in.PaymentType == domain.TypePartial {
		if in.Percentage < 1 || in.Percentage > 100 {
			return 0, domain.ErrInvalidPercentage
		}
		return ord.Total().Percentage(in.Percentage).Amount(), nil
	}

	balance := ord.Payment().Balance
	if balance > 0 {
		return balance, nil
	}
	return ord.Total().Amount(), nil
}

// ConfirmPayment applies a confirmation to the payment under a
// per-payment lease so racing confirmations serialize. Confirming an
// already completed payment is rejected; a replayed webhook is
// acknowledged earlier by the event dedupe and never reaches here.
func (pr *Processor) ConfirmPayment(ctx context.Context, paymentID uuid.UUID, data provider.ConfirmData, by actor.Actor) (*ConfirmOutput, error) {
	release, err := pr.locker.Acquire(ctx, confirmLockKey(paymentID))
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, fmt.Errorf("%w: confirmation in progress", ErrConcurrentUpdate)
		}
		return nil, err
	}
	defer release()

	p, err := pr.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.IsCompleted() {
		return nil, fmt.Errorf("%w: payment already completed", provider.ErrInvalidState)
	}

	strategy, err := pr.registry.GetByMethod(p.Method())
	if err != nil {
		return nil, err
	}

	result, err := strategy.Confirm(ctx, p, data, by)
	if err != nil {
		return nil, err
	}

	if err := pr.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	pr.metrics.PaymentsConfirmed.WithLabelValues(string(p.Method()), string(p.Status())).Inc()
	pr.logger.Info("payment confirmed",
		zap.String("payment_id", paymentID.String()),
		zap.String("status", string(p.Status())),
		zap.String("actor", by.String()),
	)

	if err := pr.settleOrder(ctx, p.OrderID()); err != nil {
		pr.logger.Error("settlement recompute failed", zap.Error(err))
	}

	return &ConfirmOutput{Payment: p, Notice: result.Notice}, nil
}

// HandleGatewayWebhook records the webhook event for replay protection
// and applies its outcome as the system actor. A replayed event returns
// ErrWebhookEventExists without touching the payment.
func (pr *Processor) HandleGatewayWebhook(ctx context.Context, eventID, eventType string, paymentID uuid.UUID, payload map[string]any, data provider.ConfirmData) (*ConfirmOutput, error) {
	if err := pr.repo.RecordWebhookEvent(ctx, eventID, eventType, paymentID, payload); err != nil {
		return nil, err
	}
	return pr.ConfirmPayment(ctx, paymentID, data, actor.System())
}

// CancelPayment aborts a non-terminal payment. Customers can cancel
// only their own payments.
func (pr *Processor) CancelPayment(ctx context.Context, paymentID uuid.UUID, reason string, by actor.Actor) (*domain.Payment, error) {
	p, err := pr.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if by.IsCustomer() {
		ord, err := pr.orders.GetOrder(ctx, p.OrderID())
		if err != nil {
			return nil, err
		}
		if !ord.IsOwnedBy(by) {
			return nil, provider.ErrNotPayer
		}
	}

	strategy, err := pr.registry.GetByMethod(p.Method())
	if err != nil {
		return nil, err
	}
	if err := strategy.Cancel(ctx, p, reason, by); err != nil {
		return nil, err
	}

	if err := pr.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := pr.recomputeSettlement(ctx, p.OrderID()); err != nil {
		pr.logger.Error("settlement recompute failed", zap.Error(err))
	}
	return p, nil
}

// SubmitTransferProof records the payer's proof document on a bank
// transfer payment. Only the order's customer can submit proof; staff
// verify it through confirm.
func (pr *Processor) SubmitTransferProof(ctx context.Context, paymentID uuid.UUID, proof provider.ProofUpload, by actor.Actor) (*domain.Payment, error) {
	p, err := pr.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	ord, err := pr.orders.GetOrder(ctx, p.OrderID())
	if err != nil {
		return nil, err
	}
	if !ord.IsOwnedBy(by) {
		return nil, provider.ErrNotPayer
	}

	strategy, err := pr.registry.GetByMethod(p.Method())
	if err != nil {
		return nil, err
	}
	receiver, ok := strategy.(provider.ProofReceiver)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not accept proof documents", provider.ErrUnsupportedMethod, p.Method())
	}

	if err := receiver.SubmitProof(ctx, p, proof, by); err != nil {
		return nil, err
	}
	if err := pr.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := pr.recomputeSettlement(ctx, p.OrderID()); err != nil {
		pr.logger.Error("settlement recompute failed", zap.Error(err))
	}
	return p, nil
}

// RefundPayment marks a completed payment refunded. Staff only.
func (pr *Processor) RefundPayment(ctx context.Context, paymentID uuid.UUID, by actor.Actor) (*domain.Payment, error) {
	if !by.IsStaff() {
		return nil, provider.ErrStaffOnly
	}

	p, err := pr.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := p.Refund(by); err != nil {
		return nil, err
	}
	if err := pr.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := pr.recomputeSettlement(ctx, p.OrderID()); err != nil {
		pr.logger.Error("settlement recompute failed", zap.Error(err))
	}
	return p, nil
}

// GetPayment returns one payment. Customers see only payments on their
// own orders.
func (pr *Processor) GetPayment(ctx context.Context, paymentID uuid.UUID, by actor.Actor) (*domain.Payment, error) {
	p, err := pr.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if by.IsCustomer() {
		ord, err := pr.orders.GetOrder(ctx, p.OrderID())
		if err != nil {
			return nil, err
		}
		if !ord.IsOwnedBy(by) {
			return nil, ErrPaymentNotFound
		}
	}
	return p, nil
}

// OrderSettlement is the derived settlement view for one order.
type OrderSettlement struct {
	Order    *orderdomain.Order
	Payments []*domain.Payment
	Summary  orderdomain.PaymentSummary
}

// GetOrderSettlement returns the order, its payments and a freshly
// computed summary. The summary is always derived from the full
// payment set, never from the stored copy.
func (pr *Processor) GetOrderSettlement(ctx context.Context, orderID uuid.UUID, by actor.Actor) (*OrderSettlement, error) {
	ord, err := pr.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if by.IsCustomer() && !ord.IsOwnedBy(by) {
		return nil, order.ErrOrderNotFound
	}

	payments, err := pr.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderSettlement{
		Order:    ord,
		Payments: payments,
		Summary:  summarize(ord, payments),
	}, nil
}

// settleOrder recomputes the settlement view and, when the order became
// fully paid while still quoted, promotes it to approved.
func (pr *Processor) settleOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := pr.recomputeSettlement(ctx, orderID); err != nil {
		return err
	}

	ord, err := pr.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if ord.IsFullyPaid() {
		return pr.orders.PromoteQuoted(ctx, orderID)
	}
	return nil
}

// recomputeSettlement re-queries the full payment set and replaces the
// order's summary wholesale. Partial patches are never applied.
func (pr *Processor) recomputeSettlement(ctx context.Context, orderID uuid.UUID) error {
	ord, err := pr.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	payments, err := pr.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	return pr.orders.ApplyPaymentSummary(ctx, orderID, summarize(ord, payments))
}

// summarize derives the settlement summary from the payment set. Only
// completed payments count toward the paid total; refunds subtract by
// never counting. The method reflects the most recent active payment.
func summarize(ord *orderdomain.Order, payments []*domain.Payment) orderdomain.PaymentSummary {
	var totalPaid int64
	var anyActive bool
	var method string

	for _, p := range payments {
		switch p.Status() {
		case domain.StatusCompleted:
			totalPaid += p.Amount()
			method = string(p.Method())
		case domain.StatusPending, domain.StatusProcessing:
			anyActive = true
			method = string(p.Method())
		}
	}

	balance := ord.Total().Amount() - totalPaid
	if balance < 0 {
		balance = 0
	}

	status := orderdomain.SettlementPending
	switch {
	case totalPaid >= ord.Total().Amount():
		status = orderdomain.SettlementCompleted
	case totalPaid > 0 || anyActive:
		status = orderdomain.SettlementProcessing
	}

	return orderdomain.PaymentSummary{
		Method:    method,
		Status:    status,
		TotalPaid: totalPaid,
		Balance:   balance,
	}
}

func confirmLockKey(paymentID uuid.UUID) string {
	return "payment:confirm:" + paymentID.String()
}
