package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/order/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"go.uber.org/zap"
)

// Service implements order operations used by the settlement subsystem.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateOrder persists a new order awaiting approval.
func (s *Service) CreateOrder(ctx context.Context, customerID uuid.UUID, orderNo string, total domain.Money) (*domain.Order, error) {
	ord, err := domain.NewOrder(customerID, orderNo, total)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, ord); err != nil {
		return nil, err
	}
	return ord, nil
}

// GetOrder returns an order by ID.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// ListByCustomer returns all orders for a customer.
func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// ChangeStatus transitions the order and appends a history entry.
func (s *Service) ChangeStatus(ctx context.Context, orderID uuid.UUID, to domain.Status, by actor.Actor, note string) error {
	ord, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if err := ord.Transition(to, by, note); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, ord); err != nil {
		return err
	}

	s.logger.Info("order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(to)),
		zap.String("actor", by.String()),
	)
	return nil
}

// ApplyPaymentSummary replaces the order's derived settlement view.
// Called only by the payment processor after recomputation.
func (s *Service) ApplyPaymentSummary(ctx context.Context, orderID uuid.UUID, summary domain.PaymentSummary) error {
	ord, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	ord.ApplyPaymentSummary(summary)
	if err := s.repo.Update(ctx, ord); err != nil {
		return fmt.Errorf("apply payment summary: %w", err)
	}
	return nil
}

// PromoteQuoted advances a fully paid quoted order to approved and
// records the automatic promotion in the status history. Orders in any
// other status are left untouched.
func (s *Service) PromoteQuoted(ctx context.Context, orderID uuid.UUID) error {
	ord, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if ord.Status() != domain.StatusQuoted {
		return nil
	}
	if err := ord.Transition(domain.StatusApproved, actor.System(), "auto-approved on full payment"); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, ord); err != nil {
		return err
	}

	s.logger.Info("order auto-promoted to approved",
		zap.String("order_id", orderID.String()),
	)
	return nil
}
