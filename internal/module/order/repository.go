package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/order/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/module/order/entity"
	"gorm.io/gorm"
)

// Repository defines the interface for order data access.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *domain.Order) error {
	ent := entity.FromDomainOrder(order)
	if err := r.db.WithContext(ctx).Create(ent).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var ent entity.OrderEntity
	err := r.db.WithContext(ctx).First(&ent, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return ent.ToDomain(), nil
}

func (r *repository) Update(ctx context.Context, order *domain.Order) error {
	ent := entity.FromDomainOrder(order)
	if err := r.db.WithContext(ctx).Save(ent).Error; err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	var entities []*entity.OrderEntity
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list orders by customer: %w", err)
	}

	orders := make([]*domain.Order, len(entities))
	for i, ent := range entities {
		orders[i] = ent.ToDomain()
	}
	return orders, nil
}
