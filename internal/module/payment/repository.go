package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/entity"
	"gorm.io/gorm"
)

// Repository defines the interface for payment data access.
type Repository interface {
	Create(ctx context.Context, p *domain.Payment) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// Update persists the payment with an optimistic version check and
	// returns ErrConcurrentUpdate when the stored version moved on.
	Update(ctx context.Context, p *domain.Payment) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error)

	// RecordWebhookEvent stores a processed webhook event ID and returns
	// ErrWebhookEventExists on a replayed delivery.
	RecordWebhookEvent(ctx context.Context, eventID, eventType string, paymentID uuid.UUID, payload map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *domain.Payment) error {
	ent := entity.FromDomainPayment(p)
	if err := r.db.WithContext(ctx).Create(ent).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var ent entity.PaymentEntity
	err := r.db.WithContext(ctx).First(&ent, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return ent.ToDomain(), nil
}

func (r *repository) Update(ctx context.Context, p *domain.Payment) error {
	ent := entity.FromDomainPayment(p)
	currentVersion := ent.Version
	ent.Version = currentVersion + 1

	res := r.db.WithContext(ctx).
		Model(&entity.PaymentEntity{}).
		Where("id = ? AND version = ?", ent.ID, currentVersion).
		Updates(ent)
	if res.Error != nil {
		return fmt.Errorf("update payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error) {
	var entities []*entity.PaymentEntity
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list payments by order: %w", err)
	}

	payments := make([]*domain.Payment, len(entities))
	for i, ent := range entities {
		payments[i] = ent.ToDomain()
	}
	return payments, nil
}

func (r *repository) RecordWebhookEvent(ctx context.Context, eventID, eventType string, paymentID uuid.UUID, payload map[string]any) error {
	payloadJSON, _ := json.Marshal(payload)
	ent := &entity.WebhookEventEntity{
		ID:        uuid.New(),
		EventID:   eventID,
		EventType: eventType,
		PaymentID: paymentID,
		Payload:   string(payloadJSON),
	}
	if err := r.db.WithContext(ctx).Create(ent).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrWebhookEventExists
		}
		return fmt.Errorf("record webhook event: %w", err)
	}
	return nil
}
