package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
)

// PaymentEntity is the GORM entity for Payment. Method-specific
// sub-records, provider metadata and the error log are stored as jsonb.
type PaymentEntity struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`

	Amount   int64  `gorm:"not null"`
	Currency string `gorm:"default:usd"`

	Method      string `gorm:"not null;index"`
	Status      string `gorm:"not null;default:pending;index"`
	Timing      string `gorm:"default:advance"`
	PaymentType string `gorm:"default:full"`
	Percentage  int    `gorm:"default:0"`

	ProviderData string `gorm:"type:jsonb;default:'{}'"`
	Details      string `gorm:"type:jsonb;default:'{}'"`
	ErrorLog     string `gorm:"type:jsonb;default:'[]'"`

	CreatedByKind       string
	CreatedByID         uuid.UUID `gorm:"type:uuid"`
	StatusChangedByKind string
	StatusChangedByID   uuid.UUID `gorm:"type:uuid"`

	ProcessedAt *time.Time
	CompletedAt *time.Time
	FailedAt    *time.Time
	CancelledAt *time.Time
	RefundedAt  *time.Time

	Version   int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name.
func (PaymentEntity) TableName() string {
	return "payments"
}

// paymentDetails is the jsonb envelope for the method sub-record. At
// most one field is set, matching the method column.
type paymentDetails struct {
	Cash     *domain.CashDetails     `json:"cash,omitempty"`
	Transfer *domain.TransferDetails `json:"transfer,omitempty"`
	Gateway  *domain.GatewayDetails  `json:"gateway,omitempty"`
}

// ToDomain converts entity to domain Payment.
func (e *PaymentEntity) ToDomain() *domain.Payment {
	var providerData map[string]string
	if e.ProviderData != "" {
		_ = json.Unmarshal([]byte(e.ProviderData), &providerData)
	}

	var details paymentDetails
	if e.Details != "" {
		_ = json.Unmarshal([]byte(e.Details), &details)
	}

	var errorLog []domain.ErrorEntry
	if e.ErrorLog != "" {
		_ = json.Unmarshal([]byte(e.ErrorLog), &errorLog)
	}

	return domain.RestorePayment(
		e.ID,
		e.OrderID,
		e.Amount,
		e.Currency,
		domain.Method(e.Method),
		domain.Status(e.Status),
		domain.Timing(e.Timing),
		domain.Type(e.PaymentType),
		e.Percentage,
		providerData,
		details.Cash,
		details.Transfer,
		details.Gateway,
		actor.Actor{Kind: actor.Kind(e.CreatedByKind), ID: e.CreatedByID},
		actor.Actor{Kind: actor.Kind(e.StatusChangedByKind), ID: e.StatusChangedByID},
		e.ProcessedAt,
		e.CompletedAt,
		e.FailedAt,
		e.CancelledAt,
		e.RefundedAt,
		errorLog,
		e.Version,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// FromDomainPayment converts domain Payment to entity.
func FromDomainPayment(p *domain.Payment) *PaymentEntity {
	providerJSON, _ := json.Marshal(p.ProviderData())
	detailsJSON, _ := json.Marshal(paymentDetails{
		Cash:     p.Cash(),
		Transfer: p.Transfer(),
		Gateway:  p.Gateway(),
	})
	errorJSON, _ := json.Marshal(p.ErrorLog())

	createdBy := p.CreatedBy()
	changedBy := p.StatusChangedBy()

	return &PaymentEntity{
		ID:                  p.ID(),
		OrderID:             p.OrderID(),
		Amount:              p.Amount(),
		Currency:            p.Currency(),
		Method:              string(p.Method()),
		Status:              string(p.Status()),
		Timing:              string(p.Timing()),
		PaymentType:         string(p.PaymentType()),
		Percentage:          p.Percentage(),
		ProviderData:        string(providerJSON),
		Details:             string(detailsJSON),
		ErrorLog:            string(errorJSON),
		CreatedByKind:       string(createdBy.Kind),
		CreatedByID:         createdBy.ID,
		StatusChangedByKind: string(changedBy.Kind),
		StatusChangedByID:   changedBy.ID,
		ProcessedAt:         p.ProcessedAt(),
		CompletedAt:         p.CompletedAt(),
		FailedAt:            p.FailedAt(),
		CancelledAt:         p.CancelledAt(),
		RefundedAt:          p.RefundedAt(),
		Version:             p.Version(),
		CreatedAt:           p.CreatedAt(),
		UpdatedAt:           p.UpdatedAt(),
	}
}

// WebhookEventEntity records processed gateway webhook events so a
// replayed delivery is acknowledged without re-applying its effect.
type WebhookEventEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID   string    `gorm:"uniqueIndex;not null"`
	EventType string    `gorm:"not null"`
	PaymentID uuid.UUID `gorm:"type:uuid;index"`
	Payload   string    `gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

// TableName returns the database table name.
func (WebhookEventEntity) TableName() string {
	return "payment_webhook_events"
}
