package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/order/domain"
)

// OrderEntity is the GORM entity for Order.
type OrderEntity struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo    string    `gorm:"uniqueIndex;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     string    `gorm:"not null;default:pending_approval"`
	Total      int64     `gorm:"not null"`
	Currency   string    `gorm:"default:usd"`

	PaymentMethod    string
	PaymentStatus    string `gorm:"default:pending"`
	PaymentTotalPaid int64  `gorm:"default:0"`
	PaymentBalance   int64  `gorm:"default:0"`

	StatusHistory string `gorm:"type:jsonb;default:'[]'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the database table name.
func (OrderEntity) TableName() string {
	return "orders"
}

// ToDomain converts entity to domain Order.
func (e *OrderEntity) ToDomain() *domain.Order {
	var history []domain.StatusChange
	if e.StatusHistory != "" {
		// Corrupt history is an audit defect, not a reason to fail a read.
		_ = json.Unmarshal([]byte(e.StatusHistory), &history)
	}

	return domain.RestoreOrder(
		e.ID,
		e.OrderNo,
		e.CustomerID,
		domain.Status(e.Status),
		e.Total,
		e.Currency,
		domain.PaymentSummary{
			Method:    e.PaymentMethod,
			Status:    domain.SettlementStatus(e.PaymentStatus),
			TotalPaid: e.PaymentTotalPaid,
			Balance:   e.PaymentBalance,
		},
		history,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// FromDomainOrder converts domain Order to entity.
func FromDomainOrder(o *domain.Order) *OrderEntity {
	historyJSON, _ := json.Marshal(o.History())
	summary := o.Payment()

	return &OrderEntity{
		ID:               o.ID(),
		OrderNo:          o.OrderNo(),
		CustomerID:       o.CustomerID(),
		Status:           string(o.Status()),
		Total:            o.Total().Amount(),
		Currency:         o.Total().Currency(),
		PaymentMethod:    summary.Method,
		PaymentStatus:    string(summary.Status),
		PaymentTotalPaid: summary.TotalPaid,
		PaymentBalance:   summary.Balance,
		StatusHistory:    string(historyJSON),
		CreatedAt:        o.CreatedAt(),
		UpdatedAt:        o.UpdatedAt(),
	}
}
