package order

import (
	"math"
	"time"

	"github.com/santiagoavs/expo2025-sub004/internal/module/order/domain"
)

// CreateOrderRequest is the request body for creating an order.
type CreateOrderRequest struct {
	OrderNo    string  `json:"order_no" binding:"required"`
	CustomerID string  `json:"customer_id"`
	Total      float64 `json:"total" binding:"required,gt=0"`
}

// ChangeStatusRequest is the request body for an order status change.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// OrderResponse is the API representation of an order.
type OrderResponse struct {
	ID         string                `json:"id"`
	OrderNo    string                `json:"order_no"`
	CustomerID string                `json:"customer_id"`
	Status     string                `json:"status"`
	Total      float64               `json:"total"`
	Currency   string                `json:"currency"`
	Payment    domain.PaymentSummary `json:"payment"`
	History    []domain.StatusChange `json:"history,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// ToOrderResponse maps a domain order to its API representation.
func ToOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID().String(),
		OrderNo:    o.OrderNo(),
		CustomerID: o.CustomerID().String(),
		Status:     string(o.Status()),
		Total:      float64(o.Total().Amount()) / 100,
		Currency:   o.Total().Currency(),
		Payment:    o.Payment(),
		History:    o.History(),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
	}
}

// totalToCents converts a decimal API total to cents.
func totalToCents(total float64) int64 {
	return int64(math.Round(total * 100))
}
