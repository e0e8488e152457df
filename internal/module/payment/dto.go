package payment

import (
	"math"
	"time"

	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
)

// CreatePaymentRequest is the request body for creating a payment.
// Amounts cross the API as decimal values and are held as cents inside.
type CreatePaymentRequest struct {
	OrderID     string  `json:"order_id" binding:"required,uuid"`
	Method      string  `json:"method" binding:"required"`
	Amount      float64 `json:"amount"`
	Timing      string  `json:"timing"`
	PaymentType string  `json:"payment_type"`
	Percentage  int     `json:"percentage"`
	Location    string  `json:"location"`
	PayerEmail  string  `json:"payer_email"`
}

// ConfirmPaymentRequest is the request body for confirming a payment.
// Which fields matter depends on the payment's method.
type ConfirmPaymentRequest struct {
	// cash
	ReceivedAmount float64 `json:"received_amount"`
	CollectedBy    string  `json:"collected_by"`

	// bank transfer verification
	Approved        *bool  `json:"approved"`
	RejectionReason string `json:"rejection_reason"`

	// gateway
	ExternalStatus string  `json:"external_status"`
	TransactionID  string  `json:"transaction_id"`
	CardSummary    string  `json:"card_summary"`
	ProcessingFee  float64 `json:"processing_fee"`
}

// CancelPaymentRequest is the request body for cancelling a payment.
type CancelPaymentRequest struct {
	Reason string `json:"reason"`
}

// PaymentResponse is the API representation of a payment.
type PaymentResponse struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Method      string  `json:"method"`
	Status      string  `json:"status"`
	Timing      string  `json:"timing"`
	PaymentType string  `json:"payment_type"`
	Percentage  int     `json:"percentage,omitempty"`

	Cash     *domain.CashDetails     `json:"cash,omitempty"`
	Transfer *domain.TransferDetails `json:"transfer,omitempty"`
	Gateway  *domain.GatewayDetails  `json:"gateway,omitempty"`

	ErrorLog []domain.ErrorEntry `json:"error_log,omitempty"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SettlementResponse is the derived settlement view of one order.
type SettlementResponse struct {
	OrderID     string            `json:"order_id"`
	OrderNo     string            `json:"order_no"`
	OrderStatus string            `json:"order_status"`
	Total       float64           `json:"total"`
	Currency    string            `json:"currency"`
	Method      string            `json:"method,omitempty"`
	Status      string            `json:"status"`
	TotalPaid   float64           `json:"total_paid"`
	Balance     float64           `json:"balance"`
	Payments    []PaymentResponse `json:"payments"`
}

// toCents converts a decimal API amount to cents, rounding half away
// from zero.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// fromCents converts cents to a decimal API amount.
func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

// ToPaymentResponse maps a domain payment to its API representation.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID().String(),
		OrderID:     p.OrderID().String(),
		Amount:      fromCents(p.Amount()),
		Currency:    p.Currency(),
		Method:      string(p.Method()),
		Status:      string(p.Status()),
		Timing:      string(p.Timing()),
		PaymentType: string(p.PaymentType()),
		Percentage:  p.Percentage(),
		Cash:        p.Cash(),
		Transfer:    p.Transfer(),
		Gateway:     p.Gateway(),
		ErrorLog:    p.ErrorLog(),
		ProcessedAt: p.ProcessedAt(),
		CompletedAt: p.CompletedAt(),
		FailedAt:    p.FailedAt(),
		CancelledAt: p.CancelledAt(),
		RefundedAt:  p.RefundedAt(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

// ToSettlementResponse maps an order settlement to its API
// representation.
func ToSettlementResponse(s *OrderSettlement) SettlementResponse {
	payments := make([]PaymentResponse, len(s.Payments))
	for i, p := range s.Payments {
		payments[i] = ToPaymentResponse(p)
	}
	return SettlementResponse{
		OrderID:     s.Order.ID().String(),
		OrderNo:     s.Order.OrderNo(),
		OrderStatus: string(s.Order.Status()),
		Total:       fromCents(s.Order.Total().Amount()),
		Currency:    s.Order.Total().Currency(),
		Method:      s.Summary.Method,
		Status:      string(s.Summary.Status),
		TotalPaid:   fromCents(s.Summary.TotalPaid),
		Balance:     fromCents(s.Summary.Balance),
		Payments:    payments,
	}
}
