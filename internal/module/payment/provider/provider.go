package provider

import (
	"context"
	"errors"
	"io"

	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
)

// Provider errors shared by all settlement channels.
var (
	ErrUnsupportedMethod       = errors.New("unsupported payment method")
	ErrInvalidState            = errors.New("payment is not in a state that allows this operation")
	ErrInsufficientAmount      = errors.New("insufficient amount received")
	ErrImplausibleAmount       = errors.New("received amount is implausibly large")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrProofAlreadySubmitted   = errors.New("transfer proof already submitted")
	ErrProofRequired           = errors.New("transfer proof has not been submitted")
	ErrNotPayer                = errors.New("only the paying customer can perform this operation")
	ErrStaffOnly               = errors.New("only staff can perform this operation")
	ErrUnavailable             = errors.New("payment provider unavailable")
)

// OrderInfo is the slice of the order a provider needs to initiate a
// payment without importing the order module.
type OrderInfo struct {
	OrderNo       string
	CustomerID    string
	CustomerEmail string
}

// ProcessData carries channel-specific input for initiating a payment.
type ProcessData struct {
	// cash
	Location string
	// gateway
	PayerEmail string

	Extra map[string]string
}

// ProcessResult carries channel-specific output from initiating a
// payment, merged into the API response. Keys are channel-defined
// (redirect_url, bank_accounts, reference, ...).
type ProcessResult struct {
	Instructions map[string]any
}

// ConfirmData carries channel-specific input for confirming a payment.
type ConfirmData struct {
	// cash
	ReceivedAmount int64
	CollectedBy    string

	// bank transfer verification verdict
	Approved        bool
	RejectionReason string

	// gateway
	ExternalStatus string
	TransactionID  string
	CardSummary    string
	ProcessingFee  int64

	Extra map[string]string
}

// ConfirmResult reports what the confirmation did. The payment itself
// carries the authoritative status; Notice holds channel output such as
// a receipt number or change due.
type ConfirmResult struct {
	Status domain.Status
	Notice map[string]any
}

// ProofUpload is a transfer proof document submitted by the payer.
type ProofUpload struct {
	Body          io.Reader
	Filename      string
	ContentType   string
	BankName      string
	AccountNumber string
}

// Strategy is the contract every settlement channel implements. All
// implementations mutate the payment through its transition methods so
// the status machine is enforced uniformly.
type Strategy interface {
	// Method returns the settlement method this strategy serves.
	Method() domain.Method

	// Process initiates the payment and returns channel instructions.
	Process(ctx context.Context, p *domain.Payment, ord OrderInfo, data ProcessData) (*ProcessResult, error)

	// Confirm settles, fails or rejects the payment.
	Confirm(ctx context.Context, p *domain.Payment, data ConfirmData, by actor.Actor) (*ConfirmResult, error)

	// Cancel aborts a non-terminal payment.
	Cancel(ctx context.Context, p *domain.Payment, reason string, by actor.Actor) error
}

// ProofReceiver is implemented by strategies that accept a payer-side
// proof document before staff confirmation.
type ProofReceiver interface {
	SubmitProof(ctx context.Context, p *domain.Payment, proof ProofUpload, by actor.Actor) error
}
