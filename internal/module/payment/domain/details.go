package domain

import "time"

// CashDetails carries the in-person settlement sub-record.
type CashDetails struct {
	ExpectedAmount int64      `json:"expected_amount"`
	ReceivedAmount int64      `json:"received_amount,omitempty"`
	ChangeGiven    int64      `json:"change_given,omitempty"`
	CollectedBy    string     `json:"collected_by,omitempty"`
	Location       string     `json:"location,omitempty"`
	ReceiptNumber  string     `json:"receipt_number,omitempty"`
	CollectedAt    *time.Time `json:"collected_at,omitempty"`
}

// TransferDetails carries the bank-transfer settlement sub-record.
type TransferDetails struct {
	Reference        string     `json:"reference"`
	BankName         string     `json:"bank_name,omitempty"`
	AccountNumber    string     `json:"account_number,omitempty"`
	ProofURL         string     `json:"proof_url,omitempty"`
	ProofSubmittedAt *time.Time `json:"proof_submitted_at,omitempty"`
	VerifiedBy       string     `json:"verified_by,omitempty"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
}

// GatewayDetails carries the card-gateway settlement sub-record.
// IsSimulated is set on every payment served by the local fallback so
// a simulated settlement can never be mistaken for a real one.
type GatewayDetails struct {
	LinkID          string     `json:"link_id,omitempty"`
	RedirectURL     string     `json:"redirect_url,omitempty"`
	LinkExpiresAt   *time.Time `json:"link_expires_at,omitempty"`
	TransactionID   string     `json:"transaction_id,omitempty"`
	CardSummary     string     `json:"card_summary,omitempty"`
	ProcessingFee   int64      `json:"processing_fee,omitempty"`
	WebhookReceived bool       `json:"webhook_received"`
	IsSimulated     bool       `json:"is_simulated"`
}

// ErrorEntry is one append-only audit record of a non-fatal failure.
// Entries are never overwritten or used for control flow.
type ErrorEntry struct {
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
