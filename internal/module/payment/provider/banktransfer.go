package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/config"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/notify"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/storage"
	"go.uber.org/zap"
)

// BankTransferProvider settles payments the customer wires to one of
// the configured destination accounts. The customer uploads a proof
// document, then staff verify it and approve or reject.
type BankTransferProvider struct {
	accounts []config.TransferBankAccount
	blobs    storage.BlobStore
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewBankTransferProvider creates a bank-transfer settlement provider.
func NewBankTransferProvider(cfg *config.TransferConfig, blobs storage.BlobStore, notifier notify.Notifier, logger *zap.Logger) *BankTransferProvider {
	return &BankTransferProvider{
		accounts: cfg.Accounts,
		blobs:    blobs,
		notifier: notifier,
		logger:   logger.Named("provider.transfer"),
	}
}

// Method returns the settlement method this strategy serves.
func (b *BankTransferProvider) Method() domain.Method {
	return domain.MethodBankTransfer
}

// Process issues a transfer reference and the destination accounts.
// The payment stays pending until the customer submits proof.
func (b *BankTransferProvider) Process(ctx context.Context, p *domain.Payment, ord OrderInfo, _ ProcessData) (*ProcessResult, error) {
	details := p.Transfer()
	if details == nil {
		return nil, fmt.Errorf("%w: transfer details missing", ErrInvalidState)
	}

	details.Reference = newReference("TRF", time.Now())

	accounts := make([]map[string]any, len(b.accounts))
	for i, acc := range b.accounts {
		accounts[i] = map[string]any{
			"bank_name":      acc.BankName,
			"account_number": acc.AccountNumber,
			"account_holder": acc.AccountHolder,
			"account_type":   acc.AccountType,
		}
	}

	b.notifier.Send(ctx, notify.EventTransferInstructions, map[string]any{
		"payment_id": p.ID().String(),
		"order_no":   ord.OrderNo,
		"reference":  details.Reference,
		"amount":     formatCents(p.Amount(), p.Currency()),
	})

	b.logger.Info("transfer instructions issued",
		zap.String("payment_id", p.ID().String()),
		zap.String("reference", details.Reference),
	)

	return &ProcessResult{Instructions: map[string]any{
		"reference":     details.Reference,
		"amount":        formatCents(p.Amount(), p.Currency()),
		"bank_accounts": accounts,
	}}, nil
}

// SubmitProof stores the payer's proof document and moves the payment
// to processing, where it waits for staff verification. A proof can be
// submitted exactly once.
func (b *BankTransferProvider) SubmitProof(ctx context.Context, p *domain.Payment, proof ProofUpload, by actor.Actor) error {
	details := p.Transfer()
	if details == nil {
		return fmt.Errorf("%w: transfer details missing", ErrInvalidState)
	}
	if details.ProofURL != "" {
		return ErrProofAlreadySubmitted
	}
	if p.Status() != domain.StatusPending {
		return fmt.Errorf("%w: payment is %s", ErrInvalidState, p.Status())
	}

	url, err := b.blobs.Upload(ctx, proof.Body, "transfer-proofs", proof.Filename, proof.ContentType)
	if err != nil {
		return fmt.Errorf("upload proof: %w", err)
	}

	now := time.Now()
	details.ProofURL = url
	details.ProofSubmittedAt = &now
	details.BankName = proof.BankName
	details.AccountNumber = proof.AccountNumber

	if err := p.BeginProcessing(by); err != nil {
		return err
	}

	b.notifier.Send(ctx, notify.EventProofSubmitted, map[string]any{
		"payment_id": p.ID().String(),
		"reference":  details.Reference,
		"proof_url":  url,
	})
	return nil
}

// Confirm records the staff verdict. Approval requires a submitted
// proof and settles the payment; rejection fails it, and the customer
// must start a new payment to retry.
func (b *BankTransferProvider) Confirm(ctx context.Context, p *domain.Payment, data ConfirmData, by actor.Actor) (*ConfirmResult, error) {
	if !by.IsStaff() {
		return nil, ErrStaffOnly
	}

	details := p.Transfer()
	if details == nil {
		return nil, fmt.Errorf("%w: transfer details missing", ErrInvalidState)
	}

	if !data.Approved {
		details.RejectionReason = data.RejectionReason
		if err := p.Fail(by, "transfer rejected", data.RejectionReason); err != nil {
			return nil, err
		}
		b.notifier.Send(ctx, notify.EventPaymentRejected, map[string]any{
			"payment_id": p.ID().String(),
			"reference":  details.Reference,
			"reason":     data.RejectionReason,
		})
		return &ConfirmResult{Status: p.Status()}, nil
	}

	if details.ProofURL == "" {
		return nil, ErrProofRequired
	}

	now := time.Now()
	details.VerifiedBy = by.String()
	details.VerifiedAt = &now

	if err := p.Complete(by); err != nil {
		return nil, err
	}

	b.notifier.Send(ctx, notify.EventPaymentCompleted, map[string]any{
		"payment_id": p.ID().String(),
		"reference":  details.Reference,
		"amount":     formatCents(p.Amount(), p.Currency()),
	})

	return &ConfirmResult{Status: p.Status()}, nil
}

// Cancel aborts an unverified transfer payment.
func (b *BankTransferProvider) Cancel(_ context.Context, p *domain.Payment, reason string, by actor.Actor) error {
	return p.Cancel(by, reason)
}
