package provider

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/config"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockBlobStore is an in-memory BlobStore.
type mockBlobStore struct {
	uploads int
	err     error
}

func (m *mockBlobStore) Upload(_ context.Context, _ io.Reader, folder, filename, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads++
	return "https://cdn.example.com/" + folder + "/" + filename, nil
}

func (m *mockBlobStore) Delete(context.Context, string) error { return nil }

func newTransferProvider(notifier *mockNotifier, blobs *mockBlobStore) *BankTransferProvider {
	cfg := &config.TransferConfig{Accounts: []config.TransferBankAccount{
		{BankName: "Banco Agricola", AccountNumber: "000123456", AccountHolder: "PodShop SA", AccountType: "checking"},
		{BankName: "BAC", AccountNumber: "987654321", AccountHolder: "PodShop SA", AccountType: "savings"},
	}}
	return NewBankTransferProvider(cfg, blobs, notifier, zap.NewNop())
}

func TestBankTransferProvider_Process(t *testing.T) {
	notifier := &mockNotifier{}
	b := newTransferProvider(notifier, &mockBlobStore{})
	p := newProviderPayment(t, domain.MethodBankTransfer, 20000)

	result, err := b.Process(context.Background(), p, OrderInfo{OrderNo: "ORD-2"}, ProcessData{})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, p.Status())
	assert.Regexp(t, `^TRF-\d{8}-[0-9A-F]{6}$`, p.Transfer().Reference)
	assert.Equal(t, p.Transfer().Reference, result.Instructions["reference"])

	accounts, ok := result.Instructions["bank_accounts"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, accounts, 2)
	assert.True(t, notifier.sent(notify.EventTransferInstructions))
}

func TestBankTransferProvider_SubmitProof(t *testing.T) {
	notifier := &mockNotifier{}
	blobs := &mockBlobStore{}
	b := newTransferProvider(notifier, blobs)
	p := newProviderPayment(t, domain.MethodBankTransfer, 20000)
	payer := actor.Customer(uuid.New())

	err := b.SubmitProof(context.Background(), p, ProofUpload{
		Body:     strings.NewReader("receipt"),
		Filename: "proof.pdf",
		BankName: "Banco Agricola",
	}, payer)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusProcessing, p.Status())
	assert.NotEmpty(t, p.Transfer().ProofURL)
	assert.NotNil(t, p.Transfer().ProofSubmittedAt)
	assert.Equal(t, 1, blobs.uploads)
	assert.True(t, notifier.sent(notify.EventProofSubmitted))
}

func TestBankTransferProvider_SubmitProofTwice(t *testing.T) {
	b := newTransferProvider(&mockNotifier{}, &mockBlobStore{})
	p := newProviderPayment(t, domain.MethodBankTransfer, 20000)
	payer := actor.Customer(uuid.New())

	proof := ProofUpload{Body: strings.NewReader("receipt"), Filename: "proof.pdf"}
	require.NoError(t, b.SubmitProof(context.Background(), p, proof, payer))

	err := b.SubmitProof(context.Background(), p, proof, payer)
	assert.ErrorIs(t, err, ErrProofAlreadySubmitted)
}

func TestBankTransferProvider_ConfirmApproved(t *testing.T) {
	notifier := &mockNotifier{}
	b := newTransferProvider(notifier, &mockBlobStore{})
	p := newProviderPayment(t, domain.MethodBankTransfer, 20000)
	staff := actor.Staff(uuid.New())

	require.NoError(t, b.SubmitProof(context.Background(), p,
		ProofUpload{Body: strings.NewReader("receipt"), Filename: "proof.pdf"},
		actor.Customer(uuid.New())))

	result, err := b.Confirm(context.Background(), p, ConfirmData{Approved: true}, staff)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, result.Status)
	assert.NotNil(t, p.Transfer().VerifiedAt)
	assert.NotEmpty(t, p.Transfer().VerifiedBy)
	assert.True(t, notifier.sent(notify.EventPaymentCompleted))
}

func TestBankTransferProvider_ConfirmWithoutProof(t *testing.T) {
	b := newTransferProvider(&mockNotifier{}, &mockBlobStore{})
	p := newProviderPayment(t, domain.MethodBankTransfer, 20000)

	_, err := b.Confirm(context.Background(), p, ConfirmData{Approved: true}, actor.Staff(uuid.New()))
	assert.ErrorIs(t, err, ErrProofRequired)
	assert.Equal(t, domain.StatusPending, p.Status())
}

func TestBankTransferProvider_ConfirmRejected(t *testing.T) {
	notifier := &mockNotifier{}
	b := newTransferProvider(notifier, &mockBlobStore{})
	p := newProviderPayment(t, domain.MethodBankTransfer, 20000)

	require.NoError(t, b.SubmitProof(context.Background(), p,
		ProofUpload{Body: strings.NewReader("receipt"), Filename: "proof.pdf"},
		actor.Customer(uuid.New())))

	result, err := b.Confirm(context.Background(), p, ConfirmData{
		Approved:        false,
		RejectionReason: "amount does not match",
	}, actor.Staff(uuid.New()))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, "amount does not match", p.Transfer().RejectionReason)
	require.NotEmpty(t, p.ErrorLog())
	assert.True(t, notifier.sent(notify.EventPaymentRejected))
}

func TestBankTransferProvider_ConfirmRequiresStaff(t *testing.T) {
	b := newTransferProvider(&mockNotifier{}, &mockBlobStore{})
	p := newProviderPayment(t, domain.MethodBankTransfer, 20000)

	_, err := b.Confirm(context.Background(), p, ConfirmData{Approved: true}, actor.Customer(uuid.New()))
	assert.ErrorIs(t, err, ErrStaffOnly)
}

func TestBankTransferProvider_SubmitProofAfterProcessing(t *testing.T) {
	b := newTransferProvider(&mockNotifier{}, &mockBlobStore{})
	p := newProviderPayment(t, domain.MethodBankTransfer, 20000)
	require.NoError(t, p.Cancel(actor.Staff(uuid.New()), ""))

	err := b.SubmitProof(context.Background(), p,
		ProofUpload{Body: strings.NewReader("receipt"), Filename: "proof.pdf"},
		actor.Customer(uuid.New()))
	assert.ErrorIs(t, err, ErrInvalidState)
}
