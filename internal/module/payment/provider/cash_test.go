package provider

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCashProvider(notifier *mockNotifier) *CashProvider {
	return NewCashProvider(notifier, zap.NewNop())
}

func TestCashProvider_Process(t *testing.T) {
	c := newCashProvider(&mockNotifier{})
	p := newProviderPayment(t, domain.MethodCash, 10000)

	result, err := c.Process(context.Background(), p, OrderInfo{OrderNo: "ORD-1"}, ProcessData{Location: "store front"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, p.Status())
	assert.Equal(t, "store front", p.Cash().Location)
	assert.Equal(t, int64(10000), p.Cash().ExpectedAmount)
	assert.Equal(t, "store front", result.Instructions["location"])
}

func TestCashProvider_ConfirmExactAmount(t *testing.T) {
	notifier := &mockNotifier{}
	c := newCashProvider(notifier)
	p := newProviderPayment(t, domain.MethodCash, 10000)
	staff := actor.Staff(uuid.New())

	result, err := c.Confirm(context.Background(), p, ConfirmData{ReceivedAmount: 10000}, staff)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, p.Status())
	assert.Equal(t, int64(10000), p.Cash().ReceivedAmount)
	assert.Equal(t, int64(0), p.Cash().ChangeGiven)
	assert.Regexp(t, `^REC-\d{8}-[0-9A-F]{6}$`, p.Cash().ReceiptNumber)
	assert.NotNil(t, p.Cash().CollectedAt)
	assert.Equal(t, p.Cash().ReceiptNumber, result.Notice["receipt_number"])
	assert.True(t, notifier.sent(notify.EventCashReceipt))
}

func TestCashProvider_ConfirmComputesChange(t *testing.T) {
	c := newCashProvider(&mockNotifier{})
	p := newProviderPayment(t, domain.MethodCash, 10000)

	_, err := c.Confirm(context.Background(), p, ConfirmData{ReceivedAmount: 15000}, actor.Staff(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), p.Cash().ChangeGiven)
}

func TestCashProvider_ConfirmOneCentShort(t *testing.T) {
	c := newCashProvider(&mockNotifier{})
	p := newProviderPayment(t, domain.MethodCash, 10000)

	_, err := c.Confirm(context.Background(), p, ConfirmData{ReceivedAmount: 9999}, actor.Staff(uuid.New()))
	require.ErrorIs(t, err, ErrInsufficientAmount)
	assert.Contains(t, err.Error(), "100.00 usd required")
	assert.Contains(t, err.Error(), "99.99 usd received")
	assert.Equal(t, domain.StatusPending, p.Status())
}

func TestCashProvider_ConfirmPlausibilityBound(t *testing.T) {
	c := newCashProvider(&mockNotifier{})

	// Exactly five times the amount is still plausible.
	p := newProviderPayment(t, domain.MethodCash, 10000)
	_, err := c.Confirm(context.Background(), p, ConfirmData{ReceivedAmount: 50000}, actor.Staff(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, p.Status())

	// One cent over the bound is rejected.
	p = newProviderPayment(t, domain.MethodCash, 10000)
	_, err = c.Confirm(context.Background(), p, ConfirmData{ReceivedAmount: 50001}, actor.Staff(uuid.New()))
	require.ErrorIs(t, err, ErrImplausibleAmount)
	assert.Equal(t, domain.StatusPending, p.Status())
}

func TestCashProvider_ConfirmRequiresStaff(t *testing.T) {
	c := newCashProvider(&mockNotifier{})
	p := newProviderPayment(t, domain.MethodCash, 10000)

	_, err := c.Confirm(context.Background(), p, ConfirmData{ReceivedAmount: 10000}, actor.Customer(uuid.New()))
	assert.ErrorIs(t, err, ErrStaffOnly)
}

func TestCashProvider_ConfirmTerminalPayment(t *testing.T) {
	c := newCashProvider(&mockNotifier{})
	p := newProviderPayment(t, domain.MethodCash, 10000)
	staff := actor.Staff(uuid.New())
	require.NoError(t, p.Cancel(staff, "changed mind"))

	_, err := c.Confirm(context.Background(), p, ConfirmData{ReceivedAmount: 10000}, staff)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCashProvider_DefaultsCollectorToActor(t *testing.T) {
	c := newCashProvider(&mockNotifier{})
	p := newProviderPayment(t, domain.MethodCash, 10000)
	staffID := uuid.New()

	_, err := c.Confirm(context.Background(), p, ConfirmData{ReceivedAmount: 10000}, actor.Staff(staffID))
	require.NoError(t, err)
	assert.Equal(t, "staff:"+staffID.String(), p.Cash().CollectedBy)
}

func TestCashProvider_Cancel(t *testing.T) {
	c := newCashProvider(&mockNotifier{})
	p := newProviderPayment(t, domain.MethodCash, 10000)

	require.NoError(t, c.Cancel(context.Background(), p, "order cancelled", actor.Staff(uuid.New())))
	assert.Equal(t, domain.StatusCancelled, p.Status())
}
