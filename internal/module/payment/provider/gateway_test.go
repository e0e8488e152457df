package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/config"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGatewayProvider(cfg *config.GatewayConfig, devMode bool) *GatewayProvider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.LinkTTL == 0 {
		cfg.LinkTTL = 30 * time.Minute
	}
	m := metrics.New(prometheus.NewRegistry())
	return NewGatewayProvider(cfg, devMode, &mockNotifier{}, m, zap.NewNop())
}

func TestGatewayProvider_ProcessUnconfiguredFallsBack(t *testing.T) {
	g := newGatewayProvider(&config.GatewayConfig{}, true)
	p := newProviderPayment(t, domain.MethodGateway, 10000)

	result, err := g.Process(context.Background(), p, OrderInfo{OrderNo: "ORD-3"}, ProcessData{})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusProcessing, p.Status())

	details := p.Gateway()
	assert.True(t, details.IsSimulated)
	assert.True(t, strings.HasPrefix(details.LinkID, "sim_"))
	assert.True(t, strings.HasPrefix(details.RedirectURL, "/simulated-gateway/checkout/sim_"))
	assert.NotNil(t, details.LinkExpiresAt)
	assert.Equal(t, true, result.Instructions["is_simulated"])
}

func TestGatewayProvider_ProcessLiveGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment-links", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":           "link_abc",
			"redirect_url": "https://gw.example.com/pay/link_abc",
		})
	}))
	defer srv.Close()

	g := newGatewayProvider(&config.GatewayConfig{
		BaseURL:   srv.URL,
		SecretKey: "sk_test",
	}, false)
	p := newProviderPayment(t, domain.MethodGateway, 10000)

	_, err := g.Process(context.Background(), p, OrderInfo{OrderNo: "ORD-3"}, ProcessData{})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusProcessing, p.Status())
	assert.False(t, p.Gateway().IsSimulated)
	assert.Equal(t, "link_abc", p.Gateway().LinkID)
	assert.Equal(t, "https://gw.example.com/pay/link_abc", p.Gateway().RedirectURL)
}

func TestGatewayProvider_ProcessServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := newGatewayProvider(&config.GatewayConfig{
		BaseURL:   srv.URL,
		SecretKey: "sk_test",
	}, false)
	p := newProviderPayment(t, domain.MethodGateway, 10000)

	_, err := g.Process(context.Background(), p, OrderInfo{OrderNo: "ORD-3"}, ProcessData{})
	require.NoError(t, err)

	assert.True(t, p.Gateway().IsSimulated)
	require.NotEmpty(t, p.ErrorLog())
	assert.Contains(t, p.ErrorLog()[0].Message, "503")
}

func TestGatewayProvider_ConfirmApproved(t *testing.T) {
	g := newGatewayProvider(&config.GatewayConfig{}, true)
	p := newProviderPayment(t, domain.MethodGateway, 10000)

	result, err := g.Confirm(context.Background(), p, ConfirmData{
		ExternalStatus: domain.ExternalApproved,
		TransactionID:  "txn_1",
		CardSummary:    "visa **** 4242",
		ProcessingFee:  290,
	}, actor.System())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, result.Status)
	assert.Equal(t, "txn_1", p.Gateway().TransactionID)
	assert.Equal(t, "visa **** 4242", p.Gateway().CardSummary)
	assert.Equal(t, int64(290), p.Gateway().ProcessingFee)
	assert.True(t, p.Gateway().WebhookReceived)
}

func TestGatewayProvider_ConfirmOutcomes(t *testing.T) {
	g := newGatewayProvider(&config.GatewayConfig{}, true)

	p := newProviderPayment(t, domain.MethodGateway, 10000)
	_, err := g.Confirm(context.Background(), p, ConfirmData{ExternalStatus: domain.ExternalDeclined}, actor.System())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, p.Status())
	assert.NotEmpty(t, p.ErrorLog())

	p = newProviderPayment(t, domain.MethodGateway, 10000)
	_, err = g.Confirm(context.Background(), p, ConfirmData{ExternalStatus: domain.ExternalVoided}, actor.System())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, p.Status())

	p = newProviderPayment(t, domain.MethodGateway, 10000)
	_, err = g.Confirm(context.Background(), p, ConfirmData{ExternalStatus: domain.ExternalPending}, actor.System())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, p.Status())

	// A second PENDING update leaves the payment in processing.
	_, err = g.Confirm(context.Background(), p, ConfirmData{ExternalStatus: domain.ExternalPending}, actor.System())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, p.Status())

	p = newProviderPayment(t, domain.MethodGateway, 10000)
	_, err = g.Confirm(context.Background(), p, ConfirmData{ExternalStatus: "WHATEVER"}, actor.System())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGatewayProvider_ConfirmByCustomerRejected(t *testing.T) {
	g := newGatewayProvider(&config.GatewayConfig{}, true)
	p := newProviderPayment(t, domain.MethodGateway, 10000)

	_, err := g.Confirm(context.Background(), p, ConfirmData{ExternalStatus: domain.ExternalApproved}, actor.Customer(uuid.New()))
	assert.ErrorIs(t, err, ErrStaffOnly)
	assert.Equal(t, domain.StatusPending, p.Status())
	assert.Empty(t, p.Gateway().TransactionID)
}

func TestGatewayProvider_ConfirmByStaffLeavesWebhookFlag(t *testing.T) {
	g := newGatewayProvider(&config.GatewayConfig{}, true)
	p := newProviderPayment(t, domain.MethodGateway, 10000)

	_, err := g.Confirm(context.Background(), p, ConfirmData{ExternalStatus: domain.ExternalApproved}, actor.Staff(uuid.New()))
	require.NoError(t, err)
	assert.False(t, p.Gateway().WebhookReceived)
}

func signWebhook(secret, timestamp string, data map[string]any) string {
	canonical, _ := json.Marshal(data)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGatewayProvider_VerifyWebhookSignature(t *testing.T) {
	g := newGatewayProvider(&config.GatewayConfig{WebhookSecret: "whsec_test"}, false)
	data := map[string]any{"reference": uuid.NewString(), "status": "APPROVED"}
	ts := "1756600000"

	require.NoError(t, g.VerifyWebhookSignature(data, ts, signWebhook("whsec_test", ts, data)))

	// Wrong secret.
	err := g.VerifyWebhookSignature(data, ts, signWebhook("whsec_other", ts, data))
	assert.ErrorIs(t, err, ErrInvalidWebhookSignature)

	// Tampered payload.
	tampered := map[string]any{"reference": data["reference"], "status": "DECLINED"}
	err = g.VerifyWebhookSignature(tampered, ts, signWebhook("whsec_test", ts, data))
	assert.ErrorIs(t, err, ErrInvalidWebhookSignature)

	// Tampered timestamp.
	err = g.VerifyWebhookSignature(data, "1756600001", signWebhook("whsec_test", ts, data))
	assert.ErrorIs(t, err, ErrInvalidWebhookSignature)
}

func TestGatewayProvider_VerifyWebhookSignatureNoSecret(t *testing.T) {
	data := map[string]any{"reference": uuid.NewString()}

	dev := newGatewayProvider(&config.GatewayConfig{}, true)
	assert.NoError(t, dev.VerifyWebhookSignature(data, "1", "whatever"))

	prod := newGatewayProvider(&config.GatewayConfig{}, false)
	assert.ErrorIs(t, prod.VerifyWebhookSignature(data, "1", "whatever"), ErrInvalidWebhookSignature)
}
