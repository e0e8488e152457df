package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	orderdomain "github.com/santiagoavs/expo2025-sub004/internal/module/order/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/provider"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/config"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test"

func signPayload(timestamp string, data map[string]any) string {
	canonical, _ := json.Marshal(data)
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookServer(t *testing.T) (*fixture, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newFixture(t)
	gateway := provider.NewGatewayProvider(
		&config.GatewayConfig{WebhookSecret: testWebhookSecret},
		false,
		nopNotifier{},
		metrics.New(prometheus.NewRegistry()),
		zap.NewNop(),
	)
	handler := NewWebhookHandler(f.processor, gateway, zap.NewNop())

	r := gin.New()
	handler.RegisterRoutes(r.Group("/webhooks"))
	return f, r
}

func postWebhook(r *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/gateway", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_ValidEvent(t *testing.T) {
	f, r := newWebhookServer(t)
	customerID := uuid.New()
	ord := f.addOrder(t, customerID, 10000, orderdomain.StatusApproved)

	out, err := f.processor.ProcessPayment(context.Background(), CreatePaymentInput{
		OrderID: ord.ID(),
		Method:  domain.MethodGateway,
	}, actor.Customer(customerID))
	require.NoError(t, err)

	data := map[string]any{
		"reference":      out.Payment.ID().String(),
		"status":         "APPROVED",
		"transaction_id": "txn_77",
	}
	w := postWebhook(r, map[string]any{
		"event_id":   "evt_ok",
		"event_type": "payment.approved",
		"timestamp":  "1756600000",
		"signature":  signPayload("1756600000", data),
		"data":       data,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed"`)

	p, err := f.repo.Get(context.Background(), out.Payment.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, p.Status())
	assert.Equal(t, "txn_77", p.Gateway().TransactionID)
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	f, r := newWebhookServer(t)
	customerID := uuid.New()
	ord := f.addOrder(t, customerID, 10000, orderdomain.StatusApproved)

	out, err := f.processor.ProcessPayment(context.Background(), CreatePaymentInput{
		OrderID: ord.ID(),
		Method:  domain.MethodGateway,
	}, actor.Customer(customerID))
	require.NoError(t, err)

	data := map[string]any{"reference": out.Payment.ID().String(), "status": "APPROVED"}
	w := postWebhook(r, map[string]any{
		"event_id":  "evt_bad",
		"timestamp": "1756600000",
		"signature": "deadbeef",
		"data":      data,
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	p, err := f.repo.Get(context.Background(), out.Payment.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, p.Status())
}

func TestWebhookHandler_ReplayedEvent(t *testing.T) {
	f, r := newWebhookServer(t)
	customerID := uuid.New()
	ord := f.addOrder(t, customerID, 10000, orderdomain.StatusApproved)

	out, err := f.processor.ProcessPayment(context.Background(), CreatePaymentInput{
		OrderID: ord.ID(),
		Method:  domain.MethodGateway,
	}, actor.Customer(customerID))
	require.NoError(t, err)

	data := map[string]any{"reference": out.Payment.ID().String(), "status": "APPROVED"}
	body := map[string]any{
		"event_id":  "evt_replay",
		"timestamp": "1756600000",
		"signature": signPayload("1756600000", data),
		"data":      data,
	}

	first := postWebhook(r, body)
	assert.Equal(t, http.StatusOK, first.Code)

	second := postWebhook(r, body)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "already_processed")
}

func TestWebhookHandler_UnknownPayment(t *testing.T) {
	_, r := newWebhookServer(t)

	data := map[string]any{"reference": uuid.NewString(), "status": "APPROVED"}
	w := postWebhook(r, map[string]any{
		"event_id":  "evt_unknown",
		"timestamp": "1756600000",
		"signature": signPayload("1756600000", data),
		"data":      data,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookHandler_MissingFields(t *testing.T) {
	_, r := newWebhookServer(t)

	w := postWebhook(r, map[string]any{"event_id": "evt_incomplete"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
