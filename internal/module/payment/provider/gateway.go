package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/config"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/metrics"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/notify"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// paymentLink is a checkout link issued by the card gateway.
type paymentLink struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// GatewayProvider settles card payments through an external checkout
// gateway. Link creation runs behind a circuit breaker; when the
// gateway is unconfigured, down or tripped, a simulated link is served
// instead and the payment is flagged as simulated end to end.
type GatewayProvider struct {
	cfg      *config.GatewayConfig
	devMode  bool
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[*paymentLink]
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewGatewayProvider creates a card-gateway settlement provider.
func NewGatewayProvider(cfg *config.GatewayConfig, devMode bool, notifier notify.Notifier, m *metrics.Metrics, logger *zap.Logger) *GatewayProvider {
	settings := gobreaker.Settings{
		Name:        "card-gateway",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &GatewayProvider{
		cfg:      cfg,
		devMode:  devMode,
		client:   &http.Client{Timeout: cfg.Timeout},
		breaker:  gobreaker.NewCircuitBreaker[*paymentLink](settings),
		notifier: notifier,
		metrics:  m,
		logger:   logger.Named("provider.gateway"),
	}
}

// Method returns the settlement method this strategy serves.
func (g *GatewayProvider) Method() domain.Method {
	return domain.MethodGateway
}

// Process creates a checkout link and moves the payment to processing.
// The real outcome is unknown until a webhook or a manual check
// arrives, so process never completes a payment.
func (g *GatewayProvider) Process(ctx context.Context, p *domain.Payment, ord OrderInfo, data ProcessData) (*ProcessResult, error) {
	details := p.Gateway()
	if details == nil {
		return nil, fmt.Errorf("%w: gateway details missing", ErrInvalidState)
	}

	link, simulated := g.createLink(ctx, p, ord, data)

	expiresAt := time.Now().Add(g.cfg.LinkTTL)
	details.LinkID = link.ID
	details.RedirectURL = link.RedirectURL
	details.LinkExpiresAt = &expiresAt
	details.IsSimulated = simulated

	if err := p.BeginProcessing(p.CreatedBy()); err != nil {
		return nil, err
	}

	return &ProcessResult{Instructions: map[string]any{
		"redirect_url":    link.RedirectURL,
		"link_expires_at": expiresAt,
		"is_simulated":    simulated,
	}}, nil
}

// createLink calls the live gateway through the breaker and falls back
// to a locally generated simulated link on any failure.
func (g *GatewayProvider) createLink(ctx context.Context, p *domain.Payment, ord OrderInfo, data ProcessData) (*paymentLink, bool) {
	if g.cfg.Simulated || g.cfg.BaseURL == "" || g.cfg.SecretKey == "" {
		return g.simulatedLink(p, "gateway not configured"), true
	}

	link, err := g.breaker.Execute(func() (*paymentLink, error) {
		return g.requestLink(ctx, p, ord, data)
	})
	if err != nil {
		p.AppendError(err.Error(), "gateway link creation")
		return g.simulatedLink(p, err.Error()), true
	}
	return link, false
}

func (g *GatewayProvider) requestLink(ctx context.Context, p *domain.Payment, ord OrderInfo, data ProcessData) (*paymentLink, error) {
	body, err := json.Marshal(map[string]any{
		"amount":      p.Amount(),
		"currency":    p.Currency(),
		"reference":   p.ID().String(),
		"description": "order " + ord.OrderNo,
		"payer_email": data.PayerEmail,
		"expires_in":  int(g.cfg.LinkTTL.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/payment-links", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build link request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrUnavailable, resp.StatusCode)
	}

	var link paymentLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("decode link response: %w", err)
	}
	if link.ID == "" || link.RedirectURL == "" {
		return nil, fmt.Errorf("%w: incomplete link response", ErrUnavailable)
	}
	return &link, nil
}

func (g *GatewayProvider) simulatedLink(p *domain.Payment, reason string) *paymentLink {
	g.metrics.GatewayFallbacks.Inc()
	g.logger.Warn("serving simulated payment link",
		zap.String("payment_id", p.ID().String()),
		zap.String("reason", reason),
	)

	id := "sim_" + uuid.NewString()
	return &paymentLink{
		ID:          id,
		RedirectURL: "/simulated-gateway/checkout/" + id,
	}
}

// Confirm applies a gateway outcome to the payment. APPROVED settles,
// DECLINED and ERROR fail, VOIDED cancels and PENDING moves a pending
// payment to processing. Outcomes arrive from verified webhooks (the
// system actor) or from a staff manual check; the paying customer
// cannot report one.
func (g *GatewayProvider) Confirm(ctx context.Context, p *domain.Payment, data ConfirmData, by actor.Actor) (*ConfirmResult, error) {
	if !by.IsStaff() {
		return nil, ErrStaffOnly
	}

	details := p.Gateway()
	if details == nil {
		return nil, fmt.Errorf("%w: gateway details missing", ErrInvalidState)
	}

	target := domain.MapExternalStatus(data.ExternalStatus)
	if target == "" {
		return nil, fmt.Errorf("%w: unknown gateway status %q", ErrInvalidState, data.ExternalStatus)
	}

	if data.TransactionID != "" {
		details.TransactionID = data.TransactionID
	}
	if data.CardSummary != "" {
		details.CardSummary = data.CardSummary
	}
	if data.ProcessingFee > 0 {
		details.ProcessingFee = data.ProcessingFee
	}
	if by.Kind == actor.KindSystem {
		details.WebhookReceived = true
	}

	switch target {
	case domain.StatusCompleted:
		if err := p.Complete(by); err != nil {
			return nil, err
		}
		g.notifier.Send(ctx, notify.EventPaymentCompleted, map[string]any{
			"payment_id":     p.ID().String(),
			"transaction_id": details.TransactionID,
			"amount":         formatCents(p.Amount(), p.Currency()),
			"is_simulated":   details.IsSimulated,
		})
	case domain.StatusFailed:
		if err := p.Fail(by, "gateway reported "+data.ExternalStatus, data.ExternalStatus); err != nil {
			return nil, err
		}
	case domain.StatusCancelled:
		if err := p.Cancel(by, "gateway reported "+data.ExternalStatus); err != nil {
			return nil, err
		}
	case domain.StatusProcessing:
		// An intermediate update. Already-processing payments stay put.
		if p.Status() == domain.StatusPending {
			if err := p.BeginProcessing(by); err != nil {
				return nil, err
			}
		}
	}

	return &ConfirmResult{Status: p.Status()}, nil
}

// Cancel aborts an unsettled gateway payment.
func (g *GatewayProvider) Cancel(_ context.Context, p *domain.Payment, reason string, by actor.Actor) error {
	return p.Cancel(by, reason)
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature over the
// webhook timestamp and the canonical JSON encoding of its data
// object. A missing secret is accepted only in development.
func (g *GatewayProvider) VerifyWebhookSignature(data map[string]any, timestamp, signature string) error {
	if g.cfg.WebhookSecret == "" {
		if g.devMode {
			g.logger.Warn("webhook secret not configured, skipping signature verification")
			return nil
		}
		return fmt.Errorf("%w: webhook secret not configured", ErrInvalidWebhookSignature)
	}

	canonical, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: unencodable payload", ErrInvalidWebhookSignature)
	}

	mac := hmac.New(sha256.New, []byte(g.cfg.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		g.metrics.WebhookSignatureFailures.Inc()
		return ErrInvalidWebhookSignature
	}
	return nil
}
