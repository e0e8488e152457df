package notify

import (
	"context"

	"go.uber.org/zap"
)

// Event names emitted by the settlement subsystem.
const (
	EventTransferInstructions = "payment.transfer_instructions"
	EventProofSubmitted       = "payment.proof_submitted"
	EventPaymentCompleted     = "payment.completed"
	EventPaymentRejected      = "payment.rejected"
	EventCashReceipt          = "payment.cash_receipt"
)

// Notifier delivers outbound customer/staff notifications.
// Delivery is fire-and-forget: failures are logged, never surfaced to
// the settlement flow.
type Notifier interface {
	Send(ctx context.Context, event string, payload map[string]any)
}

// LogNotifier is the default Notifier. It records every notification in
// the structured log; a real delivery channel (email/SMS/WhatsApp) is an
// external collaborator behind the same interface.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

// Send logs the notification.
func (n *LogNotifier) Send(_ context.Context, event string, payload map[string]any) {
	n.logger.Info("notification dispatched",
		zap.String("event", event),
		zap.Any("payload", payload),
	)
}
