package domain

// Status represents the status of a payment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// IsTerminal returns true if the status accepts no confirm/cancel.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled || s == StatusRefunded
}

// CanTransitionTo returns true if the status can transition to target.
// A payment never re-enters pending once left.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCompleted || target == StatusFailed || target == StatusCancelled
	case StatusProcessing:
		return target == StatusCompleted || target == StatusFailed || target == StatusCancelled
	case StatusCompleted:
		return target == StatusRefunded
	case StatusFailed, StatusCancelled, StatusRefunded:
		return false
	default:
		return false
	}
}

// Method represents a settlement channel.
type Method string

const (
	MethodGateway      Method = "gateway"
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
)

// IsValid returns true for a known settlement method.
func (m Method) IsValid() bool {
	return m == MethodGateway || m == MethodCash || m == MethodBankTransfer
}

// Timing indicates when a payment is expected relative to fulfillment.
type Timing string

const (
	TimingAdvance    Timing = "advance"
	TimingOnDelivery Timing = "on_delivery"
)

// IsValid returns true for a known timing.
func (t Timing) IsValid() bool {
	return t == TimingAdvance || t == TimingOnDelivery
}

// Type classifies how much of the order total a payment covers.
type Type string

const (
	TypeFull           Type = "full"
	TypePartial        Type = "partial"
	TypeAdvanceDeposit Type = "advance_deposit"
)

// IsValid returns true for a known payment type.
func (t Type) IsValid() bool {
	return t == TypeFull || t == TypePartial || t == TypeAdvanceDeposit
}

// gateway external status vocabulary, mapped onto Status by the gateway
// provider on confirmation.
const (
	ExternalApproved = "APPROVED"
	ExternalDeclined = "DECLINED"
	ExternalError    = "ERROR"
	ExternalVoided   = "VOIDED"
	ExternalPending  = "PENDING"
)

// MapExternalStatus translates the gateway vocabulary to a Status.
// Unknown values map to empty.
func MapExternalStatus(external string) Status {
	switch external {
	case ExternalApproved:
		return StatusCompleted
	case ExternalDeclined, ExternalError:
		return StatusFailed
	case ExternalVoided:
		return StatusCancelled
	case ExternalPending:
		return StatusProcessing
	default:
		return ""
	}
}
