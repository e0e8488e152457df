package domain

// Status represents the status of an order.
type Status string

const (
	StatusPendingApproval  Status = "pending_approval"
	StatusQuoted           Status = "quoted"
	StatusApproved         Status = "approved"
	StatusInProduction     Status = "in_production"
	StatusReadyForDelivery Status = "ready_for_delivery"
	StatusDelivered        Status = "delivered"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// transitions is the order status machine.
var transitions = map[Status][]Status{
	StatusPendingApproval:  {StatusQuoted, StatusApproved, StatusCancelled},
	StatusQuoted:           {StatusApproved, StatusCancelled},
	StatusApproved:         {StatusInProduction, StatusCancelled},
	StatusInProduction:     {StatusReadyForDelivery, StatusCancelled},
	StatusReadyForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:        {StatusCompleted},
	StatusCompleted:        {},
	StatusCancelled:        {},
}

// CanTransitionTo returns true if the status can transition to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses with no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// payableStatuses are the statuses in which a new payment may be taken.
// Wider than "approved" on purpose: customers may pay ahead of full
// confirmation or on late delivery readiness.
var payableStatuses = map[Status]bool{
	StatusPendingApproval:  true,
	StatusQuoted:           true,
	StatusApproved:         true,
	StatusReadyForDelivery: true,
}

// IsPayable returns true if a payment may be initiated in this status.
func (s Status) IsPayable() bool {
	return payableStatuses[s]
}

// SettlementStatus is the derived payment status of an order as a whole.
type SettlementStatus string

const (
	SettlementPending    SettlementStatus = "pending"
	SettlementProcessing SettlementStatus = "processing"
	SettlementCompleted  SettlementStatus = "completed"
)
