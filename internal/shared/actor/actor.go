package actor

import (
	"github.com/google/uuid"
)

// Kind discriminates who performed an action.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindStaff    Kind = "staff"
	KindSystem   Kind = "system"
)

// Actor is a tagged reference to the party responsible for an action.
// The kind selects the collection the ID belongs to.
type Actor struct {
	Kind Kind      `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// System returns the system actor used for webhook-driven actions.
func System() Actor {
	return Actor{Kind: KindSystem}
}

// Customer returns a customer actor.
func Customer(id uuid.UUID) Actor {
	return Actor{Kind: KindCustomer, ID: id}
}

// Staff returns a staff actor.
func Staff(id uuid.UUID) Actor {
	return Actor{Kind: KindStaff, ID: id}
}

// IsStaff reports whether the actor is a staff member or the system.
func (a Actor) IsStaff() bool {
	return a.Kind == KindStaff || a.Kind == KindSystem
}

// IsCustomer reports whether the actor is a customer.
func (a Actor) IsCustomer() bool {
	return a.Kind == KindCustomer
}

// IsZero reports whether the actor is unset.
func (a Actor) IsZero() bool {
	return a.Kind == ""
}

// String implements fmt.Stringer for audit log entries.
func (a Actor) String() string {
	if a.Kind == KindSystem {
		return string(KindSystem)
	}
	return string(a.Kind) + ":" + a.ID.String()
}
