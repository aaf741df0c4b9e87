package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation indicates a lead payload that cannot be dispatched.
// Wrap with context: fmt.Errorf("%w: client_name is required", ErrValidation).
var ErrValidation = errors.New("invalid lead event")

// LeadEvent is the triggering business event from the CRM: a lead entered
// the "pending" state and a vendor must be notified. Immutable once received.
type LeadEvent struct {
	ID            string    `json:"id"`
	ReceivedAt    time.Time `json:"received_at"`
	ClientName    string    `json:"client_name"`
	ClientContact string    `json:"client_contact"`
	Product       string    `json:"product"`
	TaxID         string    `json:"tax_id,omitempty"`
}

// Validate checks the fields required before any dispatch may happen.
// Incomplete leads are rejected whole; a lead is never partially processed.
func (l LeadEvent) Validate() error {
	if l.ClientName == "" {
		return fmt.Errorf("%w: client_name is required", ErrValidation)
	}
	if l.ClientContact == "" {
		return fmt.Errorf("%w: client_contact is required", ErrValidation)
	}
	return nil
}

// LeadStatus is the derived lifecycle state of a lead. It is computed from
// the lead event, its delivery records, and explicit vendor signals; it is
// never stored as a source of truth.
type LeadStatus string

const (
	LeadWaitingContact LeadStatus = "waiting_contact"
	LeadInProgress     LeadStatus = "in_progress"
	LeadContacted      LeadStatus = "contacted"
)

// rank orders statuses for monotonicity checks. The lifecycle never
// regresses: waiting_contact -> in_progress -> contacted.
func (s LeadStatus) rank() int {
	switch s {
	case LeadInProgress:
		return 1
	case LeadContacted:
		return 2
	default:
		return 0
	}
}

// Before reports whether s precedes other in the lead lifecycle.
func (s LeadStatus) Before(other LeadStatus) bool {
	return s.rank() < other.rank()
}
