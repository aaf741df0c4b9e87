package domain

import "time"

// DeliveryStatus is the lifecycle of a single send attempt.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
)

// IsTerminal reports whether the status permits no further transition.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliverySuccess || s == DeliveryFailed
}

// DeliveryRecord is the audit entry for one recipient's send attempt.
// A record is created once per (lead event, recipient) attempt and permits
// exactly one transition: pending -> success or pending -> failed. The
// transition is persisted as a new revision of the same record id, never an
// in-place overwrite.
//
// ProviderReference is set only on success; ErrorReason only on failure.
// Client/product/recipient-name fields are denormalized onto the record so
// the delivery log can answer free-text queries without joins.
type DeliveryRecord struct {
	ID                string         `json:"id" db:"id"`
	LeadEventID       string         `json:"lead_event_id" db:"lead_event_id"`
	RecipientID       string         `json:"recipient_id" db:"recipient_id"`
	RecipientName     string         `json:"recipient_name" db:"recipient_name"`
	Destination       string         `json:"destination" db:"destination"`
	ClientName        string         `json:"client_name" db:"client_name"`
	ClientContact     string         `json:"client_contact" db:"client_contact"`
	Product           string         `json:"product" db:"product"`
	Timestamp         time.Time      `json:"timestamp" db:"timestamp"`
	Status            DeliveryStatus `json:"status" db:"status"`
	ProviderReference string         `json:"provider_reference,omitempty" db:"provider_reference"`
	ErrorReason       string         `json:"error_reason,omitempty" db:"error_reason"`
	Revision          int            `json:"revision" db:"revision"`
}
