package domain

import "time"

// Recipient is a configured notification target (a vendor's WhatsApp number).
// Uniqueness is by ID, not destination: two recipients may share a number,
// which is permitted but discouraged.
type Recipient struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
