package domain

import "time"

// ActivityType classifies entries in the live activity feed.
type ActivityType string

const (
	ActivityNewLead          ActivityType = "new_lead"
	ActivityNotificationSent ActivityType = "notification_sent"
	ActivityVendorResponse   ActivityType = "vendor_response"
	ActivitySystemEvent      ActivityType = "system_event"
)

// ActivityEvent is one entry in the live monitor feed. System events cover
// observability-only occurrences (e.g. a dispatch with zero active
// recipients) that produce no delivery record.
type ActivityEvent struct {
	ID          string       `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	LeadID      string       `json:"lead_id,omitempty"`
	ClientName  string       `json:"client_name,omitempty"`
	VendorName  string       `json:"vendor_name,omitempty"`
}

// ActiveLead is the live-monitor projection of a lead awaiting resolution:
// its derived status plus a human-readable elapsed time.
type ActiveLead struct {
	ID          string     `json:"id"`
	ClientName  string     `json:"client_name"`
	Product     string     `json:"product"`
	ReceivedAt  time.Time  `json:"received_at"`
	Status      LeadStatus `json:"status"`
	VendorName  string     `json:"vendor_name,omitempty"`
	ElapsedTime string     `json:"elapsed_time"`
}
