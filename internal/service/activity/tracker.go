// Package activity derives live lead state for the monitor: the
// waiting_contact -> in_progress -> contacted lifecycle, elapsed-time
// display, and the recent-activity feed.
package activity

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/lead-relay/internal/domain"
)

// ErrNotFound is returned for signals about a lead the tracker never saw.
var ErrNotFound = errors.New("lead not found")

type leadState struct {
	lead       domain.LeadEvent
	status     domain.LeadStatus
	vendorName string
}

// Tracker owns per-lead lifecycle state. Transitions are monotonic: once a
// lead reaches contacted nothing moves it back. Safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	leads map[string]*leadState
	order []string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{leads: make(map[string]*leadState)}
}

// Track registers a lead in waiting_contact state. Re-tracking a known lead
// is a no-op; its state is preserved.
func (t *Tracker) Track(lead domain.LeadEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.leads[lead.ID]; ok {
		return
	}
	t.leads[lead.ID] = &leadState{lead: lead, status: domain.LeadWaitingContact}
	t.order = append(t.order, lead.ID)
}

// RecordDelivery feeds a resolved delivery record into the lifecycle.
// A successful delivery moves the lead to in_progress: the vendor has been
// notified. It does not mark the lead contacted; only the explicit resolved
// signal does, since notification is not action.
func (t *Tracker) RecordDelivery(rec domain.DeliveryRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.leads[rec.LeadEventID]
	if !ok {
		return
	}
	if rec.Status == domain.DeliverySuccess {
		if st.vendorName == "" {
			st.vendorName = rec.RecipientName
		}
		advance(st, domain.LeadInProgress)
	}
}

// ContactStarted is the explicit "vendor picked this up" signal.
func (t *Tracker) ContactStarted(leadID string) (domain.LeadStatus, error) {
	return t.signal(leadID, domain.LeadInProgress)
}

// Resolve is the explicit "client was contacted" signal, the only way a
// lead reaches contacted.
func (t *Tracker) Resolve(leadID string) (domain.LeadStatus, error) {
	return t.signal(leadID, domain.LeadContacted)
}

func (t *Tracker) signal(leadID string, target domain.LeadStatus) (domain.LeadStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.leads[leadID]
	if !ok {
		return "", ErrNotFound
	}
	advance(st, target)
	return st.status, nil
}

// advance moves the state forward only; regressions are ignored.
func advance(st *leadState, target domain.LeadStatus) {
	if st.status.Before(target) {
		st.status = target
	}
}

// Status returns a lead's current derived status.
func (t *Tracker) Status(leadID string) (domain.LeadStatus, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.leads[leadID]
	if !ok {
		return "", ErrNotFound
	}
	return st.status, nil
}

// ActiveLeads returns leads not yet contacted, in arrival order, with
// elapsed time computed against the caller-supplied now.
func (t *Tracker) ActiveLeads(now time.Time) []domain.ActiveLead {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []domain.ActiveLead
	for _, id := range t.order {
		st := t.leads[id]
		if st.status == domain.LeadContacted {
			continue
		}
		out = append(out, domain.ActiveLead{
			ID:          st.lead.ID,
			ClientName:  st.lead.ClientName,
			Product:     st.lead.Product,
			ReceivedAt:  st.lead.ReceivedAt,
			Status:      st.status,
			VendorName:  st.vendorName,
			ElapsedTime: ElapsedTime(st.lead.ReceivedAt, now),
		})
	}
	return out
}

// PendingCount returns how many leads still wait for first contact.
func (t *Tracker) PendingCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, st := range t.leads {
		if st.status == domain.LeadWaitingContact {
			n++
		}
	}
	return n
}

// ElapsedTime formats now - receivedAt for display: minutes below an hour
// ("5 min"), hours plus minutes above ("1h 5min"). Pure function of its
// arguments; callers supply now so tests stay deterministic.
func ElapsedTime(receivedAt, now time.Time) string {
	mins := int(now.Sub(receivedAt).Minutes())
	if mins < 0 {
		mins = 0
	}
	if mins < 60 {
		return fmt.Sprintf("%d min", mins)
	}
	return fmt.Sprintf("%dh %dmin", mins/60, mins%60)
}
