package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/pkg/logger"
)

// Monitor glues the tracker and the feed together and implements the
// dispatch engine's ActivitySink. Feed failures are logged and swallowed:
// observability must never break a dispatch.
type Monitor struct {
	tracker *Tracker
	feed    Feed
	now     func() time.Time
}

// NewMonitor creates a monitor over the given tracker and feed.
func NewMonitor(tracker *Tracker, feed Feed) *Monitor {
	return &Monitor{tracker: tracker, feed: feed, now: time.Now}
}

// Tracker exposes the underlying tracker for status queries.
func (m *Monitor) Tracker() *Tracker { return m.tracker }

// Recent returns the latest feed entries, newest first.
func (m *Monitor) Recent(ctx context.Context, n int) ([]domain.ActivityEvent, error) {
	return m.feed.Recent(ctx, n)
}

// ActiveLeads returns leads awaiting resolution with display-ready state.
func (m *Monitor) ActiveLeads(now time.Time) []domain.ActiveLead {
	return m.tracker.ActiveLeads(now)
}

// LeadReceived registers the lead and feeds a new_lead event.
func (m *Monitor) LeadReceived(lead domain.LeadEvent) {
	m.tracker.Track(lead)
	m.record(domain.ActivityEvent{
		Type:        domain.ActivityNewLead,
		Title:       "Novo Lead Recebido",
		Description: fmt.Sprintf("%s interessado em %s", lead.ClientName, lead.Product),
		LeadID:      lead.ID,
		ClientName:  lead.ClientName,
	})
}

// DeliveryResolved folds a terminal delivery record into lead state and
// feeds the matching event.
func (m *Monitor) DeliveryResolved(rec domain.DeliveryRecord) {
	m.tracker.RecordDelivery(rec)

	switch rec.Status {
	case domain.DeliverySuccess:
		m.record(domain.ActivityEvent{
			Type:        domain.ActivityNotificationSent,
			Title:       "Notificação Enviada",
			Description: fmt.Sprintf("WhatsApp enviado para %s", rec.RecipientName),
			LeadID:      rec.LeadEventID,
			ClientName:  rec.ClientName,
			VendorName:  rec.RecipientName,
		})
	case domain.DeliveryFailed:
		m.record(domain.ActivityEvent{
			Type:        domain.ActivitySystemEvent,
			Title:       "Falha no Envio",
			Description: fmt.Sprintf("Envio para %s falhou: %s", rec.RecipientName, rec.ErrorReason),
			LeadID:      rec.LeadEventID,
			ClientName:  rec.ClientName,
			VendorName:  rec.RecipientName,
		})
	}
}

// SystemEvent feeds an observability-only event.
func (m *Monitor) SystemEvent(title, description string) {
	m.record(domain.ActivityEvent{
		Type:        domain.ActivitySystemEvent,
		Title:       title,
		Description: description,
	})
}

// ContactStarted applies the explicit signal and feeds a vendor_response
// event. Returns the resulting status.
func (m *Monitor) ContactStarted(leadID string) (domain.LeadStatus, error) {
	status, err := m.tracker.ContactStarted(leadID)
	if err != nil {
		return "", err
	}
	m.record(domain.ActivityEvent{
		Type:        domain.ActivityVendorResponse,
		Title:       "Vendedor Respondeu",
		Description: "Atendimento iniciado pelo vendedor",
		LeadID:      leadID,
	})
	return status, nil
}

// Resolve applies the explicit "client contacted" signal.
func (m *Monitor) Resolve(leadID string) (domain.LeadStatus, error) {
	status, err := m.tracker.Resolve(leadID)
	if err != nil {
		return "", err
	}
	m.record(domain.ActivityEvent{
		Type:        domain.ActivityVendorResponse,
		Title:       "Contato Realizado",
		Description: "Cliente contatado com sucesso",
		LeadID:      leadID,
	})
	return status, nil
}

func (m *Monitor) record(ev domain.ActivityEvent) {
	ev.ID = uuid.New().String()
	ev.Timestamp = m.now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.feed.Record(ctx, ev); err != nil {
		logger.Warn("activity feed record failed", "type", string(ev.Type), "error", err.Error())
	}
}
