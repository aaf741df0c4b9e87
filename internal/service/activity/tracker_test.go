package activity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/service/activity"
)

func lead(id, client string) domain.LeadEvent {
	return domain.LeadEvent{
		ID:            id,
		ReceivedAt:    time.Date(2024, 1, 15, 14, 35, 0, 0, time.UTC),
		ClientName:    client,
		ClientContact: "+5511987654321",
		Product:       "Sistema ERP",
	}
}

func successRecord(leadID string) domain.DeliveryRecord {
	return domain.DeliveryRecord{
		ID: "rec-" + leadID, LeadEventID: leadID,
		RecipientID: "v1", RecipientName: "Vendedor Principal",
		Status: domain.DeliverySuccess,
	}
}

func TestTracker_SuccessfulDeliveryStartsProgress(t *testing.T) {
	tr := activity.NewTracker()
	tr.Track(lead("l1", "João Silva"))

	status, err := tr.Status("l1")
	if err != nil || status != domain.LeadWaitingContact {
		t.Fatalf("initial status = %s, %v", status, err)
	}

	tr.RecordDelivery(successRecord("l1"))

	status, _ = tr.Status("l1")
	if status != domain.LeadInProgress {
		t.Errorf("status after success = %s, want in_progress", status)
	}
}

func TestTracker_FailedDeliveryDoesNotAdvance(t *testing.T) {
	tr := activity.NewTracker()
	tr.Track(lead("l1", "João Silva"))

	rec := successRecord("l1")
	rec.Status = domain.DeliveryFailed
	rec.ErrorReason = "invalid number"
	tr.RecordDelivery(rec)

	status, _ := tr.Status("l1")
	if status != domain.LeadWaitingContact {
		t.Errorf("status after failed delivery = %s, want waiting_contact", status)
	}
}

func TestTracker_ContactedRequiresExplicitResolve(t *testing.T) {
	tr := activity.NewTracker()
	tr.Track(lead("l1", "João Silva"))

	// Delivery success alone never yields contacted.
	tr.RecordDelivery(successRecord("l1"))
	status, _ := tr.Status("l1")
	if status == domain.LeadContacted {
		t.Fatal("delivery success must not mark a lead contacted")
	}

	status, err := tr.Resolve("l1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if status != domain.LeadContacted {
		t.Errorf("Resolve() status = %s", status)
	}
}

func TestTracker_ContactStartedSignal(t *testing.T) {
	tr := activity.NewTracker()
	tr.Track(lead("l1", "João Silva"))

	status, err := tr.ContactStarted("l1")
	if err != nil {
		t.Fatalf("ContactStarted() error = %v", err)
	}
	if status != domain.LeadInProgress {
		t.Errorf("status = %s, want in_progress", status)
	}
}

func TestTracker_NeverRegresses(t *testing.T) {
	tr := activity.NewTracker()
	tr.Track(lead("l1", "João Silva"))

	if _, err := tr.Resolve("l1"); err != nil {
		t.Fatal(err)
	}

	// Later signals and deliveries must not move the lead back.
	tr.RecordDelivery(successRecord("l1"))
	if _, err := tr.ContactStarted("l1"); err != nil {
		t.Fatal(err)
	}

	status, _ := tr.Status("l1")
	if status != domain.LeadContacted {
		t.Errorf("status regressed to %s", status)
	}
}

func TestTracker_SignalUnknownLead(t *testing.T) {
	tr := activity.NewTracker()

	if _, err := tr.ContactStarted("ghost"); !errors.Is(err, activity.ErrNotFound) {
		t.Errorf("ContactStarted() error = %v, want ErrNotFound", err)
	}
	if _, err := tr.Resolve("ghost"); !errors.Is(err, activity.ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestTracker_ActiveLeads(t *testing.T) {
	tr := activity.NewTracker()
	tr.Track(lead("l1", "João Silva"))
	tr.Track(lead("l2", "Ana Costa"))
	tr.Track(lead("l3", "Pedro Santos"))

	tr.RecordDelivery(successRecord("l2"))
	if _, err := tr.Resolve("l3"); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 1, 15, 14, 40, 0, 0, time.UTC)
	active := tr.ActiveLeads(now)
	if len(active) != 2 {
		t.Fatalf("ActiveLeads() = %d leads, want 2 (contacted excluded)", len(active))
	}
	if active[0].ID != "l1" || active[1].ID != "l2" {
		t.Errorf("ActiveLeads() order = [%s %s]", active[0].ID, active[1].ID)
	}
	if active[0].Status != domain.LeadWaitingContact || active[1].Status != domain.LeadInProgress {
		t.Errorf("ActiveLeads() statuses = [%s %s]", active[0].Status, active[1].Status)
	}
	if active[0].ElapsedTime != "5 min" {
		t.Errorf("ElapsedTime = %q, want %q", active[0].ElapsedTime, "5 min")
	}
	if active[1].VendorName != "Vendedor Principal" {
		t.Errorf("VendorName = %q", active[1].VendorName)
	}
}

func TestElapsedTime(t *testing.T) {
	base := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"five minutes", base.Add(5 * time.Minute), "5 min"},
		{"just under an hour", base.Add(59 * time.Minute), "59 min"},
		{"exactly an hour", base.Add(time.Hour), "1h 0min"},
		{"hour and five", base.Add(65 * time.Minute), "1h 5min"},
		{"two hours plus", base.Add(150 * time.Minute), "2h 30min"},
		{"clock skew clamps to zero", base.Add(-time.Minute), "0 min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := activity.ElapsedTime(base, tt.now); got != tt.want {
				t.Errorf("ElapsedTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTracker_PendingCount(t *testing.T) {
	tr := activity.NewTracker()
	tr.Track(lead("l1", "A"))
	tr.Track(lead("l2", "B"))
	tr.RecordDelivery(successRecord("l2"))

	if got := tr.PendingCount(); got != 1 {
		t.Errorf("PendingCount() = %d, want 1", got)
	}
}
