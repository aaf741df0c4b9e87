package deliverylog_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/repository/memory"
	"github.com/ignite/lead-relay/internal/service/deliverylog"
)

func pendingRecord(id, client, product string) domain.DeliveryRecord {
	return domain.DeliveryRecord{
		ID:            id,
		LeadEventID:   "lead-" + id,
		RecipientID:   "vendor-1",
		RecipientName: "Vendedor Principal",
		Destination:   "+5598984865648",
		ClientName:    client,
		Product:       product,
		Timestamp:     time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
		Status:        domain.DeliveryPending,
	}
}

func TestAppend_DuplicateID(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	if err := log.Append(ctx, pendingRecord("r1", "João Silva", "Sistema ERP")); err != nil {
		t.Fatalf("first Append() error = %v", err)
	}
	err := log.Append(ctx, pendingRecord("r1", "Maria Santos", "CRM Premium"))
	if !errors.Is(err, deliverylog.ErrDuplicateID) {
		t.Fatalf("second Append() error = %v, want ErrDuplicateID", err)
	}
}

func TestResolve_ExactlyOnce(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	if err := log.Append(ctx, pendingRecord("r1", "João Silva", "Sistema ERP")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := log.Resolve(ctx, "r1", domain.DeliverySuccess, "SM1234567890", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Status != domain.DeliverySuccess || got.ProviderReference != "SM1234567890" {
		t.Errorf("Resolve() record = %+v", got)
	}
	if got.Revision != 2 {
		t.Errorf("Resolve() revision = %d, want 2", got.Revision)
	}

	// A second transition must be refused.
	if _, err := log.Resolve(ctx, "r1", domain.DeliveryFailed, "", "late failure"); !errors.Is(err, deliverylog.ErrAlreadyResolved) {
		t.Fatalf("second Resolve() error = %v, want ErrAlreadyResolved", err)
	}

	// The audit trail keeps both revisions.
	revs, err := log.Revisions(ctx, "r1")
	if err != nil {
		t.Fatalf("Revisions() error = %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("Revisions() returned %d entries, want 2", len(revs))
	}
	if revs[0].Status != domain.DeliveryPending || revs[1].Status != domain.DeliverySuccess {
		t.Errorf("Revisions() statuses = [%s %s]", revs[0].Status, revs[1].Status)
	}
}

func TestResolve_FailedSetsErrorReason(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	if err := log.Append(ctx, pendingRecord("r1", "Pedro Costa", "Sistema Financeiro")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := log.Resolve(ctx, "r1", domain.DeliveryFailed, "", "Número inválido")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ErrorReason != "Número inválido" {
		t.Errorf("ErrorReason = %q", got.ErrorReason)
	}
	if got.ProviderReference != "" {
		t.Errorf("ProviderReference should be empty on failure, got %q", got.ProviderReference)
	}
}

func TestResolve_ConcurrentCallersResolveOnce(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	if err := log.Append(ctx, pendingRecord("r1", "João Silva", "Sistema ERP")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	var wg sync.WaitGroup
	var successes int64
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := log.Resolve(ctx, "r1", domain.DeliverySuccess, "SM1", "")
			switch {
			case err == nil:
				atomic.AddInt64(&successes, 1)
			case !errors.Is(err, deliverylog.ErrAlreadyResolved):
				t.Errorf("Resolve() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("concurrent Resolve() succeeded %d times, want exactly 1", successes)
	}
	revs, err := log.Revisions(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 2 {
		t.Errorf("Revisions() returned %d entries after concurrent resolves, want 2", len(revs))
	}
}

func TestResolve_UnknownID(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())

	_, err := log.Resolve(context.Background(), "missing", domain.DeliverySuccess, "ref", "")
	if !errors.Is(err, deliverylog.ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestQuery_FilterAndOrder(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	seed := []domain.DeliveryRecord{
		pendingRecord("r1", "João Silva", "Sistema ERP"),
		pendingRecord("r2", "Maria Santos", "CRM Premium"),
		pendingRecord("r3", "Pedro Costa", "Sistema Financeiro"),
	}
	for _, rec := range seed {
		if err := log.Append(ctx, rec); err != nil {
			t.Fatalf("Append(%s) error = %v", rec.ID, err)
		}
	}
	if _, err := log.Resolve(ctx, "r1", domain.DeliverySuccess, "SM1", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := log.Resolve(ctx, "r3", domain.DeliveryFailed, "", "Número inválido"); err != nil {
		t.Fatal(err)
	}

	t.Run("free text over client name", func(t *testing.T) {
		recs, total, err := log.Query(ctx, deliverylog.Filter{Search: "joão"})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if total != 1 || len(recs) != 1 || recs[0].ID != "r1" {
			t.Errorf("Query(joão) = %d records, total %d", len(recs), total)
		}
	})

	t.Run("free text over product", func(t *testing.T) {
		recs, _, err := log.Query(ctx, deliverylog.Filter{Search: "sistema"})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(recs) != 2 || recs[0].ID != "r1" || recs[1].ID != "r3" {
			t.Errorf("Query(sistema) ids = %v", ids(recs))
		}
	})

	t.Run("status equality", func(t *testing.T) {
		recs, _, err := log.Query(ctx, deliverylog.Filter{Status: domain.DeliveryFailed})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(recs) != 1 || recs[0].ID != "r3" {
			t.Errorf("Query(failed) ids = %v", ids(recs))
		}
	})

	t.Run("insertion order preserved", func(t *testing.T) {
		recs, _, err := log.Query(ctx, deliverylog.Filter{})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if got := ids(recs); !reflect.DeepEqual(got, []string{"r1", "r2", "r3"}) {
			t.Errorf("Query() order = %v", got)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		recs, total, err := log.Query(ctx, deliverylog.Filter{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if total != 3 || len(recs) != 1 || recs[0].ID != "r2" {
			t.Errorf("Query(limit 1 offset 1) = %v, total %d", ids(recs), total)
		}
	})
}

func TestQuery_Idempotent(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := pendingRecord(fmt.Sprintf("r%d", i), fmt.Sprintf("Cliente %d", i), "Produto")
		if err := log.Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	first, _, err := log.Query(ctx, deliverylog.Filter{Search: "cliente"})
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := log.Query(ctx, deliverylog.Filter{Search: "cliente"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Query() with no intervening append returned different sequences")
	}
}

func TestStats(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	for i, status := range []domain.DeliveryStatus{
		domain.DeliverySuccess, domain.DeliverySuccess, domain.DeliverySuccess, domain.DeliveryFailed,
	} {
		rec := pendingRecord(fmt.Sprintf("r%d", i), "Cliente", "Produto")
		if err := log.Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if _, err := log.Resolve(ctx, rec.ID, status, "ref", "erro"); err != nil {
			t.Fatal(err)
		}
	}

	s, err := log.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.TotalSent != 3 || s.TotalFailed != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.SuccessRate != 75.0 {
		t.Errorf("SuccessRate = %v, want 75", s.SuccessRate)
	}
}

func TestAppend_ConcurrentWriters(t *testing.T) {
	log := deliverylog.NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := pendingRecord(fmt.Sprintf("r%d", i), "Cliente", "Produto")
			if err := log.Append(ctx, rec); err != nil {
				t.Errorf("Append(r%d) error = %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	_, total, err := log.Query(ctx, deliverylog.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 50 {
		t.Errorf("total = %d, want 50", total)
	}
}

func ids(recs []domain.DeliveryRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
