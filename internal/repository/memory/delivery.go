// Package memory provides in-memory repository implementations. They back
// unit tests and single-instance deployments without a DATABASE_URL.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/service/deliverylog"
)

// DeliveryRepo implements deliverylog.Repository with in-process state.
// All revisions are kept for audit; queries see the latest revision per id
// in first-append order.
type DeliveryRepo struct {
	mu        sync.RWMutex
	order     []string                         // ids in first-append order
	current   map[string]domain.DeliveryRecord // latest revision per id
	revisions []domain.DeliveryRecord          // every revision, append order
}

// NewDeliveryRepo creates an empty in-memory delivery repository.
func NewDeliveryRepo() *DeliveryRepo {
	return &DeliveryRepo{current: make(map[string]domain.DeliveryRecord)}
}

func (r *DeliveryRepo) Append(_ context.Context, rec domain.DeliveryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.current[rec.ID]; exists {
		return deliverylog.ErrDuplicateID
	}
	r.current[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	r.revisions = append(r.revisions, rec)
	return nil
}

func (r *DeliveryRepo) Supersede(_ context.Context, rec domain.DeliveryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.current[rec.ID]
	if !exists {
		return deliverylog.ErrNotFound
	}
	if cur.Status.IsTerminal() {
		return deliverylog.ErrAlreadyResolved
	}
	r.current[rec.ID] = rec
	r.revisions = append(r.revisions, rec)
	return nil
}

func (r *DeliveryRepo) Get(_ context.Context, id string) (domain.DeliveryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.current[id]
	if !ok {
		return domain.DeliveryRecord{}, deliverylog.ErrNotFound
	}
	return rec, nil
}

func (r *DeliveryRepo) Query(_ context.Context, f deliverylog.Filter) ([]domain.DeliveryRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.DeliveryRecord
	for _, id := range r.order {
		rec := r.current[id]
		if !matches(rec, f) {
			continue
		}
		matched = append(matched, rec)
	}

	total := len(matched)
	if f.Offset >= total {
		return nil, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *DeliveryRepo) Revisions(_ context.Context, id string) ([]domain.DeliveryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.DeliveryRecord
	for _, rec := range r.revisions {
		if rec.ID == id {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, deliverylog.ErrNotFound
	}
	return out, nil
}

func matches(rec domain.DeliveryRecord, f deliverylog.Filter) bool {
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(rec.ClientName), q) &&
			!strings.Contains(strings.ToLower(rec.Product), q) &&
			!strings.Contains(strings.ToLower(rec.RecipientName), q) {
			return false
		}
	}
	return true
}
