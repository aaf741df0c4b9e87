package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/lead-relay/internal/domain"
)

// ErrNotFound is returned for operations on an unknown recipient id.
// Callers (the config UI) must surface it; the registry never swallows it.
var ErrNotFound = errors.New("recipient not found")

// Registry is the in-memory recipient store. Insertion order is preserved
// across updates; Remove compacts the order without reshuffling survivors.
// Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Recipient
	now   func() time.Time
}

// New creates a registry seeded with the given recipients, in order.
// Seed entries without an id get one assigned.
func New(seed []domain.Recipient) *Registry {
	r := &Registry{
		byID: make(map[string]*domain.Recipient),
		now:  time.Now,
	}
	for _, rec := range seed {
		r.Add(rec)
	}
	return r
}

// UpdateFields holds the mutable recipient fields for partial updates.
// Nil pointers leave the field unchanged.
type UpdateFields struct {
	Name        *string `json:"name"`
	Destination *string `json:"destination"`
	Active      *bool   `json:"active"`
}

// Add registers a recipient and returns it with its assigned id.
func (r *Registry) Add(rec domain.Recipient) domain.Recipient {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	cp := rec
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return cp
}

// Update applies the non-nil fields to an existing recipient.
// Returns ErrNotFound for an unknown id, leaving the set unchanged.
func (r *Registry) Update(id string, u UpdateFields) (domain.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return domain.Recipient{}, ErrNotFound
	}
	if u.Name != nil {
		rec.Name = *u.Name
	}
	if u.Destination != nil {
		rec.Destination = *u.Destination
	}
	if u.Active != nil {
		rec.Active = *u.Active
	}
	return *rec, nil
}

// Remove deletes a recipient. Returns ErrNotFound for an unknown id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a single recipient by id.
func (r *Registry) Get(id string) (domain.Recipient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return domain.Recipient{}, ErrNotFound
	}
	return *rec, nil
}

// List returns all recipients in registration order.
func (r *Registry) List() []domain.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Recipient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// ListActive returns recipients with active=true, in registration order.
func (r *Registry) ListActive() []domain.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Recipient
	for _, id := range r.order {
		if rec := r.byID[id]; rec.Active {
			out = append(out, *rec)
		}
	}
	return out
}
