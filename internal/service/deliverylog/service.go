package deliverylog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/pkg/logger"
)

// Log is the delivery-log service. It enforces the append-only revision
// discipline on top of the repository.
type Log struct {
	repo Repository
}

// NewLog creates a delivery log backed by the given repository.
func NewLog(repo Repository) *Log {
	return &Log{repo: repo}
}

// Append persists the first revision of a new record.
func (l *Log) Append(ctx context.Context, rec domain.DeliveryRecord) error {
	rec.Revision = 1
	if err := l.repo.Append(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateID) {
			// Id collisions mean broken id generation upstream.
			logger.Error("delivery log id collision", "record_id", rec.ID, "lead_event_id", rec.LeadEventID)
		}
		return err
	}
	return nil
}

// Resolve transitions a pending record to its terminal status by appending a
// superseding revision. The transition happens exactly once; resolving an
// already-terminal record fails with ErrAlreadyResolved.
func (l *Log) Resolve(ctx context.Context, id string, status domain.DeliveryStatus, providerRef, errorReason string) (domain.DeliveryRecord, error) {
	if !status.IsTerminal() {
		return domain.DeliveryRecord{}, fmt.Errorf("resolve to non-terminal status %q", status)
	}

	cur, err := l.repo.Get(ctx, id)
	if err != nil {
		return domain.DeliveryRecord{}, err
	}
	if cur.Status.IsTerminal() {
		return domain.DeliveryRecord{}, ErrAlreadyResolved
	}

	next := cur
	next.Status = status
	next.ProviderReference = ""
	next.ErrorReason = ""
	next.Revision = cur.Revision + 1
	switch status {
	case domain.DeliverySuccess:
		next.ProviderReference = providerRef
	case domain.DeliveryFailed:
		next.ErrorReason = errorReason
	}

	if err := l.repo.Supersede(ctx, next); err != nil {
		return domain.DeliveryRecord{}, err
	}
	return next, nil
}

// Get returns the latest revision of a record.
func (l *Log) Get(ctx context.Context, id string) (domain.DeliveryRecord, error) {
	return l.repo.Get(ctx, id)
}

// Query returns matching records (latest revisions, first-append order) and
// the total match count.
func (l *Log) Query(ctx context.Context, f Filter) ([]domain.DeliveryRecord, int, error) {
	return l.repo.Query(ctx, f)
}

// Revisions returns a record's full audit trail.
func (l *Log) Revisions(ctx context.Context, id string) ([]domain.DeliveryRecord, error) {
	return l.repo.Revisions(ctx, id)
}

// Stats summarizes the log for the dashboard.
type Stats struct {
	TotalSent   int     `json:"total_sent"`
	TotalFailed int     `json:"total_failed"`
	Pending     int     `json:"pending"`
	SuccessRate float64 `json:"success_rate"`
}

// Stats computes delivery totals across the whole log.
func (l *Log) Stats(ctx context.Context) (Stats, error) {
	recs, _, err := l.repo.Query(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}

	var s Stats
	for _, r := range recs {
		switch r.Status {
		case domain.DeliverySuccess:
			s.TotalSent++
		case domain.DeliveryFailed:
			s.TotalFailed++
		case domain.DeliveryPending:
			s.Pending++
		}
	}
	if done := s.TotalSent + s.TotalFailed; done > 0 {
		s.SuccessRate = float64(s.TotalSent) / float64(done) * 100
	}
	return s, nil
}
