package deliverylog

import (
	"context"

	"github.com/ignite/lead-relay/internal/domain"
)

// Filter selects delivery records for query and export.
// Zero values mean "no constraint".
type Filter struct {
	// Search matches case-insensitively against client name, product, and
	// recipient name.
	Search string
	// Status restricts to records whose latest revision has this status.
	Status domain.DeliveryStatus
	// Limit/Offset paginate the result. Limit <= 0 means no limit.
	Limit  int
	Offset int
}

// Repository defines the persistence contract for delivery records.
// Implementations must be safe for concurrent use and must preserve
// first-append order for equal-filter queries.
type Repository interface {
	// Append inserts the first revision of a record. Returns ErrDuplicateID
	// if the record id already exists.
	Append(ctx context.Context, rec domain.DeliveryRecord) error

	// Supersede inserts the next revision of an existing record. Returns
	// ErrNotFound if the id is unknown.
	Supersede(ctx context.Context, rec domain.DeliveryRecord) error

	// Get returns the latest revision of a record.
	Get(ctx context.Context, id string) (domain.DeliveryRecord, error)

	// Query returns the latest revision of records matching the filter, in
	// first-append order, plus the total match count before pagination.
	Query(ctx context.Context, f Filter) ([]domain.DeliveryRecord, int, error)

	// Revisions returns every persisted revision of a record in append
	// order. Used for audit inspection.
	Revisions(ctx context.Context, id string) ([]domain.DeliveryRecord, error)
}
