package deliverylog

import "errors"

// Sentinel errors for the delivery log.
var (
	// ErrDuplicateID means an append reused an existing record id. Ids are
	// engine-generated and collision-free, so this indicates a bug and is
	// logged loud rather than retried.
	ErrDuplicateID = errors.New("delivery record id already exists")

	// ErrNotFound means the record id is unknown to the log.
	ErrNotFound = errors.New("delivery record not found")

	// ErrAlreadyResolved means the record already holds a terminal status;
	// the pending -> terminal transition happens exactly once.
	ErrAlreadyResolved = errors.New("delivery record already resolved")
)
