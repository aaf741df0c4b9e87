// Package deliverylog implements the append-only audit log of delivery
// records.
//
// The log exclusively owns the persisted record set and never mutates a past
// entry in place: a record's single pending -> success/failed transition is
// persisted as a superseding revision of the same record id. Queries return
// the latest revision of each record, in first-append order, so equal-filter
// queries are stable and repeatable.
//
// Repository implementations live in repository/postgres/ and
// repository/memory/.
package deliverylog
