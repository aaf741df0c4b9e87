package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/service/deliverylog"
)

// DeliveryRepo implements deliverylog.Repository against PostgreSQL.
//
// The lead_relay_delivery_records table is append-only: every revision of a
// record is a separate row and the (id, revision) pair is unique. Queries
// resolve the latest revision per id and order by each record's first-row
// sequence, which preserves first-append order.
type DeliveryRepo struct{ db *sql.DB }

// NewDeliveryRepo creates a Postgres-backed delivery repository.
func NewDeliveryRepo(db *sql.DB) *DeliveryRepo { return &DeliveryRepo{db: db} }

// Schema is the DDL for the delivery record table.
const Schema = `
CREATE TABLE IF NOT EXISTS lead_relay_delivery_records (
	seq                BIGSERIAL PRIMARY KEY,
	id                 TEXT        NOT NULL,
	revision           INT         NOT NULL,
	lead_event_id      TEXT        NOT NULL,
	recipient_id       TEXT        NOT NULL,
	recipient_name     TEXT        NOT NULL DEFAULT '',
	destination        TEXT        NOT NULL DEFAULT '',
	client_name        TEXT        NOT NULL DEFAULT '',
	client_contact     TEXT        NOT NULL DEFAULT '',
	product            TEXT        NOT NULL DEFAULT '',
	status             TEXT        NOT NULL,
	provider_reference TEXT        NOT NULL DEFAULT '',
	error_reason       TEXT        NOT NULL DEFAULT '',
	ts                 TIMESTAMPTZ NOT NULL,
	UNIQUE (id, revision)
);
CREATE INDEX IF NOT EXISTS idx_lead_relay_delivery_lead ON lead_relay_delivery_records (lead_event_id);
`

const insertSQL = `
	INSERT INTO lead_relay_delivery_records
		(id, revision, lead_event_id, recipient_id, recipient_name, destination,
		 client_name, client_contact, product, status, provider_reference, error_reason, ts)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func (r *DeliveryRepo) Append(ctx context.Context, rec domain.DeliveryRecord) error {
	_, err := r.db.ExecContext(ctx, insertSQL,
		rec.ID, rec.Revision, rec.LeadEventID, rec.RecipientID, rec.RecipientName, rec.Destination,
		rec.ClientName, rec.ClientContact, rec.Product, string(rec.Status), rec.ProviderReference, rec.ErrorReason, rec.Timestamp,
	)
	if isUniqueViolation(err) {
		return deliverylog.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("append delivery record: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) Supersede(ctx context.Context, rec domain.DeliveryRecord) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM lead_relay_delivery_records WHERE id = $1)`, rec.ID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check delivery record: %w", err)
	}
	if !exists {
		return deliverylog.ErrNotFound
	}

	_, err = r.db.ExecContext(ctx, insertSQL,
		rec.ID, rec.Revision, rec.LeadEventID, rec.RecipientID, rec.RecipientName, rec.Destination,
		rec.ClientName, rec.ClientContact, rec.Product, string(rec.Status), rec.ProviderReference, rec.ErrorReason, rec.Timestamp,
	)
	if isUniqueViolation(err) {
		// A concurrent resolver already wrote this revision.
		return deliverylog.ErrAlreadyResolved
	}
	if err != nil {
		return fmt.Errorf("supersede delivery record: %w", err)
	}
	return nil
}

const selectCols = `r.id, r.revision, r.lead_event_id, r.recipient_id, r.recipient_name, r.destination,
	       r.client_name, r.client_contact, r.product, r.status, r.provider_reference, r.error_reason, r.ts`

func (r *DeliveryRepo) Get(ctx context.Context, id string) (domain.DeliveryRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+selectCols+`
		FROM lead_relay_delivery_records r
		WHERE r.id = $1
		ORDER BY r.revision DESC
		LIMIT 1
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return domain.DeliveryRecord{}, deliverylog.ErrNotFound
	}
	if err != nil {
		return domain.DeliveryRecord{}, fmt.Errorf("get delivery record: %w", err)
	}
	return rec, nil
}

func (r *DeliveryRepo) Query(ctx context.Context, f deliverylog.Filter) ([]domain.DeliveryRecord, int, error) {
	where := "1=1"
	args := []interface{}{}
	idx := 1

	if f.Search != "" {
		where += fmt.Sprintf(" AND (r.client_name ILIKE $%d OR r.product ILIKE $%d OR r.recipient_name ILIKE $%d)", idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND r.status = $%d", idx)
		args = append(args, string(f.Status))
		idx++
	}

	// Latest revision per id, ordered by each record's first-row sequence.
	base := `
		FROM lead_relay_delivery_records r
		JOIN (
			SELECT id, MAX(revision) AS revision, MIN(seq) AS first_seq
			FROM lead_relay_delivery_records
			GROUP BY id
		) latest ON latest.id = r.id AND latest.revision = r.revision
		WHERE ` + where

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count delivery records: %w", err)
	}

	q := "SELECT " + selectCols + " " + base + " ORDER BY latest.first_seq"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, f.Limit)
		idx++
	}
	if f.Offset > 0 {
		q += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query delivery records: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan delivery record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate delivery records: %w", err)
	}
	return out, total, nil
}

func (r *DeliveryRepo) Revisions(ctx context.Context, id string) ([]domain.DeliveryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectCols+`
		FROM lead_relay_delivery_records r
		WHERE r.id = $1
		ORDER BY r.revision
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	if len(out) == 0 {
		return nil, deliverylog.ErrNotFound
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (domain.DeliveryRecord, error) {
	var rec domain.DeliveryRecord
	var status string
	err := s.Scan(
		&rec.ID, &rec.Revision, &rec.LeadEventID, &rec.RecipientID, &rec.RecipientName, &rec.Destination,
		&rec.ClientName, &rec.ClientContact, &rec.Product, &status, &rec.ProviderReference, &rec.ErrorReason, &rec.Timestamp,
	)
	rec.Status = domain.DeliveryStatus(status)
	return rec, err
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
