package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/pkg/httputil"
)

// leadPayload is the CRM webhook body. Field names follow the CRM's
// Portuguese vocabulary.
type leadPayload struct {
	ID           string `json:"id"`
	ClienteNome  string `json:"cliente_nome"`
	ClienteNum   string `json:"cliente_numero"`
	Produto      string `json:"produto"`
	CNPJ         string `json:"cnpj"`
	ReceivedAt   string `json:"received_at"`
	VendorID     string `json:"vendor_id"`     // test-notification only
	VendorName   string `json:"vendor_name"`   // test-notification only
	VendorNumber string `json:"vendor_numero"` // test-notification only
}

func (p leadPayload) toLead() domain.LeadEvent {
	lead := domain.LeadEvent{
		ID:            p.ID,
		ClientName:    p.ClienteNome,
		ClientContact: p.ClienteNum,
		Product:       p.Produto,
		TaxID:         p.CNPJ,
	}
	if t, err := time.Parse(time.RFC3339, p.ReceivedAt); err == nil {
		lead.ReceivedAt = t
	}
	return lead
}

// ReceiveWebhook ingests a pending-lead event from the CRM and fans a
// notification out to every active vendor.
func (h *Handlers) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	var payload leadPayload
	if !httputil.Decode(w, r, &payload) {
		return
	}

	records, err := h.engine.Dispatch(r.Context(), payload.toLead())
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			httputil.BadRequest(w, err.Error())
			return
		}
		log.Printf("ERROR: webhook dispatch failed: %v", err)
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{
		"dispatched": len(records),
		"records":    records,
	})
}

// TestNotification dispatches a sample lead, either to every active vendor
// or to a single override target, and returns per-recipient results so the
// operator can see the provider SID or failure reason.
func (h *Handlers) TestNotification(w http.ResponseWriter, r *http.Request) {
	var payload leadPayload
	if !httputil.Decode(w, r, &payload) {
		return
	}
	lead := payload.toLead()

	var (
		records []domain.DeliveryRecord
		err     error
	)
	switch {
	case payload.VendorID != "":
		rcpt, gerr := h.registry.Get(payload.VendorID)
		if gerr != nil {
			httputil.NotFound(w, "vendor not found")
			return
		}
		records, err = h.engine.DispatchTo(r.Context(), lead, rcpt)
	case payload.VendorNumber != "":
		records, err = h.engine.DispatchTo(r.Context(), lead, domain.Recipient{
			Name:        payload.VendorName,
			Destination: payload.VendorNumber,
			Active:      true,
		})
	default:
		records, err = h.engine.Dispatch(r.Context(), lead)
	}
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			httputil.BadRequest(w, err.Error())
			return
		}
		log.Printf("ERROR: test notification failed: %v", err)
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{
		"dispatched": len(records),
		"records":    records,
	})
}
