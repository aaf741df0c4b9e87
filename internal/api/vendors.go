package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/pkg/httputil"
	"github.com/ignite/lead-relay/internal/service/registry"
)

// ListVendors returns every registered vendor in registration order.
func (h *Handlers) ListVendors(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{"vendors": h.registry.List()})
}

// CreateVendor registers a new notification target.
func (h *Handlers) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Destination string `json:"destination"`
		Active      *bool  `json:"active"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Destination == "" {
		httputil.BadRequest(w, "name and destination are required")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	rec := h.registry.Add(domain.Recipient{
		Name:        req.Name,
		Destination: req.Destination,
		Active:      active,
	})
	httputil.Created(w, rec)
}

// UpdateVendor applies a partial update; absent fields keep their value.
func (h *Handlers) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		Destination *string `json:"destination"`
		Active      *bool   `json:"active"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}

	rec, err := h.registry.Update(chi.URLParam(r, "id"), registry.UpdateFields{
		Name:        req.Name,
		Destination: req.Destination,
		Active:      req.Active,
	})
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			httputil.NotFound(w, "vendor not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, rec)
}

// DeleteVendor removes a vendor from the registry. Past delivery records
// keep its snapshotted name and number.
func (h *Handlers) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Remove(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			httputil.NotFound(w, "vendor not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
