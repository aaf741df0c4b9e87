package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/lead-relay/internal/pkg/httputil"
	"github.com/ignite/lead-relay/internal/service/activity"
)

// GetActivities returns the recent activity feed, newest first.
func (h *Handlers) GetActivities(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	events, err := h.monitor.Recent(r.Context(), limit)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"activities": events})
}

// GetActiveLeads returns non-contacted leads in arrival order, with
// derived status and elapsed time.
func (h *Handlers) GetActiveLeads(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{"leads": h.monitor.ActiveLeads(time.Now())})
}

// ContactStarted records that a vendor began working the lead.
func (h *Handlers) ContactStarted(w http.ResponseWriter, r *http.Request) {
	status, err := h.monitor.ContactStarted(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, activity.ErrNotFound) {
			httputil.NotFound(w, "lead not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"status": status})
}

// ResolveLead records that the client was contacted, closing the lead.
func (h *Handlers) ResolveLead(w http.ResponseWriter, r *http.Request) {
	status, err := h.monitor.Resolve(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, activity.ErrNotFound) {
			httputil.NotFound(w, "lead not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"status": status})
}

// GetLeadStatus returns the derived lifecycle status of one lead.
func (h *Handlers) GetLeadStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.monitor.Tracker().Status(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, activity.ErrNotFound) {
			httputil.NotFound(w, "lead not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"status": status})
}

// GetTemplate returns the current notification template text.
func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{"template": h.templates.Get()})
}

// UpdateTemplate replaces the notification template. The text must parse;
// unknown placeholders are allowed and render with the fallback value.
func (h *Handlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Template == "" {
		httputil.BadRequest(w, "template is required")
		return
	}
	if err := h.renderer.Parse(req.Template); err != nil {
		httputil.BadRequest(w, "template does not parse: "+err.Error())
		return
	}

	h.templates.Set(req.Template)
	httputil.OK(w, map[string]any{"template": req.Template})
}
