package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/lead-relay/internal/domain"
	"github.com/ignite/lead-relay/internal/pkg/httputil"
	"github.com/ignite/lead-relay/internal/service/deliverylog"
)

func logFilter(r *http.Request) deliverylog.Filter {
	q := r.URL.Query()
	f := deliverylog.Filter{
		Search: q.Get("search"),
		Status: domain.DeliveryStatus(q.Get("status")),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		f.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		f.Offset = v
	}
	return f
}

// GetLogs returns delivery records (latest revision each) matching the
// search/status filter, in first-append order.
func (h *Handlers) GetLogs(w http.ResponseWriter, r *http.Request) {
	records, total, err := h.log.Query(r.Context(), logFilter(r))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"records": records,
		"total":   total,
	})
}

// GetLogRecord returns the latest revision of one delivery record.
func (h *Handlers) GetLogRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.log.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, deliverylog.ErrNotFound) {
			httputil.NotFound(w, "delivery record not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, rec)
}

// GetLogRevisions returns the full audit trail of one delivery record.
func (h *Handlers) GetLogRevisions(w http.ResponseWriter, r *http.Request) {
	revs, err := h.log.Revisions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, deliverylog.ErrNotFound) {
			httputil.NotFound(w, "delivery record not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"revisions": revs})
}

// ExportLogs streams the filtered delivery log as a CSV download with the
// dashboard's column set.
func (h *Handlers) ExportLogs(w http.ResponseWriter, r *http.Request) {
	f := logFilter(r)
	f.Limit = 0 // export ignores pagination
	f.Offset = 0

	records, _, err := h.log.Query(r.Context(), f)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"Data/Hora", "Cliente", "Telefone", "Produto", "Vendedor", "Status", "Twilio SID", "Erro"})
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.Format("02/01/2006 15:04"),
			rec.ClientName,
			rec.ClientContact,
			rec.Product,
			rec.RecipientName,
			string(rec.Status),
			rec.ProviderReference,
			rec.ErrorReason,
		})
	}

	filename := "notificacoes_" + time.Now().Format("2006-01-02") + ".csv"
	httputil.CSV(w, filename, rows)
}

// GetStats returns the dashboard counters.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.log.Stats(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"total_sent":     stats.TotalSent,
		"total_failed":   stats.TotalFailed,
		"pending":        stats.Pending,
		"success_rate":   stats.SuccessRate,
		"pending_leads":  len(h.monitor.ActiveLeads(time.Now())),
		"active_vendors": len(h.registry.ListActive()),
	})
}
