package api

import (
	"net/http"
	"time"

	"github.com/ignite/lead-relay/internal/pkg/httputil"
	"github.com/ignite/lead-relay/internal/service/activity"
	"github.com/ignite/lead-relay/internal/service/deliverylog"
	"github.com/ignite/lead-relay/internal/service/dispatch"
	"github.com/ignite/lead-relay/internal/service/registry"
	"github.com/ignite/lead-relay/internal/template"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	engine    *dispatch.Engine
	log       *deliverylog.Log
	registry  *registry.Registry
	templates *template.Store
	renderer  *template.Renderer
	monitor   *activity.Monitor
}

// NewHandlers creates a Handlers instance wired to the dispatch pipeline.
func NewHandlers(engine *dispatch.Engine, log *deliverylog.Log, reg *registry.Registry,
	templates *template.Store, renderer *template.Renderer, monitor *activity.Monitor) *Handlers {

	return &Handlers{
		engine:    engine,
		log:       log,
		registry:  reg,
		templates: templates,
		renderer:  renderer,
		monitor:   monitor,
	}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
