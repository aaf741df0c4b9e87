package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// CRM lead ingestion
		r.Post("/webhook/kommo", h.ReceiveWebhook)
		r.Post("/test-notification", h.TestNotification)

		// Delivery log
		r.Get("/logs", h.GetLogs)
		r.Get("/logs/export", h.ExportLogs)
		r.Get("/logs/{id}", h.GetLogRecord)
		r.Get("/logs/{id}/revisions", h.GetLogRevisions)

		// Vendor registry
		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", h.ListVendors)
			r.Post("/", h.CreateVendor)
			r.Put("/{id}", h.UpdateVendor)
			r.Delete("/{id}", h.DeleteVendor)
		})

		// Message template
		r.Get("/template", h.GetTemplate)
		r.Put("/template", h.UpdateTemplate)

		// Dashboard
		r.Get("/stats", h.GetStats)

		// Live monitor
		r.Route("/monitor", func(r chi.Router) {
			r.Get("/activities", h.GetActivities)
			r.Get("/leads", h.GetActiveLeads)
		})

		// Lead lifecycle signals
		r.Route("/leads/{id}", func(r chi.Router) {
			r.Post("/contact-started", h.ContactStarted)
			r.Post("/resolved", h.ResolveLead)
			r.Get("/status", h.GetLeadStatus)
		})
	})

	return r
}
