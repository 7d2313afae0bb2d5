package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/recipients", func(r chi.Router) {
			r.Get("/", h.ListRecipients)
			r.Post("/", h.CreateRecipient)
			r.Post("/upload", h.UploadRecipients)
			r.Get("/export", h.ExportRecipients)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetRecipient)
				r.Put("/", h.UpdateRecipient)
				r.Delete("/", h.DeleteRecipient)
			})
		})

		r.Get("/schedule", h.GetSchedule)
		r.Put("/schedule", h.UpdateSchedule)
		r.Get("/settings", h.GetSettings)

		r.Route("/send", func(r chi.Router) {
			r.Post("/trigger", h.TriggerSend)
			r.Get("/runs/{id}", h.GetRun)
		})
	})

	return r
}
