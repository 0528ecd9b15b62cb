package calcweb

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the page, its form actions and the JSON API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Page)

	r.Route("/session", func(r chi.Router) {
		r.Post("/open", h.Open)
		r.Post("/close", h.Close)
		r.Post("/cancel", h.Close)
		r.Post("/dismiss", h.Dismiss)
		r.Post("/key", h.Key)
		r.Post("/calculate", h.Calculate)
		r.Post("/finish", h.Finish)
		r.Post("/reset", h.Reset)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/session/open", h.APIOpen)
		r.Post("/session/close", h.APIClose)
		r.Post("/session/finish", h.APIFinish)
		r.Post("/session/reset", h.APIReset)
		r.Post("/calculations", h.APISubmit)
		r.Get("/history", h.APIHistory)
		r.Get("/summary", h.APISummary)
	})
}
