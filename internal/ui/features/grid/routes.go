package grid

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/loglines/internal/ui/notifier"
)

// SetupRoutes configures routes for the grid feature.
func SetupRoutes(
	router chi.Router,
	s *Sessions,
	notify *notifier.Notifier,
	isDev bool,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(s, notify, isDev, logger)

	router.Get("/", handlers.GridPage)
	router.Get("/manifest", handlers.Manifest)
	router.Get("/updates", handlers.Updates)

	router.Route("/input", func(r chi.Router) {
		r.Post("/filter", handlers.FilterInput())
		r.Post("/highlight", handlers.HighlightInput())
	})
	router.Post("/toggle", handlers.Toggle())
	router.Post("/clear", handlers.Clear())
	router.Post("/scroll", handlers.Scroll())
	router.Route("/minimap", func(r chi.Router) {
		r.Post("/down", handlers.MinimapDown())
		r.Post("/move", handlers.MinimapMove())
		r.Post("/up", handlers.MinimapUp())
	})
	router.Post("/drill", handlers.Drill())

	return nil
}
