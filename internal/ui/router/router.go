// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	gridFeature "github.com/leapstack-labs/loglines/internal/ui/features/grid"
	"github.com/leapstack-labs/loglines/internal/ui/notifier"
	"github.com/leapstack-labs/loglines/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	sessions *gridFeature.Sessions,
	notify *notifier.Notifier,
	isDev bool,
	logger *slog.Logger,
) error {
	if isDev {
		setupReload(router, notify, logger)
	}

	router.Handle("/static/*", resources.Handler())

	return gridFeature.SetupRoutes(router, sessions, notify, isDev, logger)
}

// setupReload lets a dev watcher hit /hotreload after rebuilding assets;
// every page holding the /reload stream then reloads itself.
func setupReload(router chi.Router, notify *notifier.Notifier, logger *slog.Logger) {
	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		updates := notify.Subscribe()
		defer notify.Unsubscribe(updates)

		sse := datastar.NewSSE(w, r)
		for {
			select {
			case u := <-updates:
				if u.Reason != notifier.ReasonAssets {
					continue
				}
				_ = sse.ExecuteScript("window.location.reload()")
				return
			case <-r.Context().Done():
				return
			}
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		logger.Debug("assets rebuilt, reloading pages")
		notify.Broadcast(notifier.ReasonAssets)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
