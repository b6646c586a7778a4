// Package ui serves the log-lines view over HTTP.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/loglines/internal/host"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/schedule"
	"github.com/leapstack-labs/loglines/internal/ui/features/grid"
	"github.com/leapstack-labs/loglines/internal/ui/notifier"
	"github.com/leapstack-labs/loglines/internal/ui/resources"
	"github.com/leapstack-labs/loglines/internal/ui/router"
	"github.com/leapstack-labs/loglines/pkg/core"
)

const reloadDebounce = 100 * time.Millisecond

// Server is the main UI server.
type Server struct {
	sessionStore *sessions.CookieStore
	loop         *schedule.Loop
	data         *grid.Dataset
	sessions     *grid.Sessions
	port         int
	watch        bool
	snapshotPath string
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Snapshot      *host.Snapshot
	SnapshotPath  string
	Vis           core.VisConfig
	Plugin        plugin.Options
	Port          int
	Watch         bool
	SessionSecret string
	Sessions      grid.Limits
	Logger        *slog.Logger
}

// sweepInterval is how often idle sessions are expired.
const sweepInterval = time.Minute

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	loop := schedule.NewLoop(logger)
	data := grid.NewDataset(cfg.Snapshot)
	registry := grid.NewSessions(sessionStore, loop, data, cfg.Plugin, cfg.Vis, logger)
	registry.SetLimits(cfg.Sessions)

	return &Server{
		sessionStore: sessionStore,
		loop:         loop,
		data:         data,
		sessions:     registry,
		port:         cfg.Port,
		watch:        cfg.Watch,
		snapshotPath: cfg.SnapshotPath,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler returns the routed HTTP handler without starting the loop.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.sessions, s.notifier, s.IsDev(), s.logger); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Every plugin instance runs on this loop.
	eg.Go(func() error {
		if err := s.loop.Run(egctx); err != nil && egctx.Err() == nil {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		return s.sessions.RunSweeper(egctx, sweepInterval)
	})

	// Start file watcher if enabled
	if s.watch && s.snapshotPath != "" {
		eg.Go(func() error {
			return s.watchSnapshot(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev returns true when built with the dev tag.
func (s *Server) IsDev() bool {
	return resources.Dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Sessions returns the session registry.
func (s *Server) Sessions() *grid.Sessions {
	return s.sessions
}

// Reload re-reads the snapshot file and pushes it to every session.
func (s *Server) Reload(ctx context.Context) error {
	snap, err := host.Load(s.snapshotPath)
	if err != nil {
		return err
	}
	s.data.Set(snap)
	if err := s.sessions.Reload(ctx); err != nil {
		return err
	}
	s.notifyClients()
	return nil
}

// watchSnapshot reloads the snapshot when its file changes. The directory
// is watched so editors that replace the file are still seen.
func (s *Server) watchSnapshot(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.snapshotPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch snapshot directory", "dir", dir, "error", err)
		// Don't fail - continue without watching
	}
	target := filepath.Clean(s.snapshotPath)

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				s.logger.Debug("snapshot changed, reloading", "file", event.Name)
				if err := s.Reload(ctx); err != nil {
					s.logger.Error("reload failed", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// notifyClients sends a notification to all connected SSE clients.
func (s *Server) notifyClients() {
	s.notifier.Broadcast(notifier.ReasonReload)
}
