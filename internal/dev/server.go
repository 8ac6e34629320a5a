package dev

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/weft/internal/build"
	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/internal/pages"
	"github.com/vango-dev/weft/pkg/observe"
	"github.com/vango-dev/weft/pkg/weft"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server and runtime logs. Default: slog.Default().
	Logger *slog.Logger

	// Registry collects runtime metrics when metrics are enabled. Default: a
	// fresh registry.
	Registry *prometheus.Registry

	// OnReload is called after browsers were told to reload.
	OnReload func(page string, clients int)
}

// Server renders pages on request and reloads browsers when their sources
// change.
type Server struct {
	config    *config.Config
	options   ServerOptions
	logger    *slog.Logger
	dir       *pages.Dir
	watcher   *Watcher
	hub       *Hub
	observers []weft.Observer
	registry  *prometheus.Registry

	mu         sync.Mutex
	running    bool
	httpServer *http.Server
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dev")

	s := &Server{
		config:  cfg,
		options: options,
		logger:  logger,
		dir:     pages.Open(cfg.PagesPath(), build.HostOptions(cfg, logger)...),
		watcher: NewWatcher(WatcherConfig{Paths: CollectWatchPaths(cfg)}),
		hub:     NewHub(),
	}

	s.observers = build.Observers(cfg, logger)
	if cfg.Dev.Events {
		s.observers = append(s.observers, s.hub)
	}
	if cfg.Metrics.Enabled {
		s.registry = options.Registry
		if s.registry == nil {
			s.registry = prometheus.NewRegistry()
		}
		s.observers = append(s.observers, observe.NewMetrics(
			observe.WithRegistry(s.registry),
			observe.WithNamespace(cfg.Metrics.Namespace),
		))
	}
	return s
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/pages/{name}", s.handlePage)
	r.Get("/_weft/pages/{name}/holes", s.handleHoles)
	r.Get("/_weft/ws", s.hub.HandleWebSocket)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: s.Handler(),
	}
	s.mu.Unlock()

	changes := make(chan Change, 64)
	s.watcher.OnChange(func(c Change) {
		select {
		case changes <- c:
		default:
		}
	})
	go s.watcher.Start(ctx)
	go s.processChanges(ctx, changes)

	s.logger.Info("dev server running", "url", "http://"+s.config.DevAddress(), "pages", s.dir.Path())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.watcher.Stop()
	s.hub.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// processChanges serializes change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context, ch <-chan Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-ch:
			batch := []Change{change}
			for draining := true; draining; {
				select {
				case next := <-ch:
					batch = append(batch, next)
				default:
					draining = false
				}
			}
			s.HandleChanges(batch)
		}
	}
}

// HandleChanges reloads browsers showing changed pages. A page that no longer
// loads puts an error overlay on every browser instead.
func (s *Server) HandleChanges(changes []Change) {
	reload := make(map[string]bool)
	for _, c := range changes {
		s.logger.Debug("changed", "path", c.Path, "type", c.Type)
		switch c.Type {
		case ChangeMarkup, ChangeData:
			reload[strings.TrimSuffix(filepath.Base(c.Path), filepath.Ext(c.Path))] = true
		case ChangeConfig:
			reload[""] = true
		}
	}
	if reload[""] {
		reload = map[string]bool{"": true}
	}

	for page := range reload {
		if page != "" {
			if _, err := s.dir.Load(page); err != nil && !errors.HasCode(err, "E803") {
				s.logger.Error("page failed to load", "page", page, "error", err)
				s.hub.NotifyError(err.Error())
				continue
			}
		}
		s.hub.ClearError()
		s.hub.NotifyReload(page)
		clients := s.hub.ClientCount()
		s.logger.Info("reloaded", "page", page, "clients", clients)
		if s.options.OnReload != nil {
			s.options.OnReload(page, clients)
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.dir.Names()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, name := range names {
		fmt.Fprintf(&b, `<li><a href="/pages/%[1]s">%[1]s</a></li>`, html.EscapeString(name))
	}
	b.WriteString("</ul>")
	s.writeDocument(w, http.StatusOK, "", "Pages", b.String())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := s.dir.Load(name)
	if err != nil {
		s.writeError(w, statusFor(err), name, err)
		return
	}

	logger := s.logger.With("request", middleware.GetReqID(r.Context()), "page", name)
	markup, err := s.dir.Render(r.Context(), p, build.RuntimeOptions(s.config, logger, s.observers...)...)
	if err != nil {
		logger.Error("render failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, name, err)
		return
	}
	s.writeDocument(w, http.StatusOK, name, name, markup)
}

func (s *Server) handleHoles(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := s.dir.Load(name)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	holes, err := s.dir.Inspect(p)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":    name,
		"holes":   holes,
		"missing": p.Missing(),
	})
}

func statusFor(err error) int {
	if errors.HasCode(err, "E803") {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

func (s *Server) writeError(w http.ResponseWriter, status int, page string, err error) {
	body := `<pre id="weft-error">` + html.EscapeString(err.Error()) + `</pre>`
	s.writeDocument(w, status, page, "Error", body)
}

// writeDocument wraps body in a page shell carrying the dev client script.
func (s *Server) writeDocument(w http.ResponseWriter, status int, page, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html data-weft-page="%s">
<head><meta charset="utf-8"><title>%s</title></head>
<body>%s%s</body>
</html>`, html.EscapeString(page), html.EscapeString(title), body, DevClientScript)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
