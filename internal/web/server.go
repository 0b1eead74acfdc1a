package web

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelierhq/atelier/internal/chat"
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/panel"
	"github.com/atelierhq/atelier/internal/preview"
	"github.com/atelierhq/atelier/internal/storage"
)

// ServerConfig contains configuration for creating the HTTP server.
type ServerConfig struct {
	Logger          *slog.Logger
	ChatStore       chat.Store              // Required
	Session         *Session                // Required
	Documents       *preview.DocumentStore  // Required
	SettingsStore   storage.Store           // Optional: nil keeps settings in memory only
	DefaultSettings config.Settings         // Seed settings when nothing is persisted
	Copier          panel.Copier            // Optional: nil uses the system clipboard
	Pool            *pgxpool.Pool           // Optional: nil disables pool stats in /readyz
	CORSOrigins     []string                // Allowed origins for CORS
	TrustProxy      bool                    // Trust X-Real-IP/X-Forwarded-For headers
	RateLimitRPS    float64                 // Rate limiter refill per IP (0 = default 10)
	RateLimitBurst  int                     // Rate limiter burst per IP (0 = default 20)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux      *http.ServeMux
	settings *settingsManager
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.ChatStore == nil {
		return nil, errors.New("chat store is required")
	}
	if cfg.Session == nil {
		return nil, errors.New("session is required")
	}
	if cfg.Documents == nil {
		return nil, errors.New("document store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	settings := newSettingsManager(cfg.SettingsStore, cfg.DefaultSettings, logger)

	copier := cfg.Copier
	if copier == nil {
		copier = &panel.ClipboardCopier{Fallback: os.Stdout}
	}

	ch := &chatHandler{store: cfg.ChatStore, session: cfg.Session, settings: settings, logger: logger}
	ah := &artifactHandler{session: cfg.Session, copier: copier, logger: logger}
	ph := &panelHandler{session: cfg.Session, documents: cfg.Documents, logger: logger}
	gh := &playgroundHandler{session: cfg.Session, documents: cfg.Documents, logger: logger}
	vh := &previewHandler{documents: cfg.Documents, logger: logger}
	sh := &settingsHandler{manager: settings, logger: logger}

	mux := http.NewServeMux()

	// Chats
	mux.HandleFunc("GET /api/v1/chats", ch.list)
	mux.HandleFunc("POST /api/v1/chats", ch.create)
	mux.HandleFunc("GET /api/v1/chats/{id}", ch.get)
	mux.HandleFunc("POST /api/v1/chats/{id}/messages", ch.send)
	mux.HandleFunc("POST /api/v1/chats/{id}/clear", ch.clear)
	mux.HandleFunc("DELETE /api/v1/chats/{id}", ch.delete)
	mux.HandleFunc("POST /api/v1/chats/{id}/activate", ch.activate)

	// Artifacts
	mux.HandleFunc("GET /api/v1/artifacts/{id}", ah.get)
	mux.HandleFunc("POST /api/v1/artifacts/{id}/copy", ah.copy)
	mux.HandleFunc("GET /api/v1/artifacts/{id}/download", ah.download)

	// Panel
	mux.HandleFunc("POST /api/v1/panel/open", ph.open)
	mux.HandleFunc("POST /api/v1/panel/close", ph.close)
	mux.HandleFunc("POST /api/v1/panel/fullscreen", ph.fullscreen)
	mux.HandleFunc("POST /api/v1/panel/view", ph.view)
	mux.HandleFunc("GET /api/v1/panel", ph.state)

	// Playground
	mux.HandleFunc("POST /api/v1/playground/run", gh.run)
	mux.HandleFunc("POST /api/v1/playground/clear", gh.clear)
	mux.HandleFunc("PUT /api/v1/playground/buffers", gh.buffers)
	mux.HandleFunc("GET /api/v1/playground/buffers", gh.buffers)

	// Preview documents
	mux.HandleFunc("GET /preview/{id}", vh.get)

	// Settings
	mux.HandleFunc("GET /api/v1/settings", sh.get)
	mux.HandleFunc("PUT /api/v1/settings", sh.put)

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 20
	}
	rl := newRateLimiter(rps, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes. CORS must be before RateLimit so preflight OPTIONS gets
	// proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux separates health probes from the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /healthz", health(logger))
	topMux.HandleFunc("GET /readyz", readiness(cfg.Pool, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux, settings: settings}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
