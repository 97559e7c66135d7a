package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/screenshot"
)

//go:embed static/widget.js
var widgetJS embed.FS

// NewServer creates and configures the HTTP server for the feedback API and
// the decision log page.
func NewServer(db *sql.DB, cfg *config.Config, version string) *http.Server {
	// Capture degrades to a placeholder background when no screenshot
	// service is configured.
	var shots *screenshot.Client
	if cfg.ScreenshotURL != "" {
		shots = screenshot.NewClient(cfg.ScreenshotURL, time.Duration(cfg.ScreenshotTimeoutSecs)*time.Second)
	}

	h := &Handlers{
		db:    db,
		cfg:   cfg,
		shots: shots,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax.
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/decisions", http.StatusFound)
	})
	mux.HandleFunc("GET /api/health", h.HandleHealth)

	// Widget surface: loaded cross-origin from customer pages.
	mux.HandleFunc("POST /api/feedback", h.HandleSubmit)
	mux.HandleFunc("GET /api/widget/settings", h.HandleWidgetSettings)
	mux.HandleFunc("GET /widget.js", h.HandleWidgetScript)
	mux.HandleFunc("OPTIONS /api/feedback", h.HandlePreflight)
	mux.HandleFunc("OPTIONS /api/widget/settings", h.HandlePreflight)

	// Triage surface: token-authenticated.
	mux.HandleFunc("POST /api/capture", h.HandleCapture)
	mux.HandleFunc("GET /api/comments", h.HandleList)
	mux.HandleFunc("GET /api/comments/{id}/image", h.HandleImage)
	mux.HandleFunc("POST /api/comments/images", h.HandleImages)
	mux.HandleFunc("PATCH /api/comments/{id}/status", h.HandleStatus)
	mux.HandleFunc("PATCH /api/comments/{id}/priority", h.HandlePriority)
	mux.HandleFunc("PATCH /api/comments/{id}/assignee", h.HandleAssignee)
	mux.HandleFunc("POST /api/comments/{id}/notes", h.HandleNote)
	mux.HandleFunc("POST /api/comments/priorities", h.HandleBulkPriority)
	mux.HandleFunc("DELETE /api/comments/{id}", h.HandleDelete)

	mux.HandleFunc("POST /api/decisions", h.HandlePromoteDecision)
	mux.HandleFunc("GET /api/decisions", h.HandleListDecisions)
	mux.HandleFunc("PATCH /api/decisions/{id}", h.HandleUpdateDecision)
	mux.HandleFunc("DELETE /api/decisions/{id}", h.HandleDeleteDecision)

	mux.HandleFunc("GET /api/settings", h.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.HandleUpdateSettings)

	mux.HandleFunc("GET /api/projects", h.HandleListProjects)
	mux.HandleFunc("POST /api/projects", h.HandleCreateProject)
	mux.HandleFunc("GET /api/assignees", h.HandleListAssignees)
	mux.HandleFunc("POST /api/assignees", h.HandleCreateAssignee)

	mux.HandleFunc("GET /decisions", h.HandleDecisionsPage)

	handler := requestLogger(securityHeaders(mux))

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.ListenBind, cfg.ListenPort),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// widgetCORS allows the widget surface to be called from any customer page.
// Tenant identification happens via the widget key, not the origin, so the
// allow-list is deliberately open.
func widgetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Widget-Key")
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info().Str("addr", srv.Addr).Msg("feedback server running")

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn().Msg("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// SetupLogging configures the global zerolog logger.
func SetupLogging(pretty bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
