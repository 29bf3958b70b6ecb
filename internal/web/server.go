// Package web serves the local dashboard for managing notifications.
//
// All state lives in the configstore directory and the user crontab; handlers
// read both fresh on every request so the dashboard and the cron-invoked CLI
// never disagree. There is no authentication; the dashboard binds to
// loopback by default and trusts the LAN when told to listen wider.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"discordnotify/internal/configstore"
	"discordnotify/internal/dispatch"
	"discordnotify/internal/history"
	"discordnotify/internal/schedule"
	"discordnotify/pkg/logx"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wires the dashboard handlers to their collaborators.
type Server struct {
	store   *configstore.Store
	crontab *schedule.Crontab
	disp    *dispatch.Dispatcher
	hist    *history.Log

	// notifyBin is the absolute CLI sender path written into crontab lines.
	notifyBin string

	log    logx.Logger
	tmpl   *template.Template
	router *mux.Router

	// now is swappable for tests.
	now func() time.Time
}

func NewServer(store *configstore.Store, crontab *schedule.Crontab, disp *dispatch.Dispatcher, hist *history.Log, notifyBin string, log logx.Logger) *Server {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Server{
		store:     store,
		crontab:   crontab,
		disp:      disp,
		hist:      hist,
		notifyBin: notifyBin,
		log:       log,
		now:       time.Now,
	}
	s.tmpl = template.Must(template.New("").Funcs(template.FuncMap{
		"timefmt": func(t time.Time) string {
			if t.IsZero() {
				return "—"
			}
			return t.Format("Mon 02 Jan 2006 15:04")
		},
	}).ParseFS(templateFS, "templates/*.html"))
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/notification/new", s.handleNew).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/notification/{name}", s.handleEdit).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/notification/{name}/test", s.handleTest).Methods(http.MethodPost)
	r.HandleFunc("/notification/{name}/delete", s.handleDelete).Methods(http.MethodPost)

	r.HandleFunc("/settings", s.handleSettings).Methods(http.MethodGet, http.MethodPost)

	r.Use(s.accessLogMiddleware())
	r.Use(func(next http.Handler) http.Handler {
		return handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(next)
	})
	return r
}

// CORSMiddleware is applied by cmd/webui when the listen address is not
// loopback, so browser tooling on the LAN can hit the endpoints.
func CORSMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		)(next)
	}
}

func (s *Server) accessLogMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := uuid.NewString()
			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			s.log.Debug("http request",
				logx.String("req_id", reqID),
				logx.String("method", r.Method),
				logx.String("path", r.URL.Path),
				logx.Int("status", wrapped.status),
				logx.Duration("took", time.Since(start)),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// configPath resolves a config name to the absolute path used both for sends
// and inside crontab lines.
func (s *Server) configPath(name string) (string, error) {
	p, err := s.store.Path(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(p)
}

// cronCommand builds the scheduled command line. Absolute paths only: cron
// runs with a minimal environment.
func (s *Server) cronCommand(configPath string) string {
	return s.notifyBin + " " + configPath
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["Flashes"] = takeFlashes(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, page, data); err != nil {
		s.log.Error("template render failed", logx.String("page", page), logx.Err(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// requestCtx bounds handler work, most of which is one or two crontab execs
// plus at most one webhook POST.
func requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 15*time.Second)
}

func trimmedForm(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
