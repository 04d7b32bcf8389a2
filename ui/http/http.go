package http

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	mbLog "github.com/pdbogen/slackin/common/log"
	"github.com/pdbogen/slackin/controller/invite"
	"github.com/pdbogen/slackin/model/dashboard"
	"github.com/pdbogen/slackin/model/user"
	"github.com/pdbogen/slackin/ui/slack"
)

var log = mbLog.Log

//go:embed templates/*.html
var templates embed.FS

const DefaultLiveInterval = 10 * time.Second

// Fetcher supplies the team dashboard.
type Fetcher interface {
	Fetch(ctx context.Context) (*dashboard.Snapshot, error)
}

// Invites runs the invite form.
type Invites interface {
	Initial(viewer *user.User) invite.Form
	Submit(ctx context.Context, form invite.Form, viewer *user.User) invite.Result
}

type Options struct {
	// LoginRequired hides everything from anonymous visitors; the page redirects them to LoginRedirect.
	LoginRequired bool
	LoginRedirect string
	// AuthSecret verifies the HS256 session token found in the AuthCookie cookie.
	AuthSecret    string
	AuthCookie    string
	CORSOrigins   []string
	LiveInterval  time.Duration
	SecureCookies bool
}

type Http struct {
	fetcher  Fetcher
	invites  Invites
	opts     Options
	pages    *template.Template
	router   chi.Router
	upgrader websocket.Upgrader
}

func (h *Http) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	h.router.ServeHTTP(rw, req)
}

func New(fetcher Fetcher, invites Invites, opts Options) (*Http, error) {
	if fetcher == nil || invites == nil {
		return nil, errors.New("fetcher and invites must be non-nil")
	}
	if opts.LoginRequired && opts.LoginRedirect == "" {
		return nil, errors.New("login redirect is required when login is required")
	}
	if opts.AuthCookie == "" {
		opts.AuthCookie = "slackin_session"
	}
	if opts.LiveInterval <= 0 {
		opts.LiveInterval = DefaultLiveInterval
	}

	pages, err := template.New("").Funcs(template.FuncMap{"count": count}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	h := &Http{fetcher: fetcher, invites: invites, opts: opts, pages: pages}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	h.router = h.routes()
	return h, nil
}

func (h *Http) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.GetHealth)
	r.Get("/", h.GetPage)
	r.Post("/", h.PostPage)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept"},
			AllowCredentials: h.opts.LoginRequired,
			MaxAge:           300,
		}))
		r.Use(h.requireViewer)
		r.Get("/data.json", h.GetData)
		r.Get("/badge.png", h.GetBadge)
		r.Get("/live", h.GetLive)
	})
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(rw, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		log.Debugf("%s %s %s: %d, %d bytes in %s", req.RemoteAddr, req.Method, req.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}

// requireViewer rejects anonymous visitors when login is required.
func (h *Http) requireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if h.opts.LoginRequired && !h.Viewer(req).Authenticated() {
			http.Error(rw, "login required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(rw, req)
	})
}

func (h *Http) GetHealth(rw http.ResponseWriter, req *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
}

// GetData serves the dashboard as JSON for embedding pages.
func (h *Http) GetData(rw http.ResponseWriter, req *http.Request) {
	snap, err := h.fetcher.Fetch(req.Context())
	if err != nil {
		log.Errorf("fetching dashboard for %s: %s", req.URL.Path, err)
		writeJSON(rw, http.StatusBadGateway, map[string]string{"error": adminMessage(err)})
		return
	}
	rw.Header().Set("Cache-Control", "no-cache")
	writeJSON(rw, http.StatusOK, snap.View())
}

func writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshalling %T: %s", v, err)
		http.Error(rw, "internal server error", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(body)
}

// adminMessage is what visitors see when the dashboard cannot be fetched. Slack errors carry a message meant
// for them; anything else is not shown.
func adminMessage(err error) string {
	var slackErr *slack.Error
	if errors.As(err, &slackErr) {
		return slackErr.Error()
	}
	return "Unable to reach Slack. Please try again later."
}

// render executes a template into a buffer so a failure can still become a clean 500.
func (h *Http) render(rw http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("rendering %s: %s", name, err)
		http.Error(rw, "internal server error", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(status)
	buf.WriteTo(rw)
}

func count(n int) string {
	if n == dashboard.Unknown {
		return "?"
	}
	return humanize.Comma(int64(n))
}
