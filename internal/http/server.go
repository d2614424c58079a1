// Package http serves the expense calculator as an HTMX page. Each visitor
// gets a session holding a mounted calculator; browser submits and list
// clicks are replayed as document events and answered with the re-rendered
// widget.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	oteltrace "go.opentelemetry.io/otel/trace"

	"expcalc/internal/config"
	"expcalc/internal/core"
	"expcalc/internal/dom"
	"expcalc/internal/log"
	"expcalc/internal/middleware/ratelimit"
	"expcalc/internal/middleware/security"
	"expcalc/internal/middleware/trace"
	"expcalc/internal/session"
	"expcalc/internal/widget"
	appweb "expcalc/web"
)

// HostID is the element the widget fragment is swapped into.
const HostID = "widget-host"

const (
	submitPath = "/widget/submit"
	clickPath  = "/widget/click"

	sessionCleanupInterval = time.Minute
	staticMaxAge           = 3600
)

// Options configure the web host.
type Options struct {
	Addr               string
	Widget             widget.Options
	SessionTTL         time.Duration
	SessionMax         int
	RateLimitPerMinute int
	Logger             *log.Logger
	Tracer             oteltrace.Tracer
}

// OptionsFromConfig maps validated configuration onto server options.
func OptionsFromConfig(cfg *config.Config, logger *log.Logger, tracer oteltrace.Tracer) Options {
	w := widget.DefaultOptions()
	w.Locale = cfg.Locale
	w.Currency = cfg.Currency
	w.Stylesheet = cfg.StylesheetURL
	return Options{
		Addr:               cfg.Addr(),
		Widget:             w,
		SessionTTL:         cfg.SessionTTL,
		SessionMax:         cfg.SessionMax,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Tracer:             tracer,
	}
}

type Server struct {
	http.Server
	templates  *template.Template
	sessions   *session.Store
	widgetOpts widget.Options
	format     *core.Formatter
	logger     *log.Logger

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime          time.Time
	sessionsCreated int64
	expensesAdded   int64
	expensesRemoved int64
	rejected        int64
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.SessionMax <= 0 {
		opts.SessionMax = 1000
	}
	if opts.Widget.Locale == "" {
		opts.Widget.Locale = core.DefaultLocale
	}
	if opts.Widget.Currency == "" {
		opts.Widget.Currency = core.DefaultCurrency
	}

	s := &Server{
		widgetOpts:       opts.Widget,
		format:           core.NewFormatter(opts.Widget.Locale, opts.Widget.Currency),
		logger:           opts.Logger.WithComponent(log.ComponentHTTP),
		securityDetector: security.NewDetector(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(opts.Tracer, opts.Logger, s.securityDetector.ExtractClientIP)
	s.sessions = session.NewStore(opts.SessionMax, opts.SessionTTL, s.newCalculator, opts.Logger)
	s.sessions.StartCleanup(sessionCleanupInterval)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.WithComponent(log.ComponentTemplate).Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Addr = opts.Addr
	s.Handler = s.routes()
	s.ReadHeaderTimeout = 10 * time.Second
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(s.traceMiddleware.Middleware)
	r.Use(s.securityDetector.Middleware(s.logger))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig(s.widgetOpts.Stylesheet)).Middleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(staticMaxAge)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit))
		r.Post(submitPath, s.handleSubmit)
		r.Post(clickPath, s.handleClick)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		allowed := http.MethodGet
		if r.URL.Path == submitPath || r.URL.Path == clickPath {
			allowed = http.MethodPost
		}
		MethodNotAllowedError(allowed).Write(w)
	})
	return r
}

// newCalculator is the session factory. The form is wired to post through
// htmx; everything else about the calculator is host independent.
func (s *Server) newCalculator(sessionID string, onChange func(widget.Change)) *widget.Calculator {
	opts := s.widgetOpts
	opts.Logger = s.logger.With(log.FieldSessionID, sessionID)
	opts.OnChange = onChange
	calc := widget.New(opts)

	form := dom.ByID(calc.Root(), widget.FormID)
	dom.SetAttr(form, "hx-post", submitPath)
	dom.SetAttr(form, "hx-target", "#"+HostID)
	dom.SetAttr(form, "hx-swap", "innerHTML")
	return calc
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerErrorNotification("Слишком много запросов, попробуйте позже.").
		Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
		s.rateLimiter.Stop()
		s.sessions.Stop()
		s.logger.Info("HTTP server stopped", log.FieldOperation, log.OpShutdown)
	})
	return shutdownErr
}
