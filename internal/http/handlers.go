package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"

	"expcalc/internal/dom"
	"expcalc/internal/log"
	"expcalc/internal/widget"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady reports whether the page can be served.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil || s.templates.Lookup(indexTemplate) == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	checks["sessions"] = map[string]any{
		"active": s.sessions.Size(),
		"status": "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.GetMetrics().ClientCount,
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	w.WriteHeader(http.StatusOK)
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_microseconds", "gauge", "Smoothed response time", traceMetrics.AverageResponseTime)
	metric("sessions_created_total", "counter", "Calculator sessions created", atomic.LoadInt64(&s.appMetrics.sessionsCreated))
	metric("sessions_active", "gauge", "Calculator sessions alive", s.sessions.Size())
	metric("expenses_added_total", "counter", "Expenses added", atomic.LoadInt64(&s.appMetrics.expensesAdded))
	metric("expenses_removed_total", "counter", "Expenses removed", atomic.LoadInt64(&s.appMetrics.expensesRemoved))
	metric("expenses_rejected_total", "counter", "Submissions rejected by validation", atomic.LoadInt64(&s.appMetrics.rejected))
	metric("rate_limit_rejections_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.Rejected)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Suspicious requests rejected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

const indexTemplate = "index.html"

type indexData struct {
	Lang   string
	Title  string
	HostID string
	Widget template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			"error_type", log.ErrorTypeConfiguration)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var fragment string
	var err error
	_, _, doErr := s.withSession(w, r, s.session(w, r), func(_ *dom.Document, calc *widget.Calculator) {
		fragment, err = dom.Render(calc.Root())
	})
	if doErr != nil {
		logger.ErrorContext(r.Context(), "Session unavailable", log.FieldError, doErr)
		InternalServerError("session unavailable").Write(w)
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "Widget render failed", log.FieldError, err, log.FieldOperation, log.OpRender)
		InternalServerError("render failed").Write(w)
		return
	}

	data := indexData{
		Lang:   pageLang(s.widgetOpts.Locale),
		Title:  s.widgetOpts.Labels.Title,
		HostID: HostID,
		// Rendered by x/net/html, which escapes text and attribute values.
		Widget: template.HTML(fragment),
	}
	if data.Title == "" {
		data.Title = widget.DefaultLabels().Title
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, indexTemplate, data); err != nil {
		logger.ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err, "template", indexTemplate)
	}
}

func pageLang(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return "ru"
	}
	base, _ := tag.Base()
	return base.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
