package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"expcalc/internal/log"
)

func TestBuildCSPAllowsStylesheetOrigin(t *testing.T) {
	csp := BuildCSP("https://cdn.jsdelivr.net/npm/bootstrap@5.0.2/dist/css/bootstrap.min.css")
	assert.Contains(t, csp, "style-src 'self' https://cdn.jsdelivr.net")
	assert.Contains(t, csp, "script-src 'self' https://unpkg.com")

	assert.Contains(t, BuildCSP("/static/app.css"), "style-src 'self';")
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig("")).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}

func TestDetector(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name   string
		method string
		target string
		ua     string
		want   bool
	}{
		{"plain page", http.MethodGet, "/", "Mozilla/5.0", false},
		{"widget submit", http.MethodPost, "/widget/submit", "Mozilla/5.0", false},
		{"path traversal", http.MethodGet, "/static/../.env", "", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/", nil)
			r.URL.Path = tt.target
			r.Header.Set("User-Agent", tt.ua)
			assert.Equal(t, tt.want, d.IsSuspicious(r))
		})
	}

	h := d.Middleware(log.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", "nikto")
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(1), d.GetMetrics().SuspiciousRequests)
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.5")
	assert.Equal(t, "203.0.113.9", d.ExtractClientIP(r))

	r.RemoteAddr = "198.51.100.1:1234"
	assert.Equal(t, "198.51.100.1", d.ExtractClientIP(r))
}
