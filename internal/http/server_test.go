package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"expcalc/internal/dom"
	"expcalc/internal/widget"
)

func newTestServer(t *testing.T, mutate ...func(*Options)) *Server {
	t.Helper()
	opts := Options{
		Widget:             widget.DefaultOptions(),
		SessionTTL:         time.Hour,
		SessionMax:         10,
		RateLimitPerMinute: 100,
	}
	for _, m := range mutate {
		m(&opts)
	}
	srv := NewServer(opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

// client keeps the session cookie between requests like a browser would.
type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.srv.Handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) submit(name, amount string) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, submitPath, url.Values{widget.NameField: {name}, widget.AmountField: {amount}})
}

func (c *client) click(target string) *httptest.ResponseRecorder {
	form := url.Values{}
	if target != "" {
		form.Set(targetParam, target)
	}
	return c.do(http.MethodPost, clickPath, form)
}

type fragment struct {
	root *html.Node
}

func parseFragment(t *testing.T, body string) fragment {
	t.Helper()
	root, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return fragment{root: root}
}

func (f fragment) rows() []string {
	var out []string
	list := dom.ByID(f.root, widget.ListID)
	for _, li := range dom.FindAll(list, func(n *html.Node) bool { return dom.IsElement(n, "li") }) {
		out = append(out, dom.TextContent(dom.Find(li, func(n *html.Node) bool { return dom.IsElement(n, "span") })))
	}
	return out
}

func (f fragment) total() string {
	return normalizeSpaces(dom.TextContent(dom.ByID(f.root, widget.TotalID)))
}

func (f fragment) feedback() (string, bool) {
	fb := dom.ByID(f.root, widget.FeedbackID)
	return dom.TextContent(fb), !dom.HasClass(fb, "d-none")
}

func (f fragment) deleteID(row int) string {
	list := dom.ByID(f.root, widget.ListID)
	buttons := dom.FindAll(list, func(n *html.Node) bool { return dom.IsElement(n, "button") })
	id, _ := dom.Attr(buttons[row], widget.IDAttr)
	return id
}

func normalizeSpaces(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

func triggers(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	if h := rec.Header().Get("HX-Trigger"); h != "" {
		require.NoError(t, json.Unmarshal([]byte(h), &out))
	}
	return out
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, srv: srv}

	rr := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, widget.DefaultLabels().Title)
	assert.Contains(t, body, `id="`+HostID+`"`)
	assert.Contains(t, body, `hx-post="/widget/submit"`)
	assert.Contains(t, body, widget.DefaultStylesheet)
	assert.Contains(t, body, `<html lang="ru">`)
	require.NotNil(t, c.cookie)
	assert.True(t, c.cookie.HttpOnly)
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "https://cdn.jsdelivr.net")

	// The same visitor keeps the same session.
	first := c.cookie.Value
	c.cookie = &http.Cookie{Name: SessionCookie, Value: first}
	rr = c.do(http.MethodGet, "/", nil)
	assert.Empty(t, rr.Result().Cookies())

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	}

	var ready struct {
		Status string         `json:"status"`
		Checks map[string]any `json:"checks"`
	}
	rr = c.do(http.MethodGet, "/readyz", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "ok", ready.Checks["templates"])
}

func TestAddAndRemoveScenario(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, srv: srv}

	rr := c.submit("Coffee", "150")
	require.Equal(t, http.StatusOK, rr.Code)
	f := parseFragment(t, rr.Body.String())
	assert.Equal(t, []string{"Coffee: ₽150"}, f.rows())
	assert.Equal(t, "150", f.total())
	trig := triggers(t, rr)
	assert.Contains(t, trig, "expense:created")
	assert.Contains(t, trig, "form:reset")
	assert.Contains(t, trig, "show-notification")

	rr = c.submit("Rent", "1000")
	f = parseFragment(t, rr.Body.String())
	assert.Equal(t, []string{"Coffee: ₽150", "Rent: ₽1 000"}, normalizeAll(f.rows()))
	assert.Equal(t, "1 150", f.total())

	var created struct {
		ID    int64  `json:"id"`
		Count int    `json:"count"`
		Total string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(triggers(t, rr)["expense:created"], &created))
	assert.Equal(t, int64(2), created.ID)
	assert.Equal(t, 2, created.Count)
	assert.Equal(t, "1 150", normalizeSpaces(created.Total))

	rr = c.click(f.deleteID(0))
	require.Equal(t, http.StatusOK, rr.Code)
	f = parseFragment(t, rr.Body.String())
	assert.Equal(t, []string{"Rent: ₽1 000"}, normalizeAll(f.rows()))
	assert.Equal(t, "1 000", f.total())
	trig = triggers(t, rr)
	assert.Contains(t, trig, "expense:deleted")
	assert.NotContains(t, trig, "form:reset")
}

func TestClickOutsideDeleteControlIsIgnored(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, srv: srv}
	c.submit("Coffee", "150")

	for _, target := range []string{"", "99", "abc"} {
		rr := c.click(target)
		require.Equal(t, http.StatusOK, rr.Code)
		f := parseFragment(t, rr.Body.String())
		assert.Equal(t, []string{"Coffee: ₽150"}, f.rows(), "target %q", target)
		assert.Empty(t, triggers(t, rr), "target %q", target)
	}
}

func TestInvalidSubmitShowsMessage(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, srv: srv}
	labels := widget.DefaultLabels()

	tests := []struct {
		name, amount, want string
	}{
		{"", "10", labels.EmptyName},
		{"   ", "10", labels.EmptyName},
		{"Pen", "abc", labels.InvalidAmount},
		{"Pen", "0", labels.InvalidAmount},
		{"Pen", "-5", labels.InvalidAmount},
	}
	for _, tt := range tests {
		rr := c.submit(tt.name, tt.amount)
		require.Equal(t, http.StatusOK, rr.Code)
		f := parseFragment(t, rr.Body.String())
		msg, visible := f.feedback()
		assert.True(t, visible)
		assert.Equal(t, tt.want, msg)
		assert.Empty(t, f.rows())
		assert.Equal(t, "0", f.total())

		var note struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(triggers(t, rr)["show-notification"], &note))
		assert.Equal(t, "warning", note.Type)
		assert.Equal(t, tt.want, note.Message)
	}

	rr := c.do(http.MethodGet, "/metrics", nil)
	assert.Contains(t, rr.Body.String(), "expenses_rejected_total 5")
}

func TestSubmitAcceptsJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, submitPath, strings.NewReader(`{"name":"Tea","amount":12.5}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	f := parseFragment(t, rr.Body.String())
	assert.Equal(t, []string{"Tea: ₽13"}, f.rows())

	req = httptest.NewRequest(http.MethodPost, submitPath, strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	alice := &client{t: t, srv: srv}
	bob := &client{t: t, srv: srv}

	alice.submit("Coffee", "150")
	rr := bob.submit("Tea", "20")

	f := parseFragment(t, rr.Body.String())
	assert.Equal(t, []string{"Tea: ₽20"}, f.rows())
	assert.NotEqual(t, alice.cookie.Value, bob.cookie.Value)
	assert.Equal(t, 2, srv.sessions.Size())
}

func TestUnknownSessionCookieGetsFreshSession(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, srv: srv, cookie: &http.Cookie{Name: SessionCookie, Value: "forged"}}

	rr := c.submit("Coffee", "150")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEqual(t, "forged", c.cookie.Value)
}

func TestEvictedSessionIsReplacedMidRequest(t *testing.T) {
	srv := newTestServer(t)
	stale, _ := srv.sessions.GetOrCreate("")
	srv.sessions.Delete(stale.ID)

	req := httptest.NewRequest(http.MethodPost, submitPath, nil)
	rec := httptest.NewRecorder()
	sess, changes, err := srv.withSession(rec, req, stale, func(doc *dom.Document, calc *widget.Calculator) {
		doc.Dispatch(dom.Event{
			Type:   dom.EventSubmit,
			Target: dom.ByID(calc.Root(), widget.FormID),
			Form:   url.Values{widget.NameField: {"Coffee"}, widget.AmountField: {"150"}},
		})
	})
	require.NoError(t, err)
	assert.NotSame(t, stale, sess)
	assert.Equal(t, stale.ID, sess.ID)
	require.Len(t, changes, 1)
	assert.Equal(t, widget.OpAdded, changes[0].Op)
	assert.Equal(t, 1, srv.sessions.Size())

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, stale.ID, cookie.Value)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, srv: srv}

	rr := c.do(http.MethodGet, submitPath, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))

	rr = c.do(http.MethodPost, "/", url.Values{})
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
}

func TestRateLimitAppliesToWidgetPosts(t *testing.T) {
	srv := newTestServer(t, func(o *Options) { o.RateLimitPerMinute = 2 })
	c := &client{t: t, srv: srv}

	assert.Equal(t, http.StatusOK, c.submit("a", "1").Code)
	assert.Equal(t, http.StatusOK, c.click("").Code)
	rr := c.submit("b", "2")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, triggers(t, rr), "show-notification")

	// Page loads are not limited.
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/", nil).Code)
}

func TestMetricsAndStatic(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, srv: srv}
	c.submit("Coffee", "150")
	f := parseFragment(t, c.submit("Rent", "1000").Body.String())
	c.click(f.deleteID(1))

	rr := c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, want := range []string{
		"expenses_added_total 2",
		"expenses_removed_total 1",
		"sessions_created_total 1",
		"sessions_active 1",
		"# TYPE http_requests_total counter",
	} {
		assert.Contains(t, body, want)
	}

	rr = c.do(http.MethodGet, "/static/widget.js", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
}

func TestSuspiciousRequestRejected(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Equal(t, 0, srv.sessions.Size())
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = normalizeSpaces(s)
	}
	return out
}

func TestPageLang(t *testing.T) {
	assert.Equal(t, "ru", pageLang("ru-RU"))
	assert.Equal(t, "en", pageLang("en"))
	assert.Equal(t, "ru", pageLang("!!"))
}
