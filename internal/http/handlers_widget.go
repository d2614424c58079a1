package http

import (
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"

	"golang.org/x/net/html"

	"expcalc/internal/dom"
	"expcalc/internal/log"
	"expcalc/internal/session"
	"expcalc/internal/widget"
)

const maxBodyBytes = 16 << 10

// targetParam carries the data-id of the clicked delete control. It is
// empty for clicks elsewhere in the list.
const targetParam = "target"

// handleSubmit replays a form submission on the session's calculator.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Submit body rejected", log.FieldError, err)
		BadRequestError("Неверный формат запроса").Write(w)
		return
	}
	form := url.Values{
		widget.NameField:   {parser.Get(widget.NameField)},
		widget.AmountField: {parser.Get(widget.AmountField)},
	}

	s.dispatch(w, r, func(doc *dom.Document, calc *widget.Calculator) {
		doc.Dispatch(dom.Event{
			Type:   dom.EventSubmit,
			Target: dom.ByID(calc.Root(), widget.FormID),
			Form:   form,
		})
	})
}

// handleClick replays a click inside the expense list. A target naming an
// unknown row is delivered to the list itself, where it is ignored.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Неверный формат запроса").Write(w)
		return
	}
	id := sanitizeInput(r.PostForm.Get(targetParam))

	s.dispatch(w, r, func(doc *dom.Document, calc *widget.Calculator) {
		list := dom.ByID(calc.Root(), widget.ListID)
		target := list
		if id != "" {
			if btn := findDeleteControl(list, id); btn != nil {
				target = btn
			}
		}
		doc.Dispatch(dom.Event{Type: dom.EventClick, Target: target})
	})
}

func findDeleteControl(list *html.Node, id string) *html.Node {
	return dom.Find(list, func(n *html.Node) bool {
		v, ok := dom.Attr(n, widget.IDAttr)
		return ok && v == id && dom.IsElement(n, "button")
	})
}

// dispatch runs fn on the caller's session, then answers with the
// re-rendered widget and one HX-Trigger event per reported change.
// Rejected input is still a 200: the fragment carries the message.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, fn func(*dom.Document, *widget.Calculator)) {
	logger := log.FromContext(r.Context())

	var fragment string
	var err error
	sess, changes, doErr := s.withSession(w, r, s.session(w, r), func(doc *dom.Document, calc *widget.Calculator) {
		fn(doc, calc)
		fragment, err = dom.Render(calc.Root())
	})
	if doErr != nil {
		logger.ErrorContext(r.Context(), "Session unavailable",
			log.FieldSessionID, sess.ID,
			log.FieldError, doErr)
		InternalServerError("session unavailable").Write(w)
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "Widget render failed",
			log.FieldSessionID, sess.ID,
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
		InternalServerError("render failed").Write(w)
		return
	}

	resp := NewHTMXResponse().BodyHTML(fragment)
	for _, ch := range changes {
		s.record(ch)
		s.addTriggers(resp, ch)
	}
	resp.Write(w)
}

func (s *Server) record(ch widget.Change) {
	switch ch.Op {
	case widget.OpAdded:
		atomic.AddInt64(&s.appMetrics.expensesAdded, 1)
	case widget.OpRemoved:
		atomic.AddInt64(&s.appMetrics.expensesRemoved, 1)
	case widget.OpRejected:
		atomic.AddInt64(&s.appMetrics.rejected, 1)
	}
}

func (s *Server) addTriggers(resp *HTMXResponseBuilder, ch widget.Change) {
	labels := s.widgetOpts.Labels
	if labels == (widget.Labels{}) {
		labels = widget.DefaultLabels()
	}

	switch ch.Op {
	case widget.OpAdded:
		resp.TriggerExpenseCreated(ch.Expense.ID, ch.Count, s.format.Format(ch.Total)).
			TriggerFormReset().
			TriggerSuccessNotification(ch.Expense.Name + ": " + s.format.FormatMoney(ch.Expense.Amount))
	case widget.OpRemoved:
		resp.TriggerExpenseDeleted(ch.Expense.ID, ch.Count, s.format.Format(ch.Total))
	case widget.OpRejected:
		resp.TriggerFormReset().
			TriggerNotification(NotificationWarning, labels.Message(ch.Err), 5000)
	}
}

// withSession runs fn on sess. A session evicted after it was looked up is
// replaced by a fresh one under the same id and fn is retried once.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, sess *session.Session, fn func(*dom.Document, *widget.Calculator)) (*session.Session, []widget.Change, error) {
	changes, err := sess.Do(fn)
	if !errors.Is(err, session.ErrClosed) {
		return sess, changes, err
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Session evicted mid-request, retrying",
		log.FieldSessionID, sess.ID)
	sess = s.sessionByID(w, r, sess.ID)
	changes, err = sess.Do(fn)
	return sess, changes, err
}

// session returns the caller's session, issuing a cookie when a new one is
// created.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	return s.sessionByID(w, r, id)
}

func (s *Server) sessionByID(w http.ResponseWriter, r *http.Request, id string) *session.Session {
	sess, created := s.sessions.GetOrCreate(id)
	if created {
		atomic.AddInt64(&s.appMetrics.sessionsCreated, 1)
		setSessionCookie(w, r, sess.ID)
	}
	return sess
}
