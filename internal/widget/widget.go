// Package widget implements the expense calculator component: a form that
// records named amounts, a list of recorded expenses with delete controls and
// a running total.
//
// The calculator is a dom.Component. Hosts mount it into a dom.Document,
// which runs Connected, and deliver submit and click events through
// Document.Dispatch. All state changes happen inside those handlers; a
// calculator must only be driven from one goroutine at a time.
package widget

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"expcalc/internal/core"
	"expcalc/internal/dom"
	"expcalc/internal/log"
)

type Calculator struct {
	opts   Options
	log    *log.Logger
	ledger *core.Ledger
	format *core.Formatter

	root        *html.Node
	form        *html.Node
	nameInput   *html.Node
	amountInput *html.Node
	feedback    *html.Node
	list        *html.Node
	total       *html.Node

	// Created once so Disconnected removes exactly what Connected added.
	onSubmit *dom.Binding
	onClick  *dom.Binding
}

var _ dom.Component = (*Calculator)(nil)

// New builds a calculator and its visual tree. Behavior is bound when the
// calculator is mounted.
func New(opts Options) *Calculator {
	opts = opts.withDefaults()
	c := &Calculator{
		opts:   opts,
		log:    opts.Logger.WithComponent(log.ComponentWidget),
		ledger: core.NewLedger(),
		format: core.NewFormatter(opts.Locale, opts.Currency),
	}
	c.build()
	c.ledger.OnTotalChange(c.showTotal)
	c.onSubmit = dom.Bind(c.handleSubmit)
	c.onClick = dom.Bind(c.handleClick)
	return c
}

// Root implements dom.Component.
func (c *Calculator) Root() *html.Node {
	return c.root
}

// Connected implements dom.Component.
func (c *Calculator) Connected(doc *dom.Document) {
	doc.AddEventListener(c.form, dom.EventSubmit, c.onSubmit)
	doc.AddEventListener(c.list, dom.EventClick, c.onClick)
	c.log.Debug("Calculator connected", log.FieldOperation, log.OpMount)
}

// Disconnected implements dom.Component.
func (c *Calculator) Disconnected(doc *dom.Document) {
	doc.RemoveEventListener(c.form, dom.EventSubmit, c.onSubmit)
	doc.RemoveEventListener(c.list, dom.EventClick, c.onClick)
	c.log.Debug("Calculator disconnected", log.FieldOperation, log.OpUnmount)
}

// handleSubmit adds an expense from the current field values. Inputs are
// cleared whatever the outcome.
func (c *Calculator) handleSubmit(ev dom.Event) {
	name, amount := c.fieldValues(ev)
	defer c.resetForm()

	e, err := c.ledger.Add(name, amount)
	if err != nil {
		c.showFeedback(c.opts.Labels.Message(err))
		c.log.Warn("Expense rejected",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err.Error())
		c.notify(Change{Op: OpRejected, Err: err})
		return
	}

	c.clearFeedback()
	c.render()
	c.log.Debug("Expense added", log.NewFields().
		WithExpense(e.ID, e.Name, e.Amount).
		WithTotal(c.ledger.Total(), c.ledger.Len()).
		WithOperation(log.OpAdd).
		ToSlice()...)
	c.notify(Change{Op: OpAdded, Expense: e})
}

// handleClick removes the expense whose delete control was clicked, whether
// the click landed on the control or inside it. Other clicks are ignored.
func (c *Calculator) handleClick(ev dom.Event) {
	btn := dom.Closest(ev.Target, ev.CurrentTarget, func(n *html.Node) bool {
		return dom.IsElement(n, "button")
	})
	if btn == nil {
		return
	}
	raw, ok := dom.Attr(btn, IDAttr)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return
	}

	e, ok := c.ledger.Remove(id)
	if !ok {
		c.log.Debug("Remove ignored, no such expense", log.FieldExpenseID, id)
		return
	}
	c.render()
	c.log.Debug("Expense removed", log.NewFields().
		WithExpense(e.ID, e.Name, e.Amount).
		WithTotal(c.ledger.Total(), c.ledger.Len()).
		WithOperation(log.OpRemove).
		ToSlice()...)
	c.notify(Change{Op: OpRemoved, Expense: e})
}

// fieldValues prefers submitted form values and falls back to the value
// attributes of the inputs.
func (c *Calculator) fieldValues(ev dom.Event) (string, string) {
	if ev.Form != nil {
		return ev.Form.Get(NameField), ev.Form.Get(AmountField)
	}
	name, _ := dom.Attr(c.nameInput, "value")
	amount, _ := dom.Attr(c.amountInput, "value")
	return name, amount
}

// notify reports ch with the ledger state after the transition.
func (c *Calculator) notify(ch Change) {
	ch.Count = c.ledger.Len()
	ch.Total = c.ledger.Total()
	if c.opts.OnChange != nil {
		c.opts.OnChange(ch)
	}
}

// Expenses returns the recorded expenses in insertion order.
func (c *Calculator) Expenses() []core.Expense {
	return c.ledger.Items()
}

// Total returns the running total.
func (c *Calculator) Total() decimal.Decimal {
	return c.ledger.Total()
}

// Labels returns the strings the calculator renders with.
func (c *Calculator) Labels() Labels {
	return c.opts.Labels
}
