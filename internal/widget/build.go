package widget

import (
	"golang.org/x/net/html"

	"expcalc/internal/dom"
)

// Element ids and class names shared with hosts and the stylesheet.
const (
	RootClass  = "expense-calculator"
	FormID     = "expense-form"
	NameID     = "expense-name"
	AmountID   = "expense-amount"
	FeedbackID = "expense-feedback"
	ListID     = "expense-list"
	TotalID    = "total-amount"

	NameField   = "name"
	AmountField = "amount"
	IDAttr      = "data-id"

	hiddenClass = "d-none"
	rowClass    = "list-group-item bg-dark text-light d-flex justify-content-between align-items-center"
)

// build constructs the visual tree. It binds no behavior.
func (c *Calculator) build() {
	l := c.opts.Labels

	c.root = dom.Element("div", "class", RootClass, "data-component", RootClass)
	if c.opts.Stylesheet != "" {
		dom.Append(c.root, dom.Element("link", "href", c.opts.Stylesheet, "rel", "stylesheet"))
	}

	c.nameInput = dom.Element("input",
		"type", "text", "id", NameID, "name", NameField, "class", "form-control",
		"placeholder", l.NamePlaceholder, "autocomplete", "off", "required")
	c.amountInput = dom.Element("input",
		"type", "number", "id", AmountID, "name", AmountField, "class", "form-control",
		"placeholder", l.AmountPlaceholder, "min", "0", "step", "any", "required")

	c.form = dom.Append(dom.Element("form", "id", FormID, "class", "row g-3 mb-4"),
		dom.Append(dom.Element("div", "class", "col-md-6"), c.nameInput),
		dom.Append(dom.Element("div", "class", "col-md-4"), c.amountInput),
		dom.Append(dom.Element("div", "class", "col-md-2"),
			dom.Append(dom.Element("button", "type", "submit", "class", "btn btn-primary w-100"), dom.Text(l.Submit))),
	)

	c.feedback = dom.Element("div", "id", FeedbackID, "class", "alert alert-warning "+hiddenClass, "role", "alert")
	c.list = dom.Element("ul", "id", ListID, "class", "list-group list-group-flush")
	c.total = dom.Append(dom.Element("span", "id", TotalID), dom.Text(c.format.Format(c.ledger.Total())))

	card := dom.Append(dom.Element("div", "class", "card"),
		dom.Append(dom.Element("div", "class", "card-body"),
			dom.Append(dom.Element("h5", "class", "card-title"), dom.Text(l.ListTitle)),
			c.list,
			dom.Append(dom.Element("div", "class", "mt-3"),
				dom.Append(dom.Element("h5", "class", "text-dark text-end"),
					dom.Text(l.TotalPrefix+c.format.Currency()), c.total)),
		),
	)

	dom.Append(c.root,
		dom.Append(dom.Element("div", "class", "bg-dark text-light container py-5"),
			dom.Append(dom.Element("h1", "class", "text-center mb-4"), dom.Text(l.Title)),
			c.form,
			c.feedback,
			card,
		),
	)
}

// row builds one list entry for an expense.
func (c *Calculator) row(text, id string) *html.Node {
	return dom.Append(dom.Element("li", "class", rowClass),
		dom.Append(dom.Element("span"), dom.Text(text)),
		dom.Append(dom.Element("button", "type", "button", "class", "btn btn-danger btn-sm", IDAttr, id),
			dom.Text(c.opts.Labels.Delete)),
	)
}
