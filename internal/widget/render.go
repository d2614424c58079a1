package widget

import (
	"strconv"

	"github.com/shopspring/decimal"

	"expcalc/internal/dom"
)

// render rebuilds the list from the ledger in insertion order.
func (c *Calculator) render() {
	dom.Clear(c.list)
	for _, e := range c.ledger.Items() {
		text := e.Name + ": " + c.format.FormatMoney(e.Amount)
		c.list.AppendChild(c.row(text, strconv.FormatInt(e.ID, 10)))
	}
}

// showTotal is subscribed to the ledger, so the display follows every total
// change without handlers refreshing it.
func (c *Calculator) showTotal(total decimal.Decimal) {
	dom.SetText(c.total, c.format.Format(total))
}

func (c *Calculator) showFeedback(msg string) {
	dom.SetText(c.feedback, msg)
	dom.RemoveClass(c.feedback, hiddenClass)
}

func (c *Calculator) clearFeedback() {
	dom.Clear(c.feedback)
	dom.AddClass(c.feedback, hiddenClass)
}

// resetForm clears both inputs.
func (c *Calculator) resetForm() {
	dom.RemoveAttr(c.nameInput, "value")
	dom.RemoveAttr(c.amountInput, "value")
}
