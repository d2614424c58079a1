package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Ledger is the ordered expense collection owned by one calculator together
// with its running total. It is not safe for concurrent use; the owner
// serializes access.
type Ledger struct {
	items    []Expense
	total    decimal.Decimal
	nextID   int64
	watchers []func(decimal.Decimal)
}

func NewLedger() *Ledger {
	return &Ledger{total: decimal.Zero, nextID: 1}
}

// OnTotalChange registers fn to run after every total change with the new
// value.
func (l *Ledger) OnTotalChange(fn func(decimal.Decimal)) {
	l.watchers = append(l.watchers, fn)
}

// setTotal is the single write path for the total.
func (l *Ledger) setTotal(v decimal.Decimal) {
	l.total = v
	for _, fn := range l.watchers {
		fn(v)
	}
}

// Add validates the raw form values and appends a new record.
func (l *Ledger) Add(name, amount string) (Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Expense{}, ErrEmptyName
	}
	d, err := ParseAmount(amount)
	if err != nil {
		return Expense{}, err
	}
	e := Expense{ID: l.nextID, Name: name, Amount: d}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	l.nextID++
	l.items = append(l.items, e)
	l.setTotal(l.total.Add(d))
	return e, nil
}

// Remove deletes the record with the given id. It reports false and leaves
// the ledger untouched when no record matches.
func (l *Ledger) Remove(id int64) (Expense, bool) {
	for i, e := range l.items {
		if e.ID != id {
			continue
		}
		l.items = append(l.items[:i], l.items[i+1:]...)
		l.setTotal(l.total.Sub(e.Amount))
		return e, true
	}
	return Expense{}, false
}

// Items returns a copy of the records in insertion order.
func (l *Ledger) Items() []Expense {
	out := make([]Expense, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) Total() decimal.Decimal {
	return l.total
}

func (l *Ledger) Len() int {
	return len(l.items)
}
