package widget

import (
	"errors"

	"github.com/shopspring/decimal"

	"expcalc/internal/core"
	"expcalc/internal/log"
)

// DefaultStylesheet is the fixed stylesheet release whose class names the
// calculator markup relies on.
const DefaultStylesheet = "https://cdn.jsdelivr.net/npm/bootstrap@5.0.2/dist/css/bootstrap.min.css"

// Labels holds every user-visible string of the calculator.
type Labels struct {
	Title             string
	NamePlaceholder   string
	AmountPlaceholder string
	Submit            string
	ListTitle         string
	TotalPrefix       string
	Delete            string
	EmptyName         string
	InvalidAmount     string
}

// Options configure a calculator at construction time.
type Options struct {
	Labels     Labels
	Locale     string
	Currency   string
	Stylesheet string
	Logger     *log.Logger
	// OnChange observes every add, removal and rejected submission.
	OnChange func(Change)
}

// Op names a calculator state transition.
type Op string

const (
	OpAdded    Op = "added"
	OpRemoved  Op = "removed"
	OpRejected Op = "rejected"
)

// Change describes one transition. Expense is zero for rejections, Err is
// nil otherwise. Count and Total reflect the ledger after the transition.
type Change struct {
	Op      Op
	Expense core.Expense
	Count   int
	Total   decimal.Decimal
	Err     error
}

// DefaultLabels are the Russian strings the calculator ships with.
func DefaultLabels() Labels {
	return Labels{
		Title:             "Калькулятор расходов",
		NamePlaceholder:   "Название расхода",
		AmountPlaceholder: "Сумма расхода",
		Submit:            "Добавить",
		ListTitle:         "Список расходов",
		TotalPrefix:       "Общая сумма расходов: ",
		Delete:            "Удалить",
		EmptyName:         "Введите название расхода.",
		InvalidAmount:     "Сумма должна быть положительным числом.",
	}
}

func DefaultOptions() Options {
	return Options{
		Labels:     DefaultLabels(),
		Locale:     core.DefaultLocale,
		Currency:   core.DefaultCurrency,
		Stylesheet: DefaultStylesheet,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Labels == (Labels{}) {
		o.Labels = d.Labels
	}
	if o.Locale == "" {
		o.Locale = d.Locale
	}
	if o.Currency == "" {
		o.Currency = d.Currency
	}
	if o.Logger == nil {
		o.Logger = log.Discard()
	}
	return o
}

// Message maps a validation error to its label.
func (l Labels) Message(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		return l.EmptyName
	default:
		return l.InvalidAmount
	}
}
