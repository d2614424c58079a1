package core

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultLocale   = "ru"
	DefaultCurrency = "₽"
)

// Formatter renders amounts as whole numbers grouped the way the locale
// groups thousands.
type Formatter struct {
	group    string
	currency string
}

// NewFormatter builds a formatter for a BCP 47 locale tag. Unknown or
// malformed tags fall back to DefaultLocale.
func NewFormatter(locale, currency string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Russian
	}
	return &Formatter{
		group:    groupSeparator(message.NewPrinter(tag)),
		currency: currency,
	}
}

// groupSeparator extracts what the locale prints between thousands groups.
// It is empty for locales that do not group.
func groupSeparator(p *message.Printer) string {
	s := p.Sprintf("%d", 1000)
	return strings.TrimSuffix(strings.TrimPrefix(s, "1"), "000")
}

// Format rounds half away from zero and prints the integer with grouping.
// Any magnitude is printed exactly.
func (f *Formatter) Format(d decimal.Decimal) string {
	digits := d.Round(0).String()
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if f.group == "" || len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if i > 0 {
			b.WriteString(f.group)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatMoney is Format prefixed by the currency symbol.
func (f *Formatter) FormatMoney(d decimal.Decimal) string {
	return f.currency + f.Format(d)
}

// Currency returns the symbol used by FormatMoney.
func (f *Formatter) Currency() string {
	return f.currency
}
