package core

import (
	"strings"
	"testing"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func normalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

func TestFormatterRussianGrouping(t *testing.T) {
	f := NewFormatter("ru", DefaultCurrency)

	assert.Equal(t, "150", f.Format(decimal.NewFromInt(150)))
	assert.Equal(t, "₽850", f.FormatMoney(decimal.NewFromInt(850)))
	assert.Equal(t, "1 000", normalizeSpaces(f.Format(decimal.NewFromInt(1000))))
	assert.Equal(t, "1 234 567", normalizeSpaces(f.Format(decimal.NewFromInt(1234567))))
}

func TestFormatterRounding(t *testing.T) {
	f := NewFormatter("en", "$")

	cases := map[string]string{
		"0.4":     "0",
		"0.5":     "1",
		"2.49":    "2",
		"2.5":     "3",
		"1499.5":  "1,500",
		"1000000": "1,000,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, f.Format(decimal.RequireFromString(in)), in)
	}
	assert.Equal(t, "$12", f.FormatMoney(decimal.RequireFromString("12.2")))
}

func TestFormatterFallsBackOnBadLocale(t *testing.T) {
	f := NewFormatter("not a locale!!", DefaultCurrency)
	assert.Equal(t, "42", f.Format(decimal.NewFromInt(42)))
	assert.Equal(t, DefaultCurrency, f.Currency())
}

func TestFormatterBeyondInt64(t *testing.T) {
	f := NewFormatter("en", "$")

	huge := decimal.RequireFromString("123456789012345678901234.5")
	assert.Equal(t, "123,456,789,012,345,678,901,235", f.Format(huge))
	assert.Equal(t, "-1,000", f.Format(decimal.NewFromInt(-1000)))

	var total decimal.Decimal
	for i := 0; i < 10000; i++ {
		total = total.Add(decimal.RequireFromString("999999999999999"))
	}
	assert.Equal(t, "9,999,999,999,999,990,000", f.Format(total))
}
