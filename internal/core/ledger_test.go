package core

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(items []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		total = total.Add(e.Amount)
	}
	return total
}

func TestLedgerTotalTracksValidAdds(t *testing.T) {
	l := NewLedger()
	r := rand.New(rand.NewSource(7))
	want := decimal.Zero
	for i := 0; i < 200; i++ {
		amount := decimal.New(r.Int63n(100000)+1, -2)
		_, err := l.Add("item", amount.String())
		require.NoError(t, err)
		want = want.Add(amount)
	}
	assert.True(t, want.Equal(l.Total()), "total %s, want %s", l.Total(), want)
	assert.True(t, sum(l.Items()).Equal(l.Total()))
	assert.Equal(t, 200, l.Len())
}

func TestLedgerAddThenRemoveRestoresState(t *testing.T) {
	l := NewLedger()
	_, err := l.Add("Coffee", "150")
	require.NoError(t, err)
	before := l.Total()
	beforeLen := l.Len()

	e, err := l.Add("Book", "850.75")
	require.NoError(t, err)
	removed, ok := l.Remove(e.ID)
	require.True(t, ok)
	assert.Equal(t, e, removed)
	assert.True(t, before.Equal(l.Total()))
	assert.Equal(t, beforeLen, l.Len())
}

func TestLedgerRejectsInvalidInput(t *testing.T) {
	l := NewLedger()
	_, err := l.Add("Coffee", "150")
	require.NoError(t, err)

	cases := []struct {
		name, amount string
		err          error
	}{
		{"", "50", ErrEmptyName},
		{"   ", "50", ErrEmptyName},
		{"Pen", "-5", ErrInvalidAmount},
		{"Pen", "0", ErrInvalidAmount},
		{"Pen", "abc", ErrInvalidAmount},
		{"Pen", "", ErrInvalidAmount},
	}
	for _, tc := range cases {
		_, err := l.Add(tc.name, tc.amount)
		assert.ErrorIs(t, err, tc.err, "%q/%q", tc.name, tc.amount)
		assert.Equal(t, 1, l.Len())
		assert.True(t, decimal.NewFromInt(150).Equal(l.Total()))
	}
}

func TestLedgerAcceptsLongNamesAndWideAmounts(t *testing.T) {
	l := NewLedger()

	long := strings.Repeat("x", 500)
	e, err := l.Add(long, "5")
	require.NoError(t, err)
	assert.Equal(t, long, e.Name)

	_, err = l.Add("Car", "1e3")
	require.NoError(t, err)
	_, err = l.Add("House", "1234567890123456")
	require.NoError(t, err)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, "1234567890124461", l.Total().String())
}

func TestLedgerIdentifiersAreUnique(t *testing.T) {
	l := NewLedger()
	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		e, err := l.Add("x", "1")
		require.NoError(t, err)
		assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
		if i%3 == 0 {
			l.Remove(e.ID)
		}
	}
	e, err := l.Add("after removals", "1")
	require.NoError(t, err)
	assert.False(t, seen[e.ID])
}

func TestLedgerRemoveUnknownIsNoop(t *testing.T) {
	l := NewLedger()
	_, err := l.Add("Coffee", "150")
	require.NoError(t, err)

	_, ok := l.Remove(999)
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())
	assert.True(t, decimal.NewFromInt(150).Equal(l.Total()))
}

func TestLedgerPreservesInsertionOrder(t *testing.T) {
	l := NewLedger()
	for _, n := range []string{"a", "b", "c", "d"} {
		_, err := l.Add(n, "1")
		require.NoError(t, err)
	}
	l.Remove(2)
	var names []string
	for _, e := range l.Items() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a", "c", "d"}, names)
}

func TestLedgerNotifiesTotalWatchers(t *testing.T) {
	l := NewLedger()
	var seen []string
	l.OnTotalChange(func(d decimal.Decimal) { seen = append(seen, d.String()) })

	e, err := l.Add("Coffee", "150")
	require.NoError(t, err)
	_, err = l.Add("Book", "850")
	require.NoError(t, err)
	_, _ = l.Add("", "50")
	l.Remove(e.ID)
	l.Remove(e.ID)

	assert.Equal(t, []string{"150", "1000", "850"}, seen)
}

func TestLedgerItemsIsACopy(t *testing.T) {
	l := NewLedger()
	_, err := l.Add("Coffee", "150")
	require.NoError(t, err)
	items := l.Items()
	items[0].Name = "changed"
	assert.Equal(t, "Coffee", l.Items()[0].Name)
}
