package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SortByDate        SortKey = "date"
	SortByKind        SortKey = "kind"
	SortByCategory    SortKey = "category"
	SortByAmount      SortKey = "amount"
	SortByDescription SortKey = "description"
)

// SortKey names a transaction attribute to sort a view by. The set is
// closed: unknown keys fail at parse time instead of being ignored.
type SortKey string

var ErrUnknownSortKey = fmt.Errorf("unknown sort key")

// comparators map each key to an explicit less-than on transactions.
var comparators = map[SortKey]func(a, b Transaction) bool{
	SortByDate:     func(a, b Transaction) bool { return a.Date.Before(b.Date.Time) },
	SortByKind:     func(a, b Transaction) bool { return a.Kind < b.Kind },
	SortByCategory: func(a, b Transaction) bool { return a.Category < b.Category },
	SortByAmount:   func(a, b Transaction) bool { return a.Amount.Decimal().LessThan(b.Amount.Decimal()) },
	SortByDescription: func(a, b Transaction) bool {
		return a.Description < b.Description
	},
}

// ParseSortKey validates a sort key string. The empty string means "no
// sorting" and is valid.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	key := SortKey(s)
	if _, ok := comparators[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
	return key, nil
}

// Balance sums transaction amounts, counting Income positive and
// Expense negative. An empty sequence yields zero. Callers computing a
// view balance pass the filtered set, so the balance always matches
// what is on screen.
func Balance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Kind == Income {
			total = total.Add(t.Amount.Decimal())
		} else {
			total = total.Sub(t.Amount.Decimal())
		}
	}
	return total
}

// Filter returns the transactions matching the given kind and category,
// preserving relative order. Empty kind or category means "no
// constraint"; when both are set they must both match.
func Filter(txs []Transaction, kind Kind, category string) []Transaction {
	if kind == "" && category == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if kind != "" && t.Kind != kind {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortBy returns a new slice ordered ascending by the given key. The
// sort is stable: equal keys keep their input order. An empty key
// returns a copy in the original (insertion) order.
func SortBy(txs []Transaction, key SortKey) ([]Transaction, error) {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	if key == "" {
		return out, nil
	}
	less, ok := comparators[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}
