// Package tabular reads and writes the external five-column payload
// used for bulk import and export: Date, Type, Category, Amount,
// Description. Two encodings are supported, CSV and XLSX.
//
// The package deals in raw string rows only. Validating and typing the
// fields is the engine's job, so a malformed cell is reported where the
// ledger can decide what to do about the whole batch.
package tabular

import (
	"errors"
	"fmt"
	"strings"
)

// Header is the fixed column order of every payload.
var Header = []string{"Date", "Type", "Category", "Amount", "Description"}

// Row is one payload line with untyped string fields.
type Row struct {
	Date        string
	Type        string
	Category    string
	Amount      string
	Description string
}

var ErrBadHeader = errors.New("payload header must be Date,Type,Category,Amount,Description")

// checkHeader verifies the first record matches Header. Comparison is
// whitespace-tolerant but order and spelling are fixed.
func checkHeader(record []string) error {
	if len(record) < len(Header) {
		return fmt.Errorf("%w: got %d columns", ErrBadHeader, len(record))
	}
	for i, want := range Header {
		if strings.TrimSpace(record[i]) != want {
			return fmt.Errorf("%w: column %d is %q", ErrBadHeader, i+1, record[i])
		}
	}
	return nil
}

func rowFromRecord(record []string) Row {
	// Missing trailing cells (a short XLSX row, say) default to empty;
	// Description in particular is optional.
	get := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	return Row{
		Date:        get(0),
		Type:        get(1),
		Category:    get(2),
		Amount:      get(3),
		Description: get(4),
	}
}

func (r Row) record() []string {
	return []string{r.Date, r.Type, r.Category, r.Amount, r.Description}
}
