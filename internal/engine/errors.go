package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotOwned means the caller used an account id that does not
	// belong to them (or does not exist; the two are indistinguishable
	// on purpose).
	ErrNotOwned = errors.New("account not owned by user")

	// ErrDuplicateAccountName is non-fatal: the caller may surface it
	// and retry with another name.
	ErrDuplicateAccountName = errors.New("account name already in use")
)

// RowError is a single import row failure. Row is the 1-based position
// in the payload body, not counting the header.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// RejectedError reports that a whole import batch was refused. It
// carries every row failure so the caller can show them all at once;
// nothing was persisted.
type RejectedError struct {
	Errors []RowError
}

func (e *RejectedError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, re := range e.Errors {
		msgs[i] = re.Error()
	}
	return fmt.Sprintf("import rejected (%d bad rows): %s", len(e.Errors), strings.Join(msgs, "; "))
}
