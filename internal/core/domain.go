package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

type (
	// Kind is the closed set of transaction kinds. The sign of a
	// transaction is carried by its Kind, never by the amount.
	Kind string

	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	User struct {
		ID     int64
		Handle string
		// Secret is opaque here; hashing and verification belong to the
		// identity layer.
		Secret string
	}

	Account struct {
		ID     int64
		UserID int64
		Name   string
	}

	Transaction struct {
		ID          int64
		AccountID   int64
		Date        Date
		Kind        Kind
		Category    string
		Amount      Amount
		Description string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidKind      = errors.New("invalid kind: must be Income or Expense")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyAccountName = errors.New("empty account name")
	ErrEmptyHandle      = errors.New("empty handle")

	ErrAccountNameTooLong = errors.New("account name too long (max 50 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// dateFormats are the accepted input layouts. Exports always use the
// first one, so an exported file re-imports unchanged.
var dateFormats = []string{"2006-01-02", "02-01-2006"}

// ParseDate parses a calendar date in ISO (2006-01-02) or day-first
// (02-01-2006) form.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date in ISO form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParseKind validates a kind string against the closed enum.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Income, Expense:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidKind, s)
	}
}

func (k Kind) Validate() error {
	_, err := ParseKind(string(k))
	return err
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Handle) == "" {
		return ErrEmptyHandle
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyAccountName
	}
	if len(a.Name) > 50 {
		return ErrAccountNameTooLong
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}
