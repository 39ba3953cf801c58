package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-02", "2024-01-02", true},
		{"02-01-2024", "2024-01-02", true},
		{" 2024-12-31 ", "2024-12-31", true},
		{"2024-13-01", "", false},
		{"not a date", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.ok && d.String() != tc.want {
			t.Fatalf("case %d got %q, want %q", i, d.String(), tc.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("Income"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := ParseKind("Expense"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, bad := range []string{"income", "Transfer", "", "EXPENSE"} {
		if _, err := ParseKind(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	amt := mustAmount(t, "10.50")
	good := Transaction{
		Date:        NewDate(2024, 1, 1),
		Kind:        Income,
		Category:    "Salary",
		Amount:      amt,
		Description: "January",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{Time: time.Time{}}, Kind: Income, Category: "c", Amount: amt},
		{Date: NewDate(2024, 1, 1), Kind: "Other", Category: "c", Amount: amt},
		{Date: NewDate(2024, 1, 1), Kind: Income, Category: "  ", Amount: amt},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{Name: "Checking"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: ""}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	long := strings.Repeat("x", 51)
	if err := (Account{Name: long}).Validate(); !errors.Is(err, ErrAccountNameTooLong) {
		t.Fatalf("got %v, want ErrAccountNameTooLong", err)
	}
}

func TestTransactionDescriptionLength(t *testing.T) {
	tx := Transaction{
		Date:        NewDate(2024, 1, 1),
		Kind:        Income,
		Category:    "Salary",
		Amount:      mustAmount(t, "10"),
		Description: strings.Repeat("x", 201),
	}
	if err := tx.Validate(); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("got %v, want ErrDescriptionTooLong", err)
	}
	tx.Description = strings.Repeat("x", 200)
	if err := tx.Validate(); err != nil {
		t.Fatalf("200 characters should be ok, got %v", err)
	}
}

func mustAmount(t *testing.T, s string) Amount {
	t.Helper()
	a, err := ParseAmount(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return a
}
