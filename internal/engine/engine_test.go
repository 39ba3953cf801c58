package engine

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/core"
)

const (
	alice int64 = 100
	bob   int64 = 200
)

func newTestEngine(t *testing.T) (*Engine, *memStore, core.Account) {
	t.Helper()
	store := newMemStore()
	account := store.addAccount(alice, "Checking")
	return New(store, nil), store, account
}

func addTx(t *testing.T, e *Engine, accountID int64, date, kind, category, amount string) core.Transaction {
	t.Helper()
	tx, err := e.AddTransaction(context.Background(), alice, accountID, TransactionFields{
		Date: date, Kind: kind, Category: category, Amount: amount,
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	return tx
}

func TestViewAccount(t *testing.T) {
	e, _, account := newTestEngine(t)
	ctx := context.Background()

	addTx(t, e, account.ID, "2024-01-01", "Income", "Salary", "1000")
	addTx(t, e, account.ID, "2024-01-02", "Expense", "Food", "50")

	txs, balance, err := e.ViewAccount(ctx, alice, account.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if balance.String() != "950" {
		t.Fatalf("balance %s, want 950", balance)
	}
}

func TestViewAccountBalanceTracksFilter(t *testing.T) {
	e, _, account := newTestEngine(t)
	ctx := context.Background()

	addTx(t, e, account.ID, "2024-01-01", "Income", "Salary", "1000")
	addTx(t, e, account.ID, "2024-01-02", "Expense", "Food", "50")

	txs, balance, err := e.ViewAccount(ctx, alice, account.ID, ViewOptions{Kind: "Expense"})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if balance.String() != "-50" {
		t.Fatalf("filtered balance %s, want -50", balance)
	}
}

func TestViewAccountSortAndFilterValidation(t *testing.T) {
	e, _, account := newTestEngine(t)
	ctx := context.Background()

	if _, _, err := e.ViewAccount(ctx, alice, account.ID, ViewOptions{SortKey: "nope"}); !errors.Is(err, core.ErrUnknownSortKey) {
		t.Fatalf("got %v, want ErrUnknownSortKey", err)
	}
	if _, _, err := e.ViewAccount(ctx, alice, account.ID, ViewOptions{Kind: "Transfer"}); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("got %v, want ErrInvalidKind", err)
	}
}

func TestOwnershipGuard(t *testing.T) {
	e, store, _ := newTestEngine(t)
	ctx := context.Background()
	foreign := store.addAccount(bob, "Bob's")

	ops := map[string]func() error{
		"view": func() error {
			_, _, err := e.ViewAccount(ctx, alice, foreign.ID, ViewOptions{})
			return err
		},
		"add": func() error {
			_, err := e.AddTransaction(ctx, alice, foreign.ID, TransactionFields{
				Date: "2024-01-01", Kind: "Income", Category: "x", Amount: "1",
			})
			return err
		},
		"clear":  func() error { return e.ClearTransactions(ctx, alice, foreign.ID) },
		"rename": func() error { return e.RenameAccount(ctx, alice, foreign.ID, "Mine") },
		"delete": func() error { return e.DeleteAccount(ctx, alice, foreign.ID) },
		"export": func() error {
			_, err := e.ExportTransactions(ctx, alice, foreign.ID)
			return err
		},
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrNotOwned) {
			t.Fatalf("%s on foreign account: got %v, want ErrNotOwned", name, err)
		}
	}

	// A nonexistent account is just as not-owned as a foreign one.
	if _, _, err := e.ViewAccount(ctx, alice, 9999, ViewOptions{}); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("missing account: got %v, want ErrNotOwned", err)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	e, _, account := newTestEngine(t)
	ctx := context.Background()

	bads := []TransactionFields{
		{Date: "bogus", Kind: "Income", Category: "c", Amount: "1"},
		{Date: "2024-01-01", Kind: "Other", Category: "c", Amount: "1"},
		{Date: "2024-01-01", Kind: "Income", Category: "c", Amount: "-5"},
		{Date: "2024-01-01", Kind: "Income", Category: "", Amount: "1"},
	}
	for i, fields := range bads {
		if _, err := e.AddTransaction(ctx, alice, account.ID, fields); err == nil {
			t.Fatalf("case %d expected validation error", i)
		}
	}
}

func TestClearTransactions(t *testing.T) {
	e, _, account := newTestEngine(t)
	ctx := context.Background()

	addTx(t, e, account.ID, "2024-01-01", "Income", "Salary", "1000")
	if err := e.ClearTransactions(ctx, alice, account.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	txs, _, err := e.ViewAccount(ctx, alice, account.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("got %d transactions after clear, want 0", len(txs))
	}
}

func TestAddAccountDuplicateName(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.AddAccount(ctx, alice, "Checking"); !errors.Is(err, ErrDuplicateAccountName) {
		t.Fatalf("got %v, want ErrDuplicateAccountName", err)
	}
	// Same name under a different user is fine.
	if _, err := e.AddAccount(ctx, bob, "Checking"); err != nil {
		t.Fatalf("other user's duplicate name: %v", err)
	}
	if _, err := e.AddAccount(ctx, alice, "  "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestRenameAccount(t *testing.T) {
	e, store, account := newTestEngine(t)
	ctx := context.Background()

	if err := e.RenameAccount(ctx, alice, account.ID, "Daily"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := store.GetAccount(ctx, account.ID)
	if err != nil || got.Name != "Daily" {
		t.Fatalf("got %+v, %v", got, err)
	}

	// Renaming onto a sibling's name is a duplicate.
	other, _ := e.AddAccount(ctx, alice, "Savings")
	if err := e.RenameAccount(ctx, alice, other.ID, "Daily"); !errors.Is(err, ErrDuplicateAccountName) {
		t.Fatalf("got %v, want ErrDuplicateAccountName", err)
	}
	// Renaming to the current name is a no-op, not a duplicate.
	if err := e.RenameAccount(ctx, alice, account.ID, "Daily"); err != nil {
		t.Fatalf("self rename: %v", err)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	e, store, account := newTestEngine(t)
	ctx := context.Background()

	addTx(t, e, account.ID, "2024-01-01", "Income", "Salary", "1000")
	addTx(t, e, account.ID, "2024-01-02", "Expense", "Food", "50")

	if err := e.DeleteAccount(ctx, alice, account.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	orphans, err := store.ListTransactions(ctx, account.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("found %d orphaned transactions", len(orphans))
	}
	accounts, _ := e.ListAccounts(ctx, alice)
	if len(accounts) != 0 {
		t.Fatalf("account still listed after delete")
	}
}
