// Package engine is the ledger engine: every read or mutation of an
// account and its transactions goes through here. The engine never
// trusts caller-supplied ownership; it re-derives the user→account
// chain from the store on each call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// Store is the persistence contract the engine computes against.
// *storage.Store satisfies it; tests use an in-memory fake.
type Store interface {
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	GetAccountByName(ctx context.Context, userID int64, name string) (core.Account, error)
	ListAccounts(ctx context.Context, userID int64) ([]core.Account, error)
	CreateAccount(ctx context.Context, userID int64, name string) (core.Account, error)
	RenameAccount(ctx context.Context, id int64, name string) error
	DeleteAccount(ctx context.Context, id int64) error

	ListTransactions(ctx context.Context, accountID int64) ([]core.Transaction, error)
	InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	InsertTransactions(ctx context.Context, accountID int64, txs []core.Transaction) (int, error)
	DeleteTransactionsByAccount(ctx context.Context, accountID int64) error
}

// EventPublisher receives mutation events after they are committed.
// Publishing is best-effort: a failure is logged, never returned.
type EventPublisher interface {
	PublishImportCommitted(ctx context.Context, accountID int64, count int) error
	PublishTransactionsCleared(ctx context.Context, accountID int64) error
	PublishAccountDeleted(ctx context.Context, accountID int64) error
}

type Engine struct {
	store  Store
	events EventPublisher // optional, may be nil
}

func New(store Store, events EventPublisher) *Engine {
	return &Engine{store: store, events: events}
}

// TransactionFields is raw caller input for a single manual entry.
type TransactionFields struct {
	Date        string
	Kind        string
	Category    string
	Amount      string
	Description string
}

// ViewOptions narrow and order a ViewAccount result. Zero values mean
// "everything, insertion order".
type ViewOptions struct {
	Kind     string
	Category string
	SortKey  string
}

// assertOwnsAccount is the sole access-control check: the account must
// exist and belong to userID. A missing account reports the same
// ErrNotOwned as a foreign one so ids cannot be probed.
func (e *Engine) assertOwnsAccount(ctx context.Context, userID, accountID int64) (core.Account, error) {
	account, err := e.store.GetAccount(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Account{}, ErrNotOwned
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("load account %d: %w", accountID, err)
	}
	if account.UserID != userID {
		slog.WarnContext(ctx, "Cross-user account access refused",
			"user_id", userID,
			"account_id", accountID)
		return core.Account{}, ErrNotOwned
	}
	return account, nil
}

// ListAccounts returns the user's accounts in creation order.
func (e *Engine) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	return e.store.ListAccounts(ctx, userID)
}

// ViewAccount returns the account's transactions filtered and sorted
// per opts, plus the balance of exactly that view. Filter runs before
// sort, and the balance covers the filtered set, so the number shown
// always matches the rows shown.
func (e *Engine) ViewAccount(ctx context.Context, userID, accountID int64, opts ViewOptions) ([]core.Transaction, decimal.Decimal, error) {
	if _, err := e.assertOwnsAccount(ctx, userID, accountID); err != nil {
		return nil, decimal.Zero, err
	}

	var kind core.Kind
	if opts.Kind != "" {
		k, err := core.ParseKind(opts.Kind)
		if err != nil {
			return nil, decimal.Zero, err
		}
		kind = k
	}
	sortKey, err := core.ParseSortKey(opts.SortKey)
	if err != nil {
		return nil, decimal.Zero, err
	}

	txs, err := e.store.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("list transactions: %w", err)
	}

	view := core.Filter(txs, kind, opts.Category)
	view, err = core.SortBy(view, sortKey)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return view, core.Balance(view), nil
}

// AddTransaction validates one manual entry and persists it.
func (e *Engine) AddTransaction(ctx context.Context, userID, accountID int64, fields TransactionFields) (core.Transaction, error) {
	if _, err := e.assertOwnsAccount(ctx, userID, accountID); err != nil {
		return core.Transaction{}, err
	}

	tx, err := parseFields(accountID, fields)
	if err != nil {
		return core.Transaction{}, err
	}

	saved, err := e.store.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction added",
		"account_id", accountID,
		"transaction_id", saved.ID,
		"kind", string(saved.Kind),
		"amount", saved.Amount.String())
	return saved, nil
}

// ClearTransactions bulk-deletes every transaction in the account.
func (e *Engine) ClearTransactions(ctx context.Context, userID, accountID int64) error {
	if _, err := e.assertOwnsAccount(ctx, userID, accountID); err != nil {
		return err
	}
	if err := e.store.DeleteTransactionsByAccount(ctx, accountID); err != nil {
		return err
	}
	e.publish(ctx, "transactions cleared", func(p EventPublisher) error {
		return p.PublishTransactionsCleared(ctx, accountID)
	})
	return nil
}

// AddAccount creates a new account for the user. Names are unique per
// user; a clash reports ErrDuplicateAccountName instead of silently
// dropping the request.
func (e *Engine) AddAccount(ctx context.Context, userID int64, name string) (core.Account, error) {
	name = strings.TrimSpace(name)
	if err := (core.Account{UserID: userID, Name: name}).Validate(); err != nil {
		return core.Account{}, err
	}

	_, err := e.store.GetAccountByName(ctx, userID, name)
	if err == nil {
		return core.Account{}, ErrDuplicateAccountName
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return core.Account{}, fmt.Errorf("check account name: %w", err)
	}

	account, err := e.store.CreateAccount(ctx, userID, name)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	slog.InfoContext(ctx, "Account created", "user_id", userID, "account_id", account.ID)
	return account, nil
}

// RenameAccount changes the account name, keeping per-user uniqueness.
func (e *Engine) RenameAccount(ctx context.Context, userID, accountID int64, newName string) error {
	account, err := e.assertOwnsAccount(ctx, userID, accountID)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if err := (core.Account{UserID: userID, Name: newName}).Validate(); err != nil {
		return err
	}
	if newName == account.Name {
		return nil
	}
	if existing, err := e.store.GetAccountByName(ctx, userID, newName); err == nil && existing.ID != accountID {
		return ErrDuplicateAccountName
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check account name: %w", err)
	}
	return e.store.RenameAccount(ctx, accountID, newName)
}

// DeleteAccount removes the account and cascades its transactions
// atomically; the store guarantees no orphan is ever observable.
func (e *Engine) DeleteAccount(ctx context.Context, userID, accountID int64) error {
	if _, err := e.assertOwnsAccount(ctx, userID, accountID); err != nil {
		return err
	}
	if err := e.store.DeleteAccount(ctx, accountID); err != nil {
		return err
	}
	e.publish(ctx, "account deleted", func(p EventPublisher) error {
		return p.PublishAccountDeleted(ctx, accountID)
	})
	return nil
}

func (e *Engine) publish(ctx context.Context, what string, fn func(EventPublisher) error) {
	if e.events == nil {
		return
	}
	if err := fn(e.events); err != nil {
		// The mutation is already committed; the event is advisory.
		slog.ErrorContext(ctx, "Failed to publish event", "event", what, "error", err)
	}
}

func parseFields(accountID int64, fields TransactionFields) (core.Transaction, error) {
	date, err := core.ParseDate(fields.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(fields.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(fields.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		AccountID:   accountID,
		Date:        date,
		Kind:        kind,
		Category:    strings.TrimSpace(fields.Category),
		Amount:      amount,
		Description: strings.TrimSpace(fields.Description),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
