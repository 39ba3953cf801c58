// Package storage is the SQLite entity store behind the ledger engine.
// It persists users, accounts and transactions and provides the atomic
// batch operations (bulk insert, cascade delete) the engine's
// contracts depend on.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, handle, secret string) (core.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (handle, secret) VALUES (?, ?)`, handle, secret)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return core.User{ID: id, Handle: handle, Secret: secret}, nil
}

func (s *Store) GetUserByHandle(ctx context.Context, handle string) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, handle, secret FROM users WHERE handle = ?`, handle).
		Scan(&u.ID, &u.Handle, &u.Secret)
	if err == sql.ErrNoRows {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by handle: %w", err)
	}
	return u, nil
}

// --- accounts ---

func (s *Store) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var a core.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.UserID, &a.Name)
	if err == sql.ErrNoRows {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *Store) GetAccountByName(ctx context.Context, userID int64, name string) (core.Account, error) {
	var a core.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name FROM accounts WHERE user_id = ? AND name = ?`, userID, name).
		Scan(&a.ID, &a.UserID, &a.Name)
	if err == sql.ErrNoRows {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account by name: %w", err)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, userID int64, name string) (core.Account, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name) VALUES (?, ?)`, userID, name)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	return core.Account{ID: id, UserID: userID, Name: name}, nil
}

func (s *Store) RenameAccount(ctx context.Context, id int64, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename account rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account and all its transactions in one
// transaction. No reader ever observes an orphaned transaction.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE account_id = ?`, id); err != nil {
		return fmt.Errorf("cascade transactions: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete account: %w", err)
	}

	slog.InfoContext(ctx, "Account deleted with cascade", "account_id", id)
	return nil
}

// --- transactions ---

const txColumns = `id, account_id, tx_date, kind, category, amount, description`

func scanTransaction(scan func(dest ...any) error) (core.Transaction, error) {
	var (
		t         core.Transaction
		date, amt string
		kind      string
	)
	if err := scan(&t.ID, &t.AccountID, &date, &kind, &t.Category, &amt, &t.Description); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	k, err := core.ParseKind(kind)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored kind %q: %w", kind, err)
	}
	a, err := core.ParseAmount(amt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored amount %q: %w", amt, err)
	}
	t.Date, t.Kind, t.Amount = d, k, a
	return t, nil
}

// ListTransactions returns an account's transactions in insertion
// order.
func (s *Store) ListTransactions(ctx context.Context, accountID int64) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (account_id, tx_date, kind, category, amount, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.Date.String(), string(t.Kind), t.Category, t.Amount.String(), t.Description)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id
	return t, nil
}

// InsertTransactions inserts the whole batch in one SQL transaction:
// either every row lands or none do.
func (s *Store) InsertTransactions(ctx context.Context, accountID int64, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin batch insert: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.PrepareContext(ctx,
		`INSERT INTO transactions (account_id, tx_date, kind, category, amount, description)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		if _, err := stmt.ExecContext(ctx,
			accountID, t.Date.String(), string(t.Kind), t.Category, t.Amount.String(), t.Description); err != nil {
			return 0, fmt.Errorf("batch insert row %d: %w", i+1, err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch insert: %w", err)
	}

	slog.InfoContext(ctx, "Transaction batch inserted",
		"account_id", accountID,
		"count", len(txs))
	return len(txs), nil
}

// DeleteTransactionsByAccount clears all of an account's transactions.
func (s *Store) DeleteTransactionsByAccount(ctx context.Context, accountID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}
