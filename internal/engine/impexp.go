package engine

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/tabular"
)

// ImportTransactions reconciles a bulk payload against the account in
// two phases: validate every row first, then commit the whole batch in
// one atomic insert. A single bad row rejects the entire import with a
// RejectedError listing every failure, and nothing is persisted — a
// half-applied import is worse than no import.
func (e *Engine) ImportTransactions(ctx context.Context, userID, accountID int64, rows []tabular.Row) (int, error) {
	if _, err := e.assertOwnsAccount(ctx, userID, accountID); err != nil {
		return 0, err
	}

	txs := make([]core.Transaction, 0, len(rows))
	var rowErrs []RowError
	for i, row := range rows {
		tx, err := parseFields(accountID, TransactionFields{
			Date:        row.Date,
			Kind:        row.Type,
			Category:    row.Category,
			Amount:      row.Amount,
			Description: row.Description,
		})
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Err: err})
			continue
		}
		txs = append(txs, tx)
	}

	if len(rowErrs) > 0 {
		slog.WarnContext(ctx, "Import rejected",
			"account_id", accountID,
			"rows", len(rows),
			"bad_rows", len(rowErrs))
		return 0, &RejectedError{Errors: rowErrs}
	}

	count, err := e.store.InsertTransactions(ctx, accountID, txs)
	if err != nil {
		return 0, fmt.Errorf("commit import batch: %w", err)
	}

	e.publish(ctx, "import committed", func(p EventPublisher) error {
		return p.PublishImportCommitted(ctx, accountID, count)
	})
	slog.InfoContext(ctx, "Import committed", "account_id", accountID, "count", count)
	return count, nil
}

// ExportTransactions serializes the account's transactions in natural
// store order with the fixed column set. The output re-imports into an
// equivalent transaction multiset.
func (e *Engine) ExportTransactions(ctx context.Context, userID, accountID int64) ([]tabular.Row, error) {
	if _, err := e.assertOwnsAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}

	txs, err := e.store.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	rows := make([]tabular.Row, len(txs))
	for i, t := range txs {
		rows[i] = tabular.Row{
			Date:        t.Date.String(),
			Type:        string(t.Kind),
			Category:    t.Category,
			Amount:      t.Amount.String(),
			Description: t.Description,
		}
	}
	return rows, nil
}
