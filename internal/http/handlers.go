package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/engine"
	"ledger/internal/tabular"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	handle := strings.TrimSpace(r.Form.Get("handle"))
	secret := r.Form.Get("secret")
	if handle == "" || secret == "" {
		http.Error(w, "handle and secret required", http.StatusBadRequest)
		return
	}
	if _, err := s.identity.GetUserByHandle(r.Context(), handle); err == nil {
		http.Error(w, "handle already taken", http.StatusConflict)
		return
	}
	// The secret arrives pre-hashed from the identity layer; it is
	// stored verbatim.
	user, err := s.identity.CreateUser(r.Context(), handle, secret)
	if err != nil {
		slog.ErrorContext(r.Context(), "User registration failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": user.ID, "handle": user.Handle})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.engine.ListAccounts(r.Context(), userID(r))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, map[string]any{"id": a.ID, "name": a.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	account, err := s.engine.AddAccount(r.Context(), userID(r), r.Form.Get("name"))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": account.ID, "name": account.Name})
}

func (s *Server) handleViewAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	opts := engine.ViewOptions{
		Kind:     r.URL.Query().Get("type"),
		Category: r.URL.Query().Get("category"),
		SortKey:  r.URL.Query().Get("sort_by"),
	}
	txs, balance, err := s.engine.ViewAccount(r.Context(), userID(r), accountID, opts)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(txs))
	for _, t := range txs {
		out = append(out, map[string]any{
			"id":          t.ID,
			"date":        t.Date.String(),
			"type":        string(t.Kind),
			"category":    t.Category,
			"amount":      t.Amount.String(),
			"description": t.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": out,
		"balance":      balance.String(),
	})
}

func (s *Server) handleRenameAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if err := s.engine.RenameAccount(r.Context(), userID(r), accountID, r.Form.Get("new_name")); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.engine.DeleteAccount(r.Context(), userID(r), accountID); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	fields := engine.TransactionFields{
		Date:        r.Form.Get("date"),
		Kind:        r.Form.Get("type"),
		Category:    r.Form.Get("category"),
		Amount:      strings.ReplaceAll(r.Form.Get("amount"), " ", ""),
		Description: r.Form.Get("description"),
	}
	tx, err := s.engine.AddTransaction(r.Context(), userID(r), accountID, fields)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": tx.ID})
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.engine.ClearTransactions(r.Context(), userID(r), accountID); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var rows []tabular.Row
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		rows, err = tabular.ReadCSV(file)
	case ".xlsx":
		rows, err = tabular.ReadXLSX(file)
	default:
		http.Error(w, "unsupported file type: want .csv or .xlsx", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if s.importMaxRows > 0 && len(rows) > s.importMaxRows {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	count, err := s.engine.ImportTransactions(r.Context(), userID(r), accountID, rows)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": count})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}
	rows, err := s.engine.ExportTransactions(r.Context(), userID(r), accountID)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
		err = tabular.WriteCSV(w, rows)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
		err = tabular.WriteXLSX(w, rows)
	default:
		http.Error(w, "unsupported format: want csv or xlsx", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Export write failed", "error", err, "format", format)
	}
}

// writeEngineError maps engine errors onto HTTP statuses. Not-owned is
// reported as 404 so foreign account ids look exactly like missing
// ones.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *engine.RejectedError
	switch {
	case errors.Is(err, engine.ErrNotOwned):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, engine.ErrDuplicateAccountName):
		http.Error(w, "account name already in use", http.StatusConflict)
	case errors.As(err, &rejected):
		out := make([]map[string]any, 0, len(rejected.Errors))
		for _, re := range rejected.Errors {
			out = append(out, map[string]any{"row": re.Row, "reason": re.Err.Error()})
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"rejected": out})
	case isValidationError(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		slog.ErrorContext(r.Context(), "Engine call failed", "error", err, "url", r.URL.Path)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidKind,
		core.ErrInvalidAmount,
		core.ErrNegativeAmount,
		core.ErrEmptyCategory,
		core.ErrEmptyAccountName,
		core.ErrAccountNameTooLong,
		core.ErrDescriptionTooLong,
		core.ErrUnknownSortKey,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
