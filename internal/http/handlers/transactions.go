package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListTransactions returns every transaction belonging to the user.
func (a *App) ListTransactions(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	// 404 for unknown tokens, an empty list for known ones.
	if _, err := a.Users.Get(r.Context(), token); err != nil {
		a.fail(w, err)
		return
	}
	items, err := a.Txns.ListByUser(r.Context(), token)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, items)
}

// GetTransaction returns a single transaction scoped to its owner.
func (a *App) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := a.Txns.Get(r.Context(), chi.URLParam(r, "token"), chi.URLParam(r, "messageID"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, txn)
}

// Amount aggregates the user's donation amounts. method is one of total,
// recent or latest; optional query parameters `since` (ISO 8601, recent
// only) and `currency` (target, defaults to the user's preference).
func (a *App) Amount(w http.ResponseWriter, r *http.Request) {
	total, err := a.Amounts.Total(
		r.Context(),
		chi.URLParam(r, "token"),
		chi.URLParam(r, "method"),
		r.URL.Query().Get("since"),
		r.URL.Query().Get("currency"),
	)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, total)
}
