package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxSnapshotBytes caps uploaded snapshot files.
const maxSnapshotBytes = 64 << 20

// AdminListUsers returns the full user table, unfiltered.
func (a *App) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.Users.List(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, users)
}

// AdminListTransactions returns the full transaction table, unfiltered.
func (a *App) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := a.Txns.ListAll(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, txns)
}

// ExportDB streams a full snapshot of the store as a downloadable file.
func (a *App) ExportDB(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Backup.Export(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}

	name := fmt.Sprintf("%s_export_%d.json",
		strings.ReplaceAll(a.Cfg.ProjectName, " ", "_"),
		time.Now().UTC().Unix())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(snap)
}

// ImportDB merges an uploaded snapshot into the store. Rows already present
// are left untouched; the merge is all-or-nothing.
func (a *App) ImportDB(w http.ResponseWriter, r *http.Request) {
	raw, ok := a.readSnapshotUpload(w, r)
	if !ok {
		return
	}
	stats, err := a.Backup.Import(r.Context(), raw)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"message":            "snapshot imported",
		"users_added":        stats.UsersAdded,
		"transactions_added": stats.TransactionsAdded,
	})
}

// RecoverDB replaces the store's contents with an uploaded snapshot. The
// caller must pass confirm=<project name> on top of the admin secret; the
// snapshot is validated before anything is discarded.
func (a *App) RecoverDB(w http.ResponseWriter, r *http.Request) {
	raw, ok := a.readSnapshotUpload(w, r)
	if !ok {
		return
	}
	if err := a.Backup.Recover(r.Context(), raw, r.URL.Query().Get("confirm")); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "store recovered from snapshot"})
}

func (a *App) readSnapshotUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxSnapshotBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "expected multipart upload with a 'file' field")
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "missing 'file' field")
		return nil, false
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxSnapshotBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable upload")
		return nil, false
	}
	return raw, true
}
