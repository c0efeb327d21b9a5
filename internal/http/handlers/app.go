package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"kofiapi/internal/domain"
	"kofiapi/internal/infra"
	"kofiapi/internal/service"
)

// App bundles everything the HTTP handlers need.
type App struct {
	Cfg      *infra.Config
	Logger   zerolog.Logger
	Users    domain.UserRepository
	Txns     domain.TransactionRepository
	Ingestor *service.Ingestor
	Amounts  *service.Amounts
	Backup   *service.Backup
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]string{"error": code, "message": msg})
}

// fail maps a domain error to its stable HTTP response. Anything outside
// the taxonomy is a 500 with a generic body; detail stays in the log.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", "already exists")
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
