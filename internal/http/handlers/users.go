package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kofiapi/internal/currency"
	"kofiapi/internal/domain"
)

type createUserRequest struct {
	Name              string `json:"name"`
	RetentionDays     *int   `json:"data_retention_days"`
	PreferredCurrency string `json:"preferred_currency"`
}

type updateUserRequest struct {
	RetentionDays     *int    `json:"data_retention_days"`
	PreferredCurrency *string `json:"preferred_currency"`
}

type userResponse struct {
	domain.User
	// EffectiveRetentionDays is the resolved window: the user's override or
	// the configured default when none is set.
	EffectiveRetentionDays int `json:"effective_retention_days"`
}

func (a *App) userResponse(u *domain.User) userResponse {
	return userResponse{User: *u, EffectiveRetentionDays: u.ResolveRetention(a.Cfg.RetentionDays)}
}

// CreateUser explicitly registers a verification token. The body is
// optional; an empty body creates a user with defaults. An already-known
// token is a conflict, unlike webhook ingestion which upserts silently.
func (a *App) CreateUser(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req createUserRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}
	if req.RetentionDays != nil && *req.RetentionDays <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "data_retention_days must be positive")
		return
	}
	preferred := "USD"
	if req.PreferredCurrency != "" {
		preferred, err = currency.Normalize(req.PreferredCurrency)
		if err != nil {
			a.fail(w, err)
			return
		}
	}

	user := &domain.User{
		VerificationToken: token,
		Name:              req.Name,
		RetentionDays:     req.RetentionDays,
		PreferredCurrency: preferred,
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, a.userResponse(user))
}

func (a *App) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.Get(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, a.userResponse(user))
}

// UpdateUser permits only retention-window and preferred-currency changes;
// everything else about a user is immutable.
func (a *App) UpdateUser(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.RetentionDays == nil && req.PreferredCurrency == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "nothing to update")
		return
	}

	if req.RetentionDays != nil {
		if *req.RetentionDays <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "data_retention_days must be positive")
			return
		}
		if err := a.Users.UpdateRetention(r.Context(), token, *req.RetentionDays); err != nil {
			a.fail(w, err)
			return
		}
	}
	if req.PreferredCurrency != nil {
		normalized, err := currency.Normalize(*req.PreferredCurrency)
		if err != nil {
			a.fail(w, err)
			return
		}
		if err := a.Users.UpdatePreferredCurrency(r.Context(), token, normalized); err != nil {
			a.fail(w, err)
			return
		}
	}

	user, err := a.Users.Get(r.Context(), token)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, a.userResponse(user))
}

// DeleteUser removes the user and cascades to its transactions.
func (a *App) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.Users.Delete(r.Context(), chi.URLParam(r, "token")); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
