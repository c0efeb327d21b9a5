package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Header names accepted for presented credentials. Authorization: Bearer is
// accepted everywhere as well.
const (
	AdminSecretHeader = "X-Admin-Secret"
	OwnerTokenHeader  = "X-Verification-Token"
)

// Credential returns the secret presented on the request: the named header
// if set, otherwise a bearer token from the Authorization header.
func Credential(r *http.Request, header string) string {
	if v := r.Header.Get(header); v != "" {
		return v
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func equalSecret(presented, want string) bool {
	// Constant-time compare; the length leak is unavoidable and benign.
	return subtle.ConstantTimeCompare([]byte(presented), []byte(want)) == 1
}

// AdminSecret gates a route on the configured admin secret.
func AdminSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !equalSecret(Credential(r, AdminSecretHeader), secret) {
				unauthorized(w, "invalid admin secret key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner gates a route on ownership: the presented verification token
// must match the token in the named URL parameter.
func RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !equalSecret(Credential(r, OwnerTokenHeader), chi.URLParam(r, param)) {
				unauthorized(w, "verification token does not match this user")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnerOrAdmin passes when either the owner token or the admin
// secret is presented.
func RequireOwnerOrAdmin(param, adminSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := equalSecret(Credential(r, OwnerTokenHeader), chi.URLParam(r, param))
			admin := equalSecret(Credential(r, AdminSecretHeader), adminSecret)
			if !owner && !admin {
				unauthorized(w, "verification token or admin secret required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "message": msg})
}
