package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAdminSecret(t *testing.T) {
	r := chi.NewRouter()
	r.With(AdminSecret("s3cret")).Get("/admin", okHandler)

	cases := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"valid header", AdminSecretHeader, "s3cret", http.StatusOK},
		{"valid bearer", "Authorization", "Bearer s3cret", http.StatusOK},
		{"wrong secret", AdminSecretHeader, "guess", http.StatusUnauthorized},
		{"no credential", "", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireOwner(t *testing.T) {
	r := chi.NewRouter()
	r.With(RequireOwner("token")).Get("/user/{token}", okHandler)

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"matching token", "tok-1", http.StatusOK},
		{"someone else's token", "tok-2", http.StatusUnauthorized},
		{"no token", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user/tok-1", nil)
			if tc.token != "" {
				req.Header.Set(OwnerTokenHeader, tc.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireOwnerViaBearer(t *testing.T) {
	r := chi.NewRouter()
	r.With(RequireOwner("token")).Get("/user/{token}", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/user/tok-1", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	r := chi.NewRouter()
	r.With(RequireOwnerOrAdmin("token", "s3cret")).Delete("/user/{token}", okHandler)

	cases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"owner token", map[string]string{OwnerTokenHeader: "tok-1"}, http.StatusOK},
		{"admin secret", map[string]string{AdminSecretHeader: "s3cret"}, http.StatusOK},
		{"wrong everything", map[string]string{OwnerTokenHeader: "tok-2", AdminSecretHeader: "guess"}, http.StatusUnauthorized},
		{"no credentials", nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/user/tok-1", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCredentialPrefersHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminSecretHeader, "from-header")
	req.Header.Set("Authorization", "Bearer from-bearer")
	if got := Credential(req, AdminSecretHeader); got != "from-header" {
		t.Errorf("Credential = %q, want the dedicated header to win", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "basic not-a-bearer")
	if got := Credential(req, AdminSecretHeader); got != "" {
		t.Errorf("Credential = %q, want empty for non-bearer auth", got)
	}
}
