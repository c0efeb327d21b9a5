package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"kofiapi/internal/http/handlers"
	"kofiapi/internal/middleware"
)

// NewRouter wires every route. The webhook is unauthenticated (Ko-fi cannot
// present credentials beyond the verification token inside the payload),
// user routes are owner-gated, admin routes sit behind the admin secret.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
	)

	r.Get("/healthz", app.Health)
	r.Get("/ping", app.Ping)

	r.Route("/kofi", func(r chi.Router) {
		r.Post("/webhook", app.Webhook)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOwner("token"))
			r.Get("/transactions/{token}", app.ListTransactions)
			r.Get("/transactions/{token}/{messageID}", app.GetTransaction)
			r.Get("/amount/{method}/{token}", app.Amount)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/{token}", app.CreateUser)
		r.With(middleware.RequireOwner("token")).Get("/{token}", app.GetUser)
		r.With(middleware.RequireOwner("token")).Patch("/{token}", app.UpdateUser)
		r.With(middleware.RequireOwnerOrAdmin("token", app.Cfg.AdminSecret)).Delete("/{token}", app.DeleteUser)
	})

	r.Route("/admin/db", func(r chi.Router) {
		r.Use(middleware.AdminSecret(app.Cfg.AdminSecret))
		r.Get("/users", app.AdminListUsers)
		r.Get("/transactions", app.AdminListTransactions)
	})

	r.Route("/db", func(r chi.Router) {
		r.Use(middleware.AdminSecret(app.Cfg.AdminSecret))
		r.Get("/export", app.ExportDB)
		r.Post("/import", app.ImportDB)
		r.Post("/recover", app.RecoverDB)
	})

	return r
}
