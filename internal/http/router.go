package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"claimsetter/backend/internal/config"
	"claimsetter/backend/internal/domain/admin"
	"claimsetter/backend/internal/domain/audit"
	"claimsetter/backend/internal/middleware"
	"claimsetter/backend/internal/utils"

	"github.com/go-chi/chi/v5"
)

// AdminService is implemented by *admin.Service.
type AdminService interface {
	Grant(ctx context.Context, req admin.GrantRequest) (*admin.Grant, error)
	Revoke(ctx context.Context, email string) (*admin.Grant, error)
	Status(ctx context.Context, email string) (*admin.Status, error)
	ListAdmins(ctx context.Context) ([]admin.Status, error)
	History(ctx context.Context, email string, limit int) ([]audit.Event, error)
}

type RouterDeps struct {
	Cfg      config.Config
	Verifier middleware.TokenVerifier
	AdminSvc AdminService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.Verifier))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			WriteJSON(w, 200, map[string]any{
				"uid":     au.UID,
				"email":   au.Email,
				"claims":  au.Claims,
				"isAdmin": middleware.IsAdmin(au.Claims),
			})
		})

		// ===== Admin routes =====
		pr.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireAdmin)

			ar.Get("/v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
				out, err := d.AdminSvc.ListAdmins(r.Context())
				if err != nil {
					FailAdmin(w, err)
					return
				}
				WriteJSON(w, 200, map[string]any{"admins": out})
			})

			ar.Get("/v1/admin/users/{email}", func(w http.ResponseWriter, r *http.Request) {
				out, err := d.AdminSvc.Status(r.Context(), emailParam(r))
				if err != nil {
					FailAdmin(w, err)
					return
				}
				WriteJSON(w, 200, out)
			})

			ar.Get("/v1/admin/users/{email}/history", func(w http.ResponseWriter, r *http.Request) {
				limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
				out, err := d.AdminSvc.History(r.Context(), emailParam(r), limit)
				if err != nil {
					FailAdmin(w, err)
					return
				}
				WriteJSON(w, 200, map[string]any{"events": out})
			})

			ar.Post("/v1/admin/grants", func(w http.ResponseWriter, r *http.Request) {
				var in admin.GrantRequest
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					Fail(w, 400, "invalid json")
					return
				}
				out, err := d.AdminSvc.Grant(r.Context(), in)
				if err != nil {
					FailAdmin(w, err)
					return
				}
				WriteJSON(w, 200, out)
			})

			ar.Delete("/v1/admin/grants/{email}", func(w http.ResponseWriter, r *http.Request) {
				au, _ := middleware.GetAuthUser(r.Context())
				email := emailParam(r)
				if au != nil && au.Email != "" && utils.NormalizeEmail(au.Email) == utils.NormalizeEmail(email) {
					Fail(w, 400, "cannot revoke your own admin claim")
					return
				}
				out, err := d.AdminSvc.Revoke(r.Context(), email)
				if err != nil {
					FailAdmin(w, err)
					return
				}
				WriteJSON(w, 200, out)
			})
		})
	})

	return r
}

func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
