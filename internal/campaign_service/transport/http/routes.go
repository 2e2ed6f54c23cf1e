package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/middleware"
)

// RouteConfig carries the middleware the tenant routes are wrapped in.
type RouteConfig struct {
	JWTSecret []byte
	// SendLimiter guards the send endpoint; nil disables it.
	SendLimiter func(http.Handler) http.Handler
	Logger      *slog.Logger
}

// RegisterRoutes mounts the tenant API under /api/v1/tenant/{tenantId}.
func RegisterRoutes(r chi.Router, campaigns *CampaignHandler, instances *CampaignInstanceHandler, cfg RouteConfig) {
	perm := func(p string) func(http.Handler) http.Handler {
		return middleware.BasicPermissionCheckMiddleware(p, cfg.Logger)
	}
	sendLimiter := cfg.SendLimiter
	if sendLimiter == nil {
		sendLimiter = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/api/v1/tenant/{"+middleware.TenantIDParam+"}", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.Logger))
		r.Use(middleware.TenantMatchMiddleware(cfg.Logger))

		r.Route("/campaign", func(r chi.Router) {
			r.With(perm(domain.PermissionCampaignCreate)).Post("/", campaigns.Create)
			r.With(perm(domain.PermissionCampaignDestroy)).Delete("/", campaigns.DestroyAll)
			r.With(perm(domain.PermissionCampaignImport)).Post("/import", campaigns.Import)
			r.With(perm(domain.PermissionCampaignAutocomplete)).Get("/autocomplete", campaigns.Autocomplete)
			r.With(perm(domain.PermissionCampaignRead)).Get("/", campaigns.List)
			r.With(perm(domain.PermissionCampaignRead)).Get("/{id}", campaigns.Get)
			r.With(perm(domain.PermissionCampaignEdit)).Put("/{id}", campaigns.Update)
			r.With(perm(domain.PermissionCampaignRead)).Get("/{id}/review", campaigns.Review)
			r.With(perm(domain.PermissionCampaignSend), sendLimiter).Post("/{id}/send", campaigns.Send)
		})

		r.Route("/campaign-instance", func(r chi.Router) {
			r.Use(perm(domain.PermissionCampaignInstanceRead))
			r.Get("/", instances.ListInstances)
			r.Get("/{id}", instances.GetInstance)
		})

		r.Route("/campaign-instance-emails", func(r chi.Router) {
			r.With(perm(domain.PermissionCampaignInstanceEmailsCreate)).Post("/", instances.CreateEmail)
			r.With(perm(domain.PermissionCampaignInstanceEmailsImport)).Post("/import", instances.ImportEmail)
			r.With(perm(domain.PermissionCampaignInstanceEmailsEdit)).Put("/{id}", instances.UpdateEmail)
			r.With(perm(domain.PermissionCampaignInstanceEmailsRead)).Get("/", instances.ListEmails)
		})
	})
}
