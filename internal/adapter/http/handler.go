package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"adbarter/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds the exchange usecase to execute business logic, an
// identity provider to resolve the caller, and a logger for structured
// logging. Routes are registered on a chi.Router.
type Handler struct {
	svc      port.ExchangeUseCase
	identity IdentityProvider
	logger   *slog.Logger
	router   chi.Router
}

// NewHandler creates a handler with all routes configured. Everything
// except the country list and /metrics requires a resolved identity.
func NewHandler(svc port.ExchangeUseCase, identity IdentityProvider, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, identity: identity, logger: logger}
	r := chi.NewRouter()

	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/countries", h.handleCountries)

		r.Group(func(r chi.Router) {
			r.Use(h.withIdentity)

			r.Post("/profile", h.handleRegister)
			r.Get("/profile", h.handleGetProfile)
			r.Put("/profile/country", h.handleSetCountry)
			r.Delete("/profile", h.handleDeleteAccount)

			r.Post("/campaigns", h.handleCreateCampaign)
			r.Get("/campaigns", h.handleMyCampaigns)
			r.Delete("/campaigns/{id}", h.handleCancelCampaign)

			r.Get("/ads/next", h.handleNextAd)
			r.Post("/ads/{id}/view", h.handleClaimView)

			r.Get("/admin/campaigns", h.handlePendingCampaigns)
			r.Post("/admin/campaigns/{id}/approve", h.handleApprove)
			r.Post("/admin/campaigns/{id}/reject", h.handleReject)

			r.Get("/stats/overview", h.handleStatsOverview)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler with CORS applied. The UI is
// served from a different origin, so credentials and the identity headers
// must be allowed through.
func (h *Handler) Router() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-User-Id", "X-User-Admin"},
	})
	return c.Handler(h.router)
}
