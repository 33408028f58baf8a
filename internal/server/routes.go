// AngelaMos | 2026
// routes.go

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/callboard/internal/ad"
	"github.com/carterperez-dev/templates/callboard/internal/admin"
	"github.com/carterperez-dev/templates/callboard/internal/auth"
	"github.com/carterperez-dev/templates/callboard/internal/feedback"
	"github.com/carterperez-dev/templates/callboard/internal/health"
	"github.com/carterperez-dev/templates/callboard/internal/middleware"
	"github.com/carterperez-dev/templates/callboard/internal/user"
)

// Routes collects the feature handlers mounted by Mount. Nil handlers are
// skipped.
type Routes struct {
	Health   *health.Handler
	Auth     *auth.Handler
	Users    *user.Handler
	Admin    *admin.Handler
	Ads      *ad.Handler
	Feedback *feedback.Handler

	Verifier    middleware.TokenVerifier
	AuthLimiter func(http.Handler) http.Handler

	JWKS        http.HandlerFunc
	Metrics     http.Handler
	MetricsPath string
}

// Mount registers every endpoint on r. Global middleware must already be
// installed.
func Mount(r chi.Router, rt Routes) {
	if rt.Health != nil {
		rt.Health.RegisterRoutes(r)
	}

	if rt.Metrics != nil && rt.MetricsPath != "" {
		r.Method(http.MethodGet, rt.MetricsPath, rt.Metrics)
	}

	if rt.JWKS != nil {
		r.Get("/.well-known/jwks.json", rt.JWKS)
	}

	if rt.Verifier == nil {
		return
	}

	authenticator := middleware.Authenticator(rt.Verifier)
	adminOnly := middleware.RequireAdmin

	// Ads and feedback share the /ads prefix and decide per operation
	// whether a principal is required.
	if rt.Ads != nil || rt.Feedback != nil {
		r.Route("/ads", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(rt.Verifier))
			if rt.Ads != nil {
				rt.Ads.RegisterRoutes(r)
			}
			if rt.Feedback != nil {
				rt.Feedback.RegisterRoutes(r)
			}
		})
	}

	if rt.Auth != nil {
		rt.Auth.RegisterRoutes(r, authenticator, rt.AuthLimiter)
	}

	if rt.Users != nil {
		rt.Users.RegisterRoutes(r, authenticator)
		rt.Users.RegisterAdminRoutes(r, authenticator, adminOnly)
	}

	if rt.Admin != nil {
		rt.Admin.RegisterRoutes(r, authenticator, adminOnly)
	}
}
