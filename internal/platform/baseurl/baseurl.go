// Package baseurl resolves the externally reachable base URL of the
// application from environment signals and coerces callback URLs to HTTPS
// outside local development. Payment gateways reject plain-HTTP return and
// notify URLs in production.
package baseurl

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/carepulse/carepulse/internal/config"
)

// placeholderURL is returned when the server runs in production without an
// explicit PUBLIC_APP_URL. It will not work; the warning log tells the
// operator what to set.
const placeholderURL = "https://yourdomain.com"

// DevBaseURL is the local development default.
const DevBaseURL = "http://localhost:3000"

// Resolver derives base URLs from the deployment environment.
type Resolver struct {
	PublicAppURL string
	PlatformURL  string
	PlatformEnv  string
	Env          string

	logger zerolog.Logger
}

func New(publicAppURL, platformURL, platformEnv, env string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		PublicAppURL: publicAppURL,
		PlatformURL:  platformURL,
		PlatformEnv:  platformEnv,
		Env:          env,
		logger:       logger,
	}
}

// FromConfig builds a Resolver from the loaded server configuration.
func FromConfig(cfg *config.Config, logger zerolog.Logger) *Resolver {
	return New(cfg.PublicAppURL, cfg.PlatformURL, cfg.PlatformEnv, cfg.Env, logger)
}

// BaseURL resolves one base URL with the following precedence:
// explicit PUBLIC_APP_URL override, platform-provided URL (always HTTPS),
// production platform/runtime mode (placeholder fallback with a warning),
// local development default.
func (r *Resolver) BaseURL() string {
	if r.PublicAppURL != "" {
		return r.PublicAppURL
	}

	if r.PlatformURL != "" {
		// The deployment platform terminates TLS for every deployment, so
		// the bare host it hands us is always reachable over HTTPS.
		return "https://" + r.PlatformURL
	}

	if r.PlatformEnv == "production" || r.Env == "production" {
		r.logger.Warn().Msg("PUBLIC_APP_URL is not set in production; falling back to placeholder domain")
		return placeholderURL
	}

	return DevBaseURL
}

// productionLike reports whether resolved URLs must be served over HTTPS.
// Preview deployments also run behind TLS.
func (r *Resolver) productionLike() bool {
	return r.Env == "production" ||
		r.PlatformEnv == "production" ||
		r.PlatformEnv == "preview"
}

// EnsureHTTPS forces the URL to HTTPS in production or preview environments
// and leaves it untouched in local development. Applying it twice yields the
// same result as applying it once.
func (r *Resolver) EnsureHTTPS(url string) string {
	if strings.HasPrefix(url, "https://") {
		return url
	}
	if !r.productionLike() {
		return url
	}
	converted := strings.Replace(url, "http://", "https://", 1)
	if converted != url {
		r.logger.Debug().Str("from", url).Str("to", converted).Msg("converted callback URL to https")
	}
	return converted
}
