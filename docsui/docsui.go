// Package docsui serves interactive HTML documentation for a generated
// OpenAPI document. The page embeds Swagger UI and points it at a spec
// endpoint served elsewhere (see the openapi package's SpecServer).
//
// Both the page title and the spec URL are treated as untrusted input:
// the title is HTML-escaped and truncated, and the spec URL must be a
// relative path under the configured prefix. Values that fail
// sanitization degrade to safe defaults rather than erroring, so a bad
// configuration can never take the documentation page down.
package docsui

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
)

// Defaults applied by sanitization when configuration is missing or
// rejected.
const (
	DefaultTitle         = "API Documentation"
	DefaultSpecURL       = "/api/openapi.json"
	DefaultAllowedPrefix = "/api/"
)

// defaultCSP allows the page itself, the Swagger UI assets from unpkg,
// and same-origin spec fetches. Inline script and style are required by
// the Swagger UI bootstrap snippet.
const defaultCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"img-src 'self' data: https://unpkg.com; " +
	"connect-src 'self'"

// Config configures the documentation page.
type Config struct {
	// Title is the HTML page title. Escaped and truncated; empty or
	// whitespace-only values fall back to DefaultTitle.
	Title string

	// SpecURL is the relative URL of the OpenAPI JSON document the UI
	// loads. It must live under AllowedPrefix; rejected values fall
	// back to DefaultSpecURL.
	SpecURL string

	// AllowedPrefix is the path prefix SpecURL must carry
	// (default: "/api/").
	AllowedPrefix string

	// ContentSecurityPolicy overrides the default CSP header value.
	ContentSecurityPolicy string

	// SwaggerConfig provides additional SwaggerUIBundle configuration
	// options, rendered as JavaScript object properties alongside the
	// url and dom_id defaults.
	//
	// See: https://swagger.io/docs/open-source-tools/swagger-ui/usage/configuration/
	SwaggerConfig map[string]any

	// Logger receives sanitization warnings (default: slog.Default).
	Logger *slog.Logger
}

func (cfg Config) logger() *slog.Logger {
	if cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}

func (cfg Config) allowedPrefix() string {
	if cfg.AllowedPrefix == "" {
		return DefaultAllowedPrefix
	}
	return cfg.AllowedPrefix
}

func (cfg Config) csp() string {
	if cfg.ContentSecurityPolicy == "" {
		return defaultCSP
	}
	return cfg.ContentSecurityPolicy
}

// Render produces the documentation page HTML with sanitized title and
// spec URL.
func Render(cfg Config) []byte {
	title := SanitizeTitle(cfg.Title)
	specURL := SanitizeSpecURL(cfg.SpecURL, cfg.allowedPrefix(), cfg.logger())
	return []byte(swaggerUIPage(title, specURL, cfg.SwaggerConfig))
}

// Handler returns a handler serving the documentation page. The page is
// rendered once up front; sanitization failures degrade to defaults at
// render time, so the handler itself never fails.
//
// Responses carry restrictive security headers. The CSP can be
// overridden via Config; the remaining headers are fixed.
func Handler(cfg Config) http.HandlerFunc {
	page := Render(cfg)
	csp := cfg.csp()

	return func(w http.ResponseWriter, _ *http.Request) {
		h := w.Header()
		h.Set("Content-Type", "text/html; charset=utf-8")
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	}
}

// swaggerUIPage renders the Swagger UI bootstrap page. Title and spec
// URL are already sanitized by the caller.
func swaggerUIPage(title, specURL string, config map[string]any) string {
	var extra string
	if len(config) > 0 {
		keys := make([]string, 0, len(config))
		for k := range config {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf strings.Builder
		for _, k := range keys {
			v, err := json.Marshal(config[k])
			if err != nil {
				continue
			}
			fmt.Fprintf(&buf, ", %s: %s", k, v)
		}
		extra = buf.String()
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"%s});
</script>
</body>
</html>`, title, specURL, extra)
}
