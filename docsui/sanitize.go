package docsui

import (
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxTitleLen caps the page title after escaping.
const maxTitleLen = 100

// specURLAllowed matches the characters a sanitized spec URL may
// contain. Anything outside this set (including ":", "?", "#", "%",
// and "&") rejects the whole URL.
var specURLAllowed = regexp.MustCompile(`^[A-Za-z0-9/_.~-]+$`)

// SanitizeTitle strips control characters, HTML-escapes the page title
// and truncates it. Empty or whitespace-only titles fall back to
// DefaultTitle. Truncation happens after escaping so markup can never
// survive, even at the cut point.
func SanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, title)
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}

	escaped := html.EscapeString(title)
	if len(escaped) > maxTitleLen {
		cut := maxTitleLen
		for cut > 0 && !utf8.RuneStart(escaped[cut]) {
			cut--
		}
		escaped = escaped[:cut]
	}
	return escaped
}

// SanitizeSpecURL validates the spec URL the documentation page loads.
// The URL must be a same-origin relative path under allowedPrefix made
// of unreserved path characters. Percent-encoding is decoded (repeatedly,
// to defeat double encoding) before the checks run. Rejected URLs fall
// back to DefaultSpecURL with a logged warning.
func SanitizeSpecURL(specURL, allowedPrefix string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	raw := strings.TrimSpace(specURL)
	if raw == "" {
		return DefaultSpecURL
	}

	decoded, ok := decodeFully(raw)
	if !ok {
		logger.Warn("spec URL failed percent decoding, using default",
			"spec_url", specURL, "default", DefaultSpecURL)
		return DefaultSpecURL
	}

	// A "//" prefix smuggles an authority; any colon means a scheme
	// (javascript:, https:, data:).
	rejected := strings.HasPrefix(decoded, "//") ||
		strings.Contains(decoded, ":") ||
		strings.Contains(decoded, "..") ||
		!strings.HasPrefix(decoded, allowedPrefix) ||
		!specURLAllowed.MatchString(decoded)
	if rejected {
		logger.Warn("spec URL rejected, using default",
			"spec_url", specURL, "default", DefaultSpecURL)
		return DefaultSpecURL
	}

	return decoded
}

// decodeFully percent-decodes until the value stops changing, bounded
// to a few rounds so crafted input cannot loop forever.
func decodeFully(s string) (string, bool) {
	for range 5 {
		decoded, err := url.PathUnescape(s)
		if err != nil {
			return "", false
		}
		if decoded == s {
			return s, true
		}
		s = decoded
	}
	return s, true
}
