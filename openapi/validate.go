package openapi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxRoutePathLen caps route length to keep generated documents bounded.
const maxRoutePathLen = 2048

// routePathRegexp matches the characters a route path may contain:
// alphanumerics, hyphen, underscore, slash, and {param} braces.
// Whitespace is rejected: RFC 3986 does not permit literal spaces in
// path segments.
var routePathRegexp = regexp.MustCompile(`^/[A-Za-z0-9_\-/{}]*$`)

// dangerousRoutePatterns are rejected case-insensitively anywhere in a
// route: script injection, URI scheme smuggling, and path traversal.
var dangerousRoutePatterns = []string{
	"<script",
	"javascript:",
	"vbscript:",
	"data:",
	"../",
	`..\`,
}

// ValidateRoutePath reports whether route is a well-formed documentation
// route path. A valid route starts with "/" and contains only
// alphanumerics, "-", "_", "/", and "{" "}" placeholder braces.
func ValidateRoutePath(route string) bool {
	if route == "" || len(route) > maxRoutePathLen {
		return false
	}

	lower := strings.ToLower(route)
	for _, pattern := range dangerousRoutePatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	return routePathRegexp.MatchString(route)
}

// validateRoute wraps ValidateRoutePath into the registration-time
// error contract: a bad route fails fast with a ValidationError naming
// the offending route.
func validateRoute(route, handlerName string) error {
	if route == "" {
		return nil
	}
	if !ValidateRoutePath(route) {
		return NewValidationError(
			fmt.Sprintf("invalid route path: %s", route),
			map[string]any{"route": route, "handler": handlerName},
		)
	}
	return nil
}

// opIDAllowed matches characters kept by SanitizeOperationID.
var opIDAllowed = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeOperationID normalizes an operation id into a syntactically
// valid identifier. All characters outside [A-Za-z0-9_] are stripped;
// when the result does not start with a letter it is prefixed with
// "op_". Sanitization never fails and is idempotent; the empty string
// maps to the empty string.
func SanitizeOperationID(id string) string {
	sanitized := opIDAllowed.ReplaceAllString(id, "")
	if sanitized == "" {
		return ""
	}

	first := sanitized[0]
	isLetter := (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')
	if !isLetter {
		sanitized = "op_" + sanitized
	}

	return sanitized
}

// validateParameter checks one parameter descriptor: name and location
// must both be present, the name must be a printable ASCII string as
// required for header and query parameter names, and the location must
// be one of the four recognized values.
func validateParameter(p *Parameter) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required,
			validation.By(printableASCIIName)),
		validation.Field(&p.In, validation.Required,
			validation.In(InQuery, InPath, InHeader, InCookie)),
	)
}

// printableASCIIName rejects parameter names containing control bytes
// or non-ASCII characters.
func printableASCIIName(value any) error {
	name, _ := value.(string)
	if name != "" && !govalidator.IsPrintableASCII(name) {
		return errors.New("must contain only printable ASCII characters")
	}
	return nil
}

// validateParameters checks a parameter list, identifying the first bad
// entry by index in the returned ValidationError.
func validateParameters(params []*Parameter, handlerName string) error {
	for i, p := range params {
		if p == nil {
			return NewValidationError(
				fmt.Sprintf("parameter at index %d must not be nil", i),
				map[string]any{"parameter_index": i, "handler": handlerName},
			)
		}
		if err := validateParameter(p); err != nil {
			return NewValidationError(
				fmt.Sprintf("parameter at index %d is invalid: %v", i, err),
				map[string]any{"parameter_index": i, "handler": handlerName},
			)
		}
	}
	return nil
}

// sanitizeTags trims whitespace, silently drops empty tags, and
// deduplicates while preserving first-seen order.
func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// validateSecurity checks security requirement objects: scheme names
// must be non-empty strings and scope lists must not contain empty
// scopes.
func validateSecurity(reqs []SecurityRequirement, handlerName string) error {
	for i, req := range reqs {
		for scheme, scopes := range req {
			if strings.TrimSpace(scheme) == "" {
				return NewValidationError(
					fmt.Sprintf("security requirement at index %d has an empty scheme name", i),
					map[string]any{"security_index": i, "handler": handlerName},
				)
			}
			for _, scope := range scopes {
				if strings.TrimSpace(scope) == "" {
					return NewValidationError(
						fmt.Sprintf("security scopes for %q at index %d must be non-empty strings", scheme, i),
						map[string]any{"security_index": i, "handler": handlerName},
					)
				}
			}
		}
	}
	return nil
}
