package openapi

import (
	"fmt"
	"sort"
)

// ResponseSpec describes one explicit response entry in handler
// metadata, keyed by HTTP status code at registration time.
type ResponseSpec struct {
	// Description is the human-readable response description.
	Description string

	// Body is an optional response body: a Go type (schema generated
	// via reflection), a *Schema, or a map[string]any fragment.
	Body any
}

// Metadata is the immutable record of OpenAPI metadata collected for
// one handler. Construct values with NewOperation; a Metadata is never
// modified after registration.
type Metadata struct {
	HandlerName string

	Summary     string
	Description string
	Tags        []string
	OperationID string
	Deprecated  bool

	Route  string
	Method string

	Parameters []*Parameter
	Security   []SecurityRequirement

	// RequestModel derives the requestBody schema via reflection.
	// RequestSchema is a raw fragment and takes precedence when both
	// are set.
	RequestModel  any
	RequestSchema map[string]any

	// ResponseModel derives the default 200 response schema.
	// Responses holds explicit entries keyed by status code; an
	// explicit 200 entry takes precedence over the model-derived one.
	ResponseModel any
	Responses     map[int]ResponseSpec
}

// OperationBuilder assembles a Metadata record through a fluent API.
// All validation happens in Build, so a chain of setters never fails
// midway.
type OperationBuilder struct {
	meta Metadata
}

// NewOperation starts building metadata for the named handler. The
// handler name keys the registry entry and seeds the default route
// ("/"+name) and operation id when no explicit values are given.
func NewOperation(handlerName string) *OperationBuilder {
	return &OperationBuilder{
		meta: Metadata{HandlerName: handlerName},
	}
}

// Summary sets the short description shown in documentation UIs.
func (b *OperationBuilder) Summary(s string) *OperationBuilder {
	b.meta.Summary = s
	return b
}

// Description sets the longer Markdown-enabled description.
func (b *OperationBuilder) Description(d string) *OperationBuilder {
	b.meta.Description = d
	return b
}

// Tags appends group tags. Tags are trimmed and empty entries dropped
// silently at build time.
func (b *OperationBuilder) Tags(tags ...string) *OperationBuilder {
	b.meta.Tags = append(b.meta.Tags, tags...)
	return b
}

// OperationID sets a custom operation id. The id is sanitized at build
// time; it defaults to "<method>_<handlerName>" when unset.
func (b *OperationBuilder) OperationID(id string) *OperationBuilder {
	b.meta.OperationID = id
	return b
}

// Route overrides the HTTP route path (e.g. "/items/{id}").
func (b *OperationBuilder) Route(route string) *OperationBuilder {
	b.meta.Route = route
	return b
}

// Method sets the explicit HTTP method when it cannot be inferred from
// the host platform's trigger configuration.
func (b *OperationBuilder) Method(method string) *OperationBuilder {
	b.meta.Method = method
	return b
}

// Parameter adds one parameter descriptor (query/path/header/cookie).
func (b *OperationBuilder) Parameter(p *Parameter) *OperationBuilder {
	b.meta.Parameters = append(b.meta.Parameters, p)
	return b
}

// Security appends OpenAPI Security Requirement Objects.
func (b *OperationBuilder) Security(reqs ...SecurityRequirement) *OperationBuilder {
	b.meta.Security = append(b.meta.Security, reqs...)
	return b
}

// Deprecated marks the operation as deprecated.
func (b *OperationBuilder) Deprecated() *OperationBuilder {
	b.meta.Deprecated = true
	return b
}

// Request sets the Go type used to derive the requestBody schema.
func (b *OperationBuilder) Request(model any) *OperationBuilder {
	b.meta.RequestModel = model
	return b
}

// RequestSchema sets a raw requestBody schema fragment. It takes
// precedence over Request when both are set.
func (b *OperationBuilder) RequestSchema(fragment map[string]any) *OperationBuilder {
	b.meta.RequestSchema = fragment
	return b
}

// ResponseModel sets the Go type used to derive the default 200
// response schema.
func (b *OperationBuilder) ResponseModel(model any) *OperationBuilder {
	b.meta.ResponseModel = model
	return b
}

// Response adds an explicit response entry for the given status code.
// Body may be nil for responses with no content. An explicit 200 entry
// is preserved even when ResponseModel would also populate it.
func (b *OperationBuilder) Response(status int, description string, body any) *OperationBuilder {
	if b.meta.Responses == nil {
		b.meta.Responses = make(map[int]ResponseSpec)
	}
	b.meta.Responses[status] = ResponseSpec{Description: description, Body: body}
	return b
}

// Build validates the collected metadata and returns the immutable
// record. Route, parameter, and security violations fail with a
// ValidationError identifying the offending input; the operation id is
// sanitized rather than rejected.
func (b *OperationBuilder) Build() (*Metadata, error) {
	meta := b.meta

	if meta.HandlerName == "" {
		return nil, NewValidationError("handler name must not be empty", nil)
	}

	if err := validateRoute(meta.Route, meta.HandlerName); err != nil {
		return nil, err
	}

	if err := validateParameters(meta.Parameters, meta.HandlerName); err != nil {
		return nil, err
	}

	if err := validateSecurity(meta.Security, meta.HandlerName); err != nil {
		return nil, err
	}

	meta.Tags = sanitizeTags(meta.Tags)
	if meta.OperationID != "" {
		sanitized := SanitizeOperationID(meta.OperationID)
		if sanitized == "" {
			return nil, NewValidationError(
				fmt.Sprintf("invalid operation id: %s", meta.OperationID),
				map[string]any{"operation_id": meta.OperationID, "handler": meta.HandlerName},
			)
		}
		meta.OperationID = sanitized
	}

	return &meta, nil
}

// Register builds the metadata and registers it. A nil registry
// registers against DefaultRegistry.
func (b *OperationBuilder) Register(reg *Registry) error {
	meta, err := b.Build()
	if err != nil {
		return err
	}
	if reg == nil {
		reg = DefaultRegistry
	}
	reg.Register(meta)
	return nil
}

// MustRegister is like Register but panics on validation failure.
// Registration happens at program initialization, where a malformed
// route or parameter is a programming mistake that must surface
// immediately.
func (b *OperationBuilder) MustRegister(reg *Registry) {
	if err := b.Register(reg); err != nil {
		panic(err)
	}
}

// statusCodes returns the explicit response status codes in ascending
// order for deterministic assembly.
func (m *Metadata) statusCodes() []int {
	if len(m.Responses) == 0 {
		return nil
	}
	codes := make([]int, 0, len(m.Responses))
	for code := range m.Responses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
