package openapi

import (
	"fmt"
	"log/slog"
	"strings"
)

// RouteResolver supplies route and method for handlers whose metadata
// does not carry explicit overrides. Host platform integrations
// implement it by consulting their own trigger configuration.
type RouteResolver interface {
	// Resolve returns the route path and HTTP method configured for
	// the named handler, or ok=false when the handler is unknown.
	Resolve(handlerName string) (route, method string, ok bool)
}

// successfulResponseDescription is the description used for
// model-derived and empty default 200 responses.
const successfulResponseDescription = "Successful Response"

// defaultInfoDescription is used when Generator.Description is empty.
const defaultInfoDescription = "Auto-generated OpenAPI documentation. " +
	"Markdown supported in descriptions (CommonMark)."

// Generator assembles one OpenAPI document from a registry.
type Generator struct {
	// Title and Version populate the document info object.
	Title   string
	Version string

	// Description overrides the default info description.
	Description string

	// OpenAPIVersion selects the output dialect: Version30 (default)
	// or Version31.
	OpenAPIVersion string

	// Resolver optionally supplies route and method for handlers
	// without explicit overrides.
	Resolver RouteResolver

	// Logger receives assembly warnings. Defaults to slog.Default.
	Logger *slog.Logger
}

// methodAllowed lists the HTTP method keys valid in a Path Item Object.
var methodAllowed = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

// bodyMethods lists the methods that may carry a requestBody. GET
// operations never receive one, even when a request model was supplied.
var bodyMethods = map[string]bool{
	"post": true, "put": true, "patch": true,
}

// Generate walks the registry and assembles a complete OpenAPI
// document. Entries that cannot be processed are logged and skipped so
// one malformed handler does not prevent the rest of the document from
// being generated. An empty registry yields a document with empty
// paths, which is not an error.
func (g *Generator) Generate(reg *Registry) (*Document, error) {
	if reg == nil {
		reg = DefaultRegistry
	}

	version := g.OpenAPIVersion
	if version == "" {
		version = Version30
	}
	if version != Version30 && version != Version31 {
		return nil, NewOpenAPIError(
			fmt.Sprintf("unsupported OpenAPI version: %s", version),
			map[string]any{"supported_versions": []string{Version30, Version31}},
			nil,
		)
	}

	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	title := g.Title
	if title == "" {
		title = "API"
	}
	apiVersion := g.Version
	if apiVersion == "" {
		apiVersion = "1.0.0"
	}
	description := g.Description
	if description == "" {
		description = defaultInfoDescription
	}

	gen := NewSchemaGenerator(logger)
	doc := &Document{
		OpenAPI: version,
		Info: Info{
			Title:       title,
			Version:     apiVersion,
			Description: description,
		},
		Paths: make(map[string]*PathItem),
	}
	if version == Version31 {
		doc.Info.Summary = title
	}

	usedOpIDs := make(map[string]bool)

	for _, meta := range reg.Snapshot() {
		route, method := g.resolveRouteMethod(meta)

		if !methodAllowed[method] {
			logger.Error("skipping handler with invalid HTTP method",
				"handler", meta.HandlerName, "method", method)
			continue
		}

		op := buildOperation(gen, meta, method, usedOpIDs, logger)

		pathItem, ok := doc.Paths[route]
		if !ok {
			pathItem = &PathItem{}
			doc.Paths[route] = pathItem
		}

		if existing := operationFor(pathItem, method); existing != nil {
			logger.Warn("duplicate route and method registration, last registration wins",
				"handler", meta.HandlerName, "route", route, "method", method,
				"replaced_operation_id", existing.OperationID)
		}
		assignOperation(pathItem, method, op)
	}

	if schemas := gen.Schemas(); len(schemas) > 0 {
		doc.Components = &Components{Schemas: schemas}
	}

	if version == Version31 {
		convertDocumentTo31(doc)
	}

	logger.Info("generated OpenAPI spec",
		"openapi_version", version,
		"paths", len(doc.Paths),
		"handlers", reg.Len())

	return doc, nil
}

// resolveRouteMethod derives the (route, method) pair for a handler:
// explicit metadata overrides win, then the external route resolver,
// then the fallback of "/"+handlerName and GET.
func (g *Generator) resolveRouteMethod(meta *Metadata) (string, string) {
	route := meta.Route
	method := meta.Method

	if (route == "" || method == "") && g.Resolver != nil {
		if r, m, ok := g.Resolver.Resolve(meta.HandlerName); ok {
			if route == "" {
				route = r
			}
			if method == "" {
				method = m
			}
		}
	}

	if route == "" {
		route = "/" + meta.HandlerName
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if method == "" {
		method = "get"
	}

	return route, strings.ToLower(method)
}

// buildOperation constructs the Operation Object for one registry entry.
func buildOperation(gen *SchemaGenerator, meta *Metadata, method string, usedOpIDs map[string]bool, logger *slog.Logger) *Operation {
	op := &Operation{
		Summary:     meta.Summary,
		Description: meta.Description,
		OperationID: uniqueOperationID(meta, method, usedOpIDs, logger),
		Tags:        meta.Tags,
		Deprecated:  meta.Deprecated,
		Security:    meta.Security,
		Parameters:  meta.Parameters,
		Responses:   buildResponses(gen, meta),
	}

	if len(op.Tags) == 0 {
		op.Tags = []string{"default"}
	}

	if bodyMethods[method] {
		op.RequestBody = buildRequestBody(gen, meta)
	}

	return op
}

// uniqueOperationID returns the operation id for an entry, guaranteed
// unique across the document: collisions get a numeric suffix.
func uniqueOperationID(meta *Metadata, method string, used map[string]bool, logger *slog.Logger) string {
	id := meta.OperationID
	if id == "" {
		id = SanitizeOperationID(method + "_" + meta.HandlerName)
	}
	if id == "" {
		id = "op_" + method
	}

	if used[id] {
		base := id
		for i := 2; ; i++ {
			candidate := fmt.Sprintf("%s_%d", base, i)
			if !used[candidate] {
				logger.Warn("duplicate operation id, appending numeric suffix",
					"handler", meta.HandlerName, "operation_id", base, "assigned", candidate)
				id = candidate
				break
			}
		}
	}

	used[id] = true
	return id
}

// buildRequestBody derives the requestBody object: a raw schema
// fragment takes precedence over the reflected request model.
func buildRequestBody(gen *SchemaGenerator, meta *Metadata) *RequestBody {
	var schema *Schema
	switch {
	case meta.RequestSchema != nil:
		schema = gen.Generate(meta.RequestSchema)
	case meta.RequestModel != nil:
		schema = gen.Generate(meta.RequestModel)
	default:
		return nil
	}

	return &RequestBody{
		Required: true,
		Content: map[string]*MediaType{
			"application/json": {Schema: schema},
		},
	}
}

// buildResponses merges explicit response entries with the
// model-derived default 200. Explicit entries for a status code the
// model would also populate take precedence and are never silently
// dropped: the model only fills an absent 200 entry or the missing
// content of an explicit one.
func buildResponses(gen *SchemaGenerator, meta *Metadata) map[string]*Response {
	responses := make(map[string]*Response)

	for _, code := range meta.statusCodes() {
		spec := meta.Responses[code]
		resp := &Response{Description: spec.Description}
		if spec.Body != nil {
			resp.Content = map[string]*MediaType{
				"application/json": {Schema: gen.Generate(spec.Body)},
			}
		}
		responses[fmt.Sprintf("%d", code)] = resp
	}

	if meta.ResponseModel != nil {
		schema := gen.Generate(meta.ResponseModel)
		if existing, ok := responses["200"]; ok {
			if existing.Content == nil {
				existing.Content = map[string]*MediaType{
					"application/json": {Schema: schema},
				}
			}
		} else {
			responses["200"] = &Response{
				Description: successfulResponseDescription,
				Content: map[string]*MediaType{
					"application/json": {Schema: schema},
				},
			}
		}
	}

	// A Responses Object requires at least one entry.
	if len(responses) == 0 {
		responses["200"] = &Response{Description: successfulResponseDescription}
	}

	return responses
}

// operationFor returns the operation assigned to the given method on
// the path item, or nil.
func operationFor(pathItem *PathItem, method string) *Operation {
	switch method {
	case "get":
		return pathItem.Get
	case "put":
		return pathItem.Put
	case "post":
		return pathItem.Post
	case "delete":
		return pathItem.Delete
	case "options":
		return pathItem.Options
	case "head":
		return pathItem.Head
	case "patch":
		return pathItem.Patch
	case "trace":
		return pathItem.Trace
	}
	return nil
}

// assignOperation assigns an operation to the correct HTTP method field
// on the path item.
func assignOperation(pathItem *PathItem, method string, op *Operation) {
	switch method {
	case "get":
		pathItem.Get = op
	case "put":
		pathItem.Put = op
	case "post":
		pathItem.Post = op
	case "delete":
		pathItem.Delete = op
	case "options":
		pathItem.Options = op
	case "head":
		pathItem.Head = op
	case "patch":
		pathItem.Patch = op
	case "trace":
		pathItem.Trace = op
	}
}
