// Package openapi generates OpenAPI v3.0 specification documents from
// registered serverless function handlers using Go reflection and
// struct tags.
//
// The package targets the OpenAPI Specification v3.0.0 by default and
// can emit v3.1.0 documents on request. It produces a complete OpenAPI
// document from registered handler metadata with zero external schema
// files, designed for function platforms where the host owns routing
// and the application only contributes handlers.
//
// See: https://spec.openapis.org/oas/v3.0.3
// See: https://spec.openapis.org/oas/v3.1.0
//
// # Registering Handlers
//
// Describe each handler with a fluent builder and register it:
//
//	openapi.NewOperation("create_user").
//	    Summary("Create a user").
//	    Tags("users").
//	    Route("/api/users").
//	    Method(http.MethodPost).
//	    Request(CreateUserInput{}).
//	    Response(http.StatusCreated, "User created", User{}).
//	    MustRegister(nil)
//
// Passing nil registers against DefaultRegistry. Use NewRegistry for
// an isolated registry, for example in tests:
//
//	reg := openapi.NewRegistry()
//	op := openapi.NewOperation("list_users").Route("/api/users")
//	if err := op.Register(reg); err != nil { ... }
//
// Build validates route paths, parameters, and security requirements,
// so malformed metadata surfaces at registration time rather than when
// the document is generated. Registering the same handler name again
// replaces the earlier entry.
//
// # Generating the Document
//
// A Generator assembles the document from a registry snapshot:
//
//	gen := &openapi.Generator{Title: "My API", Version: "2.0.0"}
//	doc, err := gen.Generate(nil)
//
// Entries that cannot be assembled are logged and skipped; a single
// bad registration never suppresses the rest of the document. When two
// entries claim the same route and method, the last registered wins
// and a warning is logged.
//
// Set OpenAPIVersion to Version31 to emit a 3.1.0 document. The 3.1
// output expresses nullability with type arrays (["string", "null"]),
// uses the "examples" keyword, and carries the document title in
// info.summary.
//
// # Routes and Methods
//
// Route and Method are optional. When omitted, the route defaults to
// "/" plus the handler name and the method to GET. A RouteResolver can
// be supplied on the Generator to look up routes from the host
// platform's own configuration:
//
//	gen.Resolver = myTriggerIndex // Resolve(handlerName) (route, method, ok)
//
// Route paths must start with "/" and may contain letters, digits,
// "_", "-", "/", and curly-brace path parameters. Paths containing
// whitespace, traversal sequences, or script-injection patterns are
// rejected.
//
// # Struct Tags
//
// Use the "openapi" struct tag to enrich generated schemas:
//
//	type CreateUserInput struct {
//	    Name  string `json:"name" openapi:"description=User name,minLength=1,maxLength=100"`
//	    Email string `json:"email" openapi:"format=email"`
//	    Age   int    `json:"age,omitempty" openapi:"minimum=0,maximum=150"`
//	    Role  string `json:"role" openapi:"enum=admin|user|guest"`
//	}
//
// Supported tag keys: description, example, format, title, minimum,
// maximum, minLength, maxLength, pattern, minItems, maxItems,
// uniqueItems, enum (pipe-separated), deprecated, readOnly, writeOnly,
// nullable.
//
// # Schema Generation
//
// Go types are converted to schemas via reflection:
//
//   - bool -> {type: "boolean"}
//   - int/uint variants -> {type: "integer"}
//   - float32/float64 -> {type: "number"}
//   - string -> {type: "string"}
//   - []byte -> {type: "string", format: "byte"}
//   - time.Time -> {type: "string", format: "date-time"}
//   - *T -> schema(T) with nullable: true
//   - []T -> {type: "array", items: schema(T)}
//   - map[string]V -> {type: "object", additionalProperties: schema(V)}
//   - struct -> {type: "object", properties: {...}, required: [...]}
//
// Named struct types are deduplicated into
// #/components/schemas/{TypeName} and referenced via $ref. Types the
// generator cannot express degrade to {"type": "object"} with a logged
// warning; schema extraction never panics.
//
// A raw schema fragment can be supplied instead of a Go type wherever
// a model is accepted:
//
//	op.RequestSchema(map[string]any{
//	    "type":       "object",
//	    "properties": map[string]any{"name": map[string]any{"type": "string"}},
//	})
//
// # Serving the Specification
//
// SpecServer hands out http.HandlerFunc values for the host platform
// to mount; generated output is cached between requests:
//
//	srv := openapi.NewSpecServer(gen, nil)
//	mount("/api/openapi.json", srv.JSONHandler())
//	mount("/api/openapi.yaml", srv.YAMLHandler())
//
// The docsui package serves an interactive documentation page over the
// same endpoints.
package openapi
