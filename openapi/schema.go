package openapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// SchemaGenerator converts Go types to OpenAPI 3.0 Schema Objects and
// collects named types into a component schemas map for $ref
// deduplication.
//
// Schema generation never fails: any panic during reflection is
// recovered into a generic object schema with a logged warning, so a
// single malformed model cannot prevent the rest of the document from
// being generated.
//
// See: https://spec.openapis.org/oas/v3.0.3#schema-object
type SchemaGenerator struct {
	schemas   map[string]*Schema
	visited   map[reflect.Type]bool
	typeNames map[reflect.Type]string // type -> chosen schema name
	nameTypes map[string]reflect.Type // schema name -> type that claimed it
	logger    *slog.Logger
}

// NewSchemaGenerator creates a new schema generator. A nil logger
// falls back to slog.Default.
func NewSchemaGenerator(logger *slog.Logger) *SchemaGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaGenerator{
		schemas:   make(map[string]*Schema),
		visited:   make(map[reflect.Type]bool),
		typeNames: make(map[reflect.Type]string),
		nameTypes: make(map[string]reflect.Type),
		logger:    logger,
	}
}

// Schemas returns the collected component schemas.
func (g *SchemaGenerator) Schemas() map[string]*Schema {
	return g.schemas
}

// genericObjectSchema is the safe fallback used when introspection fails.
func genericObjectSchema() *Schema {
	return &Schema{Type: TypeString("object")}
}

// Generate produces a Schema for the given value. Accepted inputs:
//
//   - a *Schema, used as-is
//   - a map[string]any fragment already in JSON Schema shape
//   - any other Go value, introspected via reflection; named struct
//     types are stored in the component schemas and referenced via $ref
//
// Generate never panics. Introspection failure yields {"type":"object"}
// and a warning naming the error and the offending input.
func (g *SchemaGenerator) Generate(v any) (schema *Schema) {
	if v == nil {
		return nil
	}

	defer func() {
		if rv := recover(); rv != nil {
			g.logger.Warn("schema generation failed, using generic object schema",
				"error", fmt.Sprintf("%v", rv),
				"input", fmt.Sprintf("%T", v))
			schema = genericObjectSchema()
		}
	}()

	switch body := v.(type) {
	case *Schema:
		return body
	case map[string]any:
		return g.fromFragment(body)
	default:
		if s := g.generateType(reflect.TypeOf(v)); s != nil {
			return s
		}
		g.logger.Warn("schema generation failed, using generic object schema",
			"error", "unsupported type",
			"input", fmt.Sprintf("%T", v))
		return genericObjectSchema()
	}
}

// fromFragment converts a raw JSON-Schema-shaped mapping into a Schema
// via a JSON round trip, falling back to a generic object on failure.
func (g *SchemaGenerator) fromFragment(fragment map[string]any) *Schema {
	data, err := json.Marshal(fragment)
	if err == nil {
		var s Schema
		if err = json.Unmarshal(data, &s); err == nil {
			return &s
		}
	}

	g.logger.Warn("schema fragment conversion failed, using generic object schema",
		"error", err,
		"input", fmt.Sprintf("%v", fragment))
	return genericObjectSchema()
}

// generateType produces a Schema for the given Go type, using $ref for
// named struct types and inline schemas for primitives, slices, maps,
// and anonymous structs.
func (g *SchemaGenerator) generateType(t reflect.Type) *Schema {
	// Unwrap pointer and mark nullable.
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	// Named struct types → $ref (except time.Time which is a special case).
	if t.Kind() == reflect.Struct && t != reflect.TypeOf(time.Time{}) {
		name := g.schemaName(t)
		if name != "" {
			if !g.visited[t] {
				g.visited[t] = true
				schema := g.generateStructSchema(t)
				schema.Title = name
				g.schemas[name] = schema
			}

			ref := &Schema{Ref: "#/components/schemas/" + name}
			if nullable {
				// A $ref cannot carry sibling keywords in 3.0; wrap it.
				return &Schema{
					AllOf:    []*Schema{ref},
					Nullable: true,
				}
			}
			return ref
		}
	}

	schema := g.generateInlineType(t)
	if nullable && schema != nil {
		schema.Nullable = true
	}
	return schema
}

// generateInlineType maps Go primitive and composite types to OpenAPI
// 3.0 schema types.
//
// See: https://spec.openapis.org/oas/v3.0.3#data-types
func (g *SchemaGenerator) generateInlineType(t reflect.Type) *Schema {
	if t == reflect.TypeOf(time.Time{}) {
		return &Schema{Type: TypeString("string"), Format: "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeString("boolean")}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeString("integer")}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeString("number")}

	case reflect.String:
		return &Schema{Type: TypeString("string")}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString("string"), Format: "byte"}
		}
		return &Schema{
			Type:  TypeString("array"),
			Items: g.itemsSchema(t.Elem()),
		}

	case reflect.Array:
		return &Schema{
			Type:  TypeString("array"),
			Items: g.itemsSchema(t.Elem()),
		}

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return genericObjectSchema()
		}
		return &Schema{
			Type:                 TypeString("object"),
			AdditionalProperties: g.generateType(t.Elem()),
		}

	case reflect.Struct:
		return g.generateStructSchema(t)

	case reflect.Interface:
		return &Schema{}
	}

	return nil
}

// itemsSchema produces the element schema for arrays and slices. The
// items keyword is required for array schemas in 3.0, so unsupported
// element types degrade to a generic object instead of being omitted.
func (g *SchemaGenerator) itemsSchema(t reflect.Type) *Schema {
	if s := g.generateType(t); s != nil {
		return s
	}
	return genericObjectSchema()
}

// generateStructSchema builds an object schema from struct fields.
func (g *SchemaGenerator) generateStructSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       TypeString("object"),
		Properties: make(map[string]*Schema),
	}

	g.collectFields(t, schema, false)

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}

	return schema
}

// collectFields recursively collects struct fields into the schema.
// When allOptional is true, all fields are treated as optional
// regardless of their json tags. This is used for pointer-embedded
// structs where the entire embedded struct can be nil and thus all its
// fields may be absent.
func (g *SchemaGenerator) collectFields(t reflect.Type, schema *Schema, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		// Handle embedded structs: inline only when the field has no
		// explicit json tag name. encoding/json treats an anonymous
		// field with a tag name as a regular named field, not inlined.
		if field.Anonymous {
			jsonName, _ := parseJSONTag(field.Tag.Get("json"))
			if jsonName == "" {
				ft := field.Type
				isPtr := ft.Kind() == reflect.Pointer
				if isPtr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					g.collectFields(ft, schema, allOptional || isPtr)
					continue
				}
			}
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, opts := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		fieldSchema := g.generateType(field.Type)
		if fieldSchema == nil {
			continue
		}

		applyOpenAPITag(fieldSchema, field.Tag.Get("openapi"))

		schema.Properties[name] = fieldSchema

		if !opts.omitempty && !allOptional {
			schema.Required = append(schema.Required, name)
		}
	}
}

type jsonTagOpts struct {
	omitempty bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, jsonTagOpts{
		omitempty: strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero"),
	}
}

// applyOpenAPITag parses the `openapi` struct tag and applies
// constraints to the schema. Tag keys map to Schema Object keywords.
func applyOpenAPITag(schema *Schema, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if hasValue {
			value = strings.TrimSpace(value)
		}

		switch key {
		case "description":
			schema.Description = value
		case "example":
			schema.Example = parseTagValue(schema, value)
		case "format":
			schema.Format = value
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Minimum = &v
			}
		case "maximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Maximum = &v
			}
		case "minLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinLength = &v
			}
		case "maxLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxLength = &v
			}
		case "pattern":
			schema.Pattern = value
		case "enum":
			values := strings.Split(value, "|")
			schema.Enum = make([]any, len(values))
			for i, v := range values {
				schema.Enum[i] = v
			}
		case "deprecated":
			schema.Deprecated = true
		case "readOnly":
			schema.ReadOnly = true
		case "writeOnly":
			schema.WriteOnly = true
		case "title":
			schema.Title = value
		case "nullable":
			schema.Nullable = true
		case "minItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinItems = &v
			}
		case "maxItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxItems = &v
			}
		case "uniqueItems":
			schema.UniqueItems = true
		}
	}
}

// parseTagValue converts a string tag value to the appropriate Go type
// based on the schema's type field.
func parseTagValue(schema *Schema, value string) any {
	types := schema.Type.Values()
	if len(types) == 0 {
		return value
	}

	switch types[0] {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// schemaName returns a unique schema name for the given type. If two
// types from different packages share the same simple name, the second
// type gets a qualified name using its package's last path segment as a
// prefix. When the prefixed name still collides, a numeric suffix is
// appended. Names are used as keys in the Components Object schemas map
// and in $ref URIs.
func (g *SchemaGenerator) schemaName(t reflect.Type) string {
	simple := sanitizeSchemaName(t.Name())
	if simple == "" || t.PkgPath() == "" {
		return ""
	}

	if name, ok := g.typeNames[t]; ok {
		return name
	}

	name := simple
	if existing, ok := g.nameTypes[name]; ok && existing != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if existing, ok := g.nameTypes[name]; ok && existing != t {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, ok := g.nameTypes[candidate]; !ok {
					name = candidate
					break
				}
			}
		}
	}

	g.typeNames[t] = name
	g.nameTypes[name] = t
	return name
}

// pkgPrefix extracts the last segment of a Go package path and
// capitalizes it for use as a schema name prefix.
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if len(pkgPath) == 0 {
		return ""
	}
	pkgPath = strings.ReplaceAll(pkgPath, "-", "_")
	pkgPath = strings.ReplaceAll(pkgPath, ".", "_")
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}

// sanitizeSchemaName cleans up Go type names for use as component
// schema keys. Generic type names like "Page[User]" are converted to
// "PageUser", and "Page[[]User]" becomes "PageUserList". Package paths
// in type parameters are stripped.
func sanitizeSchemaName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}

	return result
}
