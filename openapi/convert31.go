package openapi

// convertDocumentTo31 rewrites every schema reachable from the document
// into OpenAPI 3.1 form: the 3.0 "nullable" keyword becomes a type
// array containing "null", and a lone "example" moves into the 3.1
// "examples" array.
func convertDocumentTo31(doc *Document) {
	if doc.Components != nil {
		for _, schema := range doc.Components.Schemas {
			convertSchemaTo31(schema)
		}
	}

	for _, pathItem := range doc.Paths {
		for _, op := range []*Operation{
			pathItem.Get, pathItem.Put, pathItem.Post, pathItem.Delete,
			pathItem.Options, pathItem.Head, pathItem.Patch, pathItem.Trace,
		} {
			if op == nil {
				continue
			}
			for _, p := range op.Parameters {
				convertSchemaTo31(p.Schema)
			}
			if op.RequestBody != nil {
				for _, mt := range op.RequestBody.Content {
					convertSchemaTo31(mt.Schema)
				}
			}
			for _, resp := range op.Responses {
				for _, mt := range resp.Content {
					convertSchemaTo31(mt.Schema)
				}
			}
		}
	}
}

// convertSchemaTo31 recursively converts one schema in place.
func convertSchemaTo31(schema *Schema) {
	if schema == nil {
		return
	}

	if schema.Nullable {
		types := schema.Type.Values()
		if len(types) > 0 && !containsNull(types) {
			schema.Type = TypeArray(append(types, "null")...)
		}
		schema.Nullable = false
	}

	if schema.Example != nil && len(schema.Examples) == 0 {
		schema.Examples = []any{schema.Example}
		schema.Example = nil
	}

	for _, prop := range schema.Properties {
		convertSchemaTo31(prop)
	}
	convertSchemaTo31(schema.Items)
	convertSchemaTo31(schema.AdditionalProperties)
	convertSchemaTo31(schema.Not)
	for _, s := range schema.AllOf {
		convertSchemaTo31(s)
	}
	for _, s := range schema.AnyOf {
		convertSchemaTo31(s)
	}
	for _, s := range schema.OneOf {
		convertSchemaTo31(s)
	}
}

func containsNull(types []string) bool {
	for _, t := range types {
		if t == "null" {
			return true
		}
	}
	return false
}
