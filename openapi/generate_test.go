package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeTable map[string][2]string

func (rt routeTable) Resolve(handlerName string) (string, string, bool) {
	entry, ok := rt[handlerName]
	if !ok {
		return "", "", false
	}
	return entry[0], entry[1], true
}

func TestGenerateEmptyRegistry(t *testing.T) {
	gen := &Generator{}
	doc, err := gen.Generate(NewRegistry())
	require.NoError(t, err)

	assert.Equal(t, Version30, doc.OpenAPI)
	assert.Equal(t, "API", doc.Info.Title)
	assert.Equal(t, "1.0.0", doc.Info.Version)
	assert.NotEmpty(t, doc.Info.Description)
	assert.Empty(t, doc.Paths)
}

func TestGenerateInfoOverrides(t *testing.T) {
	gen := &Generator{
		Title:       "Todo API",
		Version:     "2.1.0",
		Description: "Task management endpoints.",
	}
	doc, err := gen.Generate(NewRegistry())
	require.NoError(t, err)

	assert.Equal(t, "Todo API", doc.Info.Title)
	assert.Equal(t, "2.1.0", doc.Info.Version)
	assert.Equal(t, "Task management endpoints.", doc.Info.Description)
}

func TestGenerateUnsupportedVersion(t *testing.T) {
	gen := &Generator{OpenAPIVersion: "2.0"}
	_, err := gen.Generate(NewRegistry())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeOpenAPIGeneration, apiErr.Code)
}

func TestGenerateDefaults(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, NewOperation("get_status").Register(reg))

	doc, err := (&Generator{}).Generate(reg)
	require.NoError(t, err)

	t.Run("route defaults to handler name", func(t *testing.T) {
		require.Contains(t, doc.Paths, "/get_status")
	})

	t.Run("method defaults to get", func(t *testing.T) {
		require.NotNil(t, doc.Paths["/get_status"].Get)
	})

	op := doc.Paths["/get_status"].Get

	t.Run("operation id defaults to method and handler", func(t *testing.T) {
		assert.Equal(t, "get_get_status", op.OperationID)
	})

	t.Run("tags default", func(t *testing.T) {
		assert.Equal(t, []string{"default"}, op.Tags)
	})

	t.Run("responses default to 200", func(t *testing.T) {
		require.Contains(t, op.Responses, "200")
		assert.Equal(t, successfulResponseDescription, op.Responses["200"].Description)
		assert.Nil(t, op.Responses["200"].Content)
	})
}

func TestGenerateRouteResolver(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, NewOperation("create_item").Register(reg))
	require.NoError(t, NewOperation("explicit").Route("/api/explicit").Method("put").Register(reg))

	gen := &Generator{
		Resolver: routeTable{
			"create_item": {"/api/items", "POST"},
			"explicit":    {"/resolver-should-not-win", "DELETE"},
		},
	}
	doc, err := gen.Generate(reg)
	require.NoError(t, err)

	t.Run("resolver supplies route and method", func(t *testing.T) {
		require.Contains(t, doc.Paths, "/api/items")
		assert.NotNil(t, doc.Paths["/api/items"].Post)
	})

	t.Run("explicit metadata wins over resolver", func(t *testing.T) {
		require.Contains(t, doc.Paths, "/api/explicit")
		assert.NotNil(t, doc.Paths["/api/explicit"].Put)
		assert.NotContains(t, doc.Paths, "/resolver-should-not-win")
	})
}

func TestGenerateRequestBody(t *testing.T) {
	t.Run("post carries request body", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, NewOperation("create").
			Route("/items").Method("post").Request(todoItem{}).Register(reg))

		doc, err := (&Generator{}).Generate(reg)
		require.NoError(t, err)

		op := doc.Paths["/items"].Post
		require.NotNil(t, op.RequestBody)
		assert.True(t, op.RequestBody.Required)
		require.Contains(t, op.RequestBody.Content, "application/json")
		assert.Equal(t, "#/components/schemas/todoItem",
			op.RequestBody.Content["application/json"].Schema.Ref)
	})

	t.Run("get never carries request body", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, NewOperation("list").
			Route("/items").Method("get").Request(todoItem{}).Register(reg))

		doc, err := (&Generator{}).Generate(reg)
		require.NoError(t, err)

		assert.Nil(t, doc.Paths["/items"].Get.RequestBody)
	})

	t.Run("delete never carries request body", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, NewOperation("remove").
			Route("/items/{id}").Method("delete").Request(todoItem{}).Register(reg))

		doc, err := (&Generator{}).Generate(reg)
		require.NoError(t, err)

		assert.Nil(t, doc.Paths["/items/{id}"].Delete.RequestBody)
	})

	t.Run("raw schema fragment wins over model", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, NewOperation("create").
			Route("/items").Method("post").
			Request(todoItem{}).
			RequestSchema(map[string]any{"type": "object"}).
			Register(reg))

		doc, err := (&Generator{}).Generate(reg)
		require.NoError(t, err)

		schema := doc.Paths["/items"].Post.RequestBody.Content["application/json"].Schema
		assert.Empty(t, schema.Ref)
		assert.Equal(t, TypeString("object"), schema.Type)
	})
}

func TestGenerateResponses(t *testing.T) {
	t.Run("response model fills 200", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, NewOperation("get_item").
			Route("/items/{id}").ResponseModel(todoItem{}).Register(reg))

		doc, err := (&Generator{}).Generate(reg)
		require.NoError(t, err)

		resp := doc.Paths["/items/{id}"].Get.Responses["200"]
		require.NotNil(t, resp)
		assert.Equal(t, successfulResponseDescription, resp.Description)
		require.Contains(t, resp.Content, "application/json")
	})

	t.Run("explicit 200 description is preserved over response model", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, NewOperation("get_item").
			Route("/items/{id}").
			ResponseModel(todoItem{}).
			Response(http.StatusOK, "The requested item", nil).
			Register(reg))

		doc, err := (&Generator{}).Generate(reg)
		require.NoError(t, err)

		resp := doc.Paths["/items/{id}"].Get.Responses["200"]
		require.NotNil(t, resp)
		assert.Equal(t, "The requested item", resp.Description)
		// The model still contributes the missing schema.
		require.Contains(t, resp.Content, "application/json")
	})

	t.Run("explicit 200 body is never overwritten", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, NewOperation("get_item").
			Route("/items/{id}").
			ResponseModel(todoItem{}).
			Response(http.StatusOK, "Raw payload", &Schema{Type: TypeString("string")}).
			Register(reg))

		doc, err := (&Generator{}).Generate(reg)
		require.NoError(t, err)

		resp := doc.Paths["/items/{id}"].Get.Responses["200"]
		schema := resp.Content["application/json"].Schema
		assert.Equal(t, TypeString("string"), schema.Type)
		assert.Empty(t, schema.Ref)
	})

	t.Run("multiple explicit responses", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, NewOperation("get_item").
			Route("/items/{id}").
			Response(http.StatusOK, "OK", todoItem{}).
			Response(http.StatusNotFound, "Item not found", nil).
			Register(reg))

		doc, err := (&Generator{}).Generate(reg)
		require.NoError(t, err)

		responses := doc.Paths["/items/{id}"].Get.Responses
		require.Contains(t, responses, "200")
		require.Contains(t, responses, "404")
		assert.Equal(t, "Item not found", responses["404"].Description)
		assert.Nil(t, responses["404"].Content)
	})
}

func TestGenerateDuplicateRouteMethod(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, NewOperation("first").
		Route("/items").Method("get").Summary("first").Register(reg))
	require.NoError(t, NewOperation("second").
		Route("/items").Method("get").Summary("second").Register(reg))

	doc, err := (&Generator{}).Generate(reg)
	require.NoError(t, err)

	// Last registration wins on a (route, method) conflict.
	require.Contains(t, doc.Paths, "/items")
	assert.Equal(t, "second", doc.Paths["/items"].Get.Summary)
}

func TestGenerateDuplicateOperationIDs(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, NewOperation("a").
		Route("/a").OperationID("shared").Register(reg))
	require.NoError(t, NewOperation("b").
		Route("/b").OperationID("shared").Register(reg))

	doc, err := (&Generator{}).Generate(reg)
	require.NoError(t, err)

	assert.Equal(t, "shared", doc.Paths["/a"].Get.OperationID)
	assert.Equal(t, "shared_2", doc.Paths["/b"].Get.OperationID)
}

func TestGenerateSkipsInvalidMethod(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Metadata{HandlerName: "bad", Route: "/bad", Method: "yank"})
	require.NoError(t, NewOperation("ok").Route("/ok").Register(reg))

	doc, err := (&Generator{}).Generate(reg)
	require.NoError(t, err)

	// A malformed entry never suppresses the rest of the document.
	assert.NotContains(t, doc.Paths, "/bad")
	assert.Contains(t, doc.Paths, "/ok")
}

func TestGenerateSharedPathMultipleMethods(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, NewOperation("list").Route("/items").Method("get").Register(reg))
	require.NoError(t, NewOperation("create").Route("/items").Method("post").Register(reg))

	doc, err := (&Generator{}).Generate(reg)
	require.NoError(t, err)

	require.Contains(t, doc.Paths, "/items")
	assert.NotNil(t, doc.Paths["/items"].Get)
	assert.NotNil(t, doc.Paths["/items"].Post)
}

func TestGenerateVersion31(t *testing.T) {
	type nullableModel struct {
		Name *string `json:"name"`
	}

	reg := NewRegistry()
	require.NoError(t, NewOperation("get_item").
		Route("/items/{id}").ResponseModel(nullableModel{}).Register(reg))

	gen := &Generator{Title: "Todo API", OpenAPIVersion: Version31}
	doc, err := gen.Generate(reg)
	require.NoError(t, err)

	assert.Equal(t, Version31, doc.OpenAPI)
	assert.Equal(t, "Todo API", doc.Info.Summary)

	component, ok := doc.Components.Schemas["nullableModel"]
	require.True(t, ok)

	// 3.1 expresses nullability as a type array, not the nullable keyword.
	name := component.Properties["name"]
	assert.False(t, name.Nullable)
	assert.ElementsMatch(t, []string{"string", "null"}, name.Type.Values())
}

func TestConvertSchemaTo31(t *testing.T) {
	t.Run("nullable becomes type array", func(t *testing.T) {
		s := &Schema{Type: TypeString("integer"), Nullable: true}
		convertSchemaTo31(s)
		assert.False(t, s.Nullable)
		assert.Equal(t, []string{"integer", "null"}, s.Type.Values())
	})

	t.Run("example moves into examples", func(t *testing.T) {
		s := &Schema{Type: TypeString("string"), Example: "hello"}
		convertSchemaTo31(s)
		assert.Nil(t, s.Example)
		assert.Equal(t, []any{"hello"}, s.Examples)
	})

	t.Run("conversion is idempotent", func(t *testing.T) {
		s := &Schema{Type: TypeString("string"), Nullable: true, Example: "x"}
		convertSchemaTo31(s)
		convertSchemaTo31(s)
		assert.Equal(t, []string{"string", "null"}, s.Type.Values())
		assert.Equal(t, []any{"x"}, s.Examples)
	})

	t.Run("nested schemas convert", func(t *testing.T) {
		s := &Schema{
			Type: TypeString("object"),
			Properties: map[string]*Schema{
				"inner": {Type: TypeString("string"), Nullable: true},
			},
			Items: &Schema{Type: TypeString("number"), Nullable: true},
		}
		convertSchemaTo31(s)
		assert.Equal(t, []string{"string", "null"}, s.Properties["inner"].Type.Values())
		assert.Equal(t, []string{"number", "null"}, s.Items.Type.Values())
	})
}

// TestGenerateDocumentValidates round-trips a generated document
// through the kin-openapi loader and validator.
func TestGenerateDocumentValidates(t *testing.T) {
	reg := NewRegistry()
	for i := range 5 {
		require.NoError(t, NewOperation(fmt.Sprintf("list_%d", i)).
			Summary(fmt.Sprintf("List collection %d", i)).
			Tags("collections").
			Route(fmt.Sprintf("/api/collections/%d", i)).
			Method("get").
			Parameter(&Parameter{
				Name: "page", In: InQuery,
				Schema: &Schema{Type: TypeString("integer")},
			}).
			ResponseModel([]todoItem{}).
			Register(reg))
	}
	require.NoError(t, NewOperation("create_collection").
		Route("/api/collections").
		Method("post").
		Request(todoItem{}).
		Response(http.StatusCreated, "Created", todoItem{}).
		Register(reg))

	doc, err := (&Generator{Title: "Collections API", Version: "1.2.3"}).Generate(reg)
	require.NoError(t, err)

	data, err := doc.JSON(false)
	require.NoError(t, err)

	loader := openapi3.NewLoader()
	parsed, err := loader.LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, parsed.Validate(loader.Context))

	assert.Equal(t, "Collections API", parsed.Info.Title)
	assert.Equal(t, "1.2.3", parsed.Info.Version)
	assert.Equal(t, 6, parsed.Paths.Len())
}

// TestGenerateJSONShape asserts on the raw serialized form so struct
// tags cannot silently drift.
func TestGenerateJSONShape(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, NewOperation("get_item").
		Route("/items/{id}").ResponseModel(todoItem{}).Register(reg))

	doc, err := (&Generator{}).Generate(reg)
	require.NoError(t, err)

	data, err := doc.JSON(false)
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal(data, &tree))

	assert.Equal(t, "3.0.0", tree["openapi"])
	require.Contains(t, tree, "paths")
	paths := tree["paths"].(map[string]any)
	require.Contains(t, paths, "/items/{id}")

	op := paths["/items/{id}"].(map[string]any)["get"].(map[string]any)
	assert.Equal(t, "get_get_item", op["operationId"])
	require.Contains(t, tree, "components")
}
