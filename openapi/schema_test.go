package openapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePrimitives(t *testing.T) {
	g := NewSchemaGenerator(nil)

	t.Run("bool", func(t *testing.T) {
		s := g.Generate(true)
		assert.Equal(t, TypeString("boolean"), s.Type)
	})

	t.Run("int", func(t *testing.T) {
		s := g.Generate(0)
		assert.Equal(t, TypeString("integer"), s.Type)
	})

	t.Run("int64", func(t *testing.T) {
		s := g.Generate(int64(0))
		assert.Equal(t, TypeString("integer"), s.Type)
	})

	t.Run("uint", func(t *testing.T) {
		s := g.Generate(uint(0))
		assert.Equal(t, TypeString("integer"), s.Type)
	})

	t.Run("float64", func(t *testing.T) {
		s := g.Generate(0.0)
		assert.Equal(t, TypeString("number"), s.Type)
	})

	t.Run("string", func(t *testing.T) {
		s := g.Generate("")
		assert.Equal(t, TypeString("string"), s.Type)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, g.Generate(nil))
	})
}

func TestGenerateSpecialTypes(t *testing.T) {
	g := NewSchemaGenerator(nil)

	t.Run("time.Time", func(t *testing.T) {
		s := g.Generate(time.Time{})
		assert.Equal(t, TypeString("string"), s.Type)
		assert.Equal(t, "date-time", s.Format)
	})

	t.Run("[]byte", func(t *testing.T) {
		s := g.Generate([]byte{})
		assert.Equal(t, TypeString("string"), s.Type)
		assert.Equal(t, "byte", s.Format)
	})
}

func TestGenerateSliceAndMap(t *testing.T) {
	g := NewSchemaGenerator(nil)

	t.Run("[]string", func(t *testing.T) {
		s := g.Generate([]string{})
		assert.Equal(t, TypeString("array"), s.Type)
		require.NotNil(t, s.Items)
		assert.Equal(t, TypeString("string"), s.Items.Type)
	})

	t.Run("map[string]int", func(t *testing.T) {
		s := g.Generate(map[string]int{})
		assert.Equal(t, TypeString("object"), s.Type)
		require.NotNil(t, s.AdditionalProperties)
		assert.Equal(t, TypeString("integer"), s.AdditionalProperties.Type)
	})

	t.Run("map with non-string key degrades to object", func(t *testing.T) {
		s := g.Generate(map[int]string{})
		assert.Equal(t, TypeString("object"), s.Type)
		assert.Nil(t, s.AdditionalProperties)
	})
}

type todoItem struct {
	ID        string     `json:"id"`
	Title     string     `json:"title" openapi:"description=Short item title,minLength=1,maxLength=200"`
	Priority  int        `json:"priority,omitempty" openapi:"minimum=0,maximum=5"`
	Status    string     `json:"status" openapi:"enum=open|done|archived"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	secret    string     `json:"secret"`
	Internal  string     `json:"-"`
}

func TestGenerateNamedStruct(t *testing.T) {
	g := NewSchemaGenerator(nil)

	s := g.Generate(todoItem{})
	require.NotNil(t, s)
	assert.Equal(t, "#/components/schemas/todoItem", s.Ref)

	component, ok := g.Schemas()["todoItem"]
	require.True(t, ok)
	assert.Equal(t, TypeString("object"), component.Type)
	assert.Equal(t, "todoItem", component.Title)

	t.Run("properties from json tags", func(t *testing.T) {
		assert.Contains(t, component.Properties, "id")
		assert.Contains(t, component.Properties, "title")
		assert.Contains(t, component.Properties, "due_at")
		assert.NotContains(t, component.Properties, "secret")
		assert.NotContains(t, component.Properties, "Internal")
	})

	t.Run("required excludes omitempty", func(t *testing.T) {
		assert.Contains(t, component.Required, "id")
		assert.Contains(t, component.Required, "status")
		assert.NotContains(t, component.Required, "priority")
		assert.NotContains(t, component.Required, "due_at")
	})

	t.Run("openapi tag constraints", func(t *testing.T) {
		title := component.Properties["title"]
		assert.Equal(t, "Short item title", title.Description)
		require.NotNil(t, title.MinLength)
		assert.Equal(t, 1, *title.MinLength)
		require.NotNil(t, title.MaxLength)
		assert.Equal(t, 200, *title.MaxLength)

		priority := component.Properties["priority"]
		require.NotNil(t, priority.Minimum)
		assert.Equal(t, 0.0, *priority.Minimum)
		require.NotNil(t, priority.Maximum)
		assert.Equal(t, 5.0, *priority.Maximum)

		status := component.Properties["status"]
		assert.Equal(t, []any{"open", "done", "archived"}, status.Enum)
	})

	t.Run("pointer field is nullable", func(t *testing.T) {
		dueAt := component.Properties["due_at"]
		assert.True(t, dueAt.Nullable)
		assert.Equal(t, TypeString("string"), dueAt.Type)
		assert.Equal(t, "date-time", dueAt.Format)
	})

	t.Run("repeated generation reuses the component", func(t *testing.T) {
		again := g.Generate(todoItem{})
		assert.Equal(t, s.Ref, again.Ref)
		assert.Len(t, g.Schemas(), 1)
	})
}

func TestGeneratePointerToNamedStruct(t *testing.T) {
	g := NewSchemaGenerator(nil)

	s := g.Generate(&todoItem{})
	require.NotNil(t, s)

	// A 3.0 $ref cannot carry nullable as a sibling, so the pointer
	// wraps the reference in allOf.
	assert.True(t, s.Nullable)
	require.Len(t, s.AllOf, 1)
	assert.Equal(t, "#/components/schemas/todoItem", s.AllOf[0].Ref)
}

type auditFields struct {
	CreatedBy string `json:"created_by"`
	UpdatedBy string `json:"updated_by,omitempty"`
}

type auditedRecord struct {
	auditFields
	Name string `json:"name"`
}

func TestGenerateEmbeddedStruct(t *testing.T) {
	g := NewSchemaGenerator(nil)

	g.Generate(auditedRecord{})
	component, ok := g.Schemas()["auditedRecord"]
	require.True(t, ok)

	assert.Contains(t, component.Properties, "created_by")
	assert.Contains(t, component.Properties, "updated_by")
	assert.Contains(t, component.Properties, "name")
	assert.Contains(t, component.Required, "created_by")
	assert.NotContains(t, component.Required, "updated_by")
}

func TestGenerateAnonymousStruct(t *testing.T) {
	g := NewSchemaGenerator(nil)

	s := g.Generate(struct {
		Count int `json:"count"`
	}{})
	require.NotNil(t, s)

	// Anonymous structs stay inline, never in components.
	assert.Empty(t, s.Ref)
	assert.Equal(t, TypeString("object"), s.Type)
	assert.Contains(t, s.Properties, "count")
	assert.Empty(t, g.Schemas())
}

func TestGenerateSchemaPassthrough(t *testing.T) {
	g := NewSchemaGenerator(nil)

	in := &Schema{Type: TypeString("string"), Format: "binary"}
	assert.Same(t, in, g.Generate(in))
}

func TestGenerateFragment(t *testing.T) {
	g := NewSchemaGenerator(nil)

	t.Run("valid fragment", func(t *testing.T) {
		s := g.Generate(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "maxLength": 50},
			},
			"required": []any{"name"},
		})
		require.NotNil(t, s)
		assert.Equal(t, TypeString("object"), s.Type)
		require.Contains(t, s.Properties, "name")
		require.NotNil(t, s.Properties["name"].MaxLength)
		assert.Equal(t, 50, *s.Properties["name"].MaxLength)
		assert.Equal(t, []string{"name"}, s.Required)
	})

	t.Run("unmarshalable fragment degrades to object", func(t *testing.T) {
		s := g.Generate(map[string]any{
			"type": func() {},
		})
		require.NotNil(t, s)
		assert.Equal(t, TypeString("object"), s.Type)
	})
}

func TestGenerateNeverPanics(t *testing.T) {
	g := NewSchemaGenerator(nil)

	inputs := []any{
		make(chan int),
		func() {},
		complex(1, 2),
		map[string]any{"bad": make(chan int)},
	}

	for _, in := range inputs {
		var s *Schema
		assert.NotPanics(t, func() {
			s = g.Generate(in)
		})
		require.NotNil(t, s)
		assert.Equal(t, TypeString("object"), s.Type)
	}

	t.Run("slice of unsupported elements", func(t *testing.T) {
		s := g.Generate([]chan int{})
		require.NotNil(t, s)
		assert.Equal(t, TypeString("array"), s.Type)
		require.NotNil(t, s.Items)
		assert.Equal(t, TypeString("object"), s.Items.Type)
	})

	t.Run("unsupported struct field is skipped", func(t *testing.T) {
		type withChan struct {
			Name string   `json:"name"`
			Ch   chan int `json:"ch"`
		}
		s := g.Generate(withChan{})
		require.NotNil(t, s)
		component := g.Schemas()["withChan"]
		require.NotNil(t, component)
		assert.Contains(t, component.Properties, "name")
		assert.NotContains(t, component.Properties, "ch")
	})
}

type genericPage[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func TestSanitizeSchemaName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User", "User"},
		{"Page[User]", "PageUser"},
		{"Page[[]User]", "PageUserList"},
		{"Page[example.com/pkg.User]", "PageUser"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeSchemaName(tt.in))
	}
}

func TestGenerateGenericStruct(t *testing.T) {
	g := NewSchemaGenerator(nil)

	s := g.Generate(genericPage[todoItem]{})
	require.NotNil(t, s)
	assert.Equal(t, "#/components/schemas/genericPagetodoItem", s.Ref)
	assert.Contains(t, g.Schemas(), "genericPagetodoItem")
	assert.Contains(t, g.Schemas(), "todoItem")
}
