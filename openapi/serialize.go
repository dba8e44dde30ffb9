package openapi

import (
	"encoding/json"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vitalvas/fndocs/cache"
)

// JSON serializes the document. With pretty set, the output is indented
// with two spaces. Key order is deterministic: struct fields marshal in
// declaration order and Go sorts map keys.
func (d *Document) JSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}

// YAML serializes the document as YAML. The document is round-tripped
// through its JSON form so YAML output carries the exact same field
// names (operationId, requestBody) as the JSON document.
func (d *Document) YAML() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	return yaml.Marshal(tree)
}

// Spec cache keys and lifetime for served documents.
const (
	specCacheTTL  = 10 * time.Minute
	specKeyPrefix = "openapi_spec:"
)

// SpecServer serves the generated document over HTTP. The host
// platform provides routing and transport; SpecServer only hands out
// http.HandlerFunc values. Generated output is cached so warm
// instances do not reassemble the document on every request.
type SpecServer struct {
	Generator *Generator
	Registry  *Registry

	cache *cache.Cache
}

// NewSpecServer creates a spec server over the given generator and
// registry. A nil registry falls back to DefaultRegistry.
func NewSpecServer(gen *Generator, reg *Registry) *SpecServer {
	if reg == nil {
		reg = DefaultRegistry
	}
	return &SpecServer{
		Generator: gen,
		Registry:  reg,
		cache:     cache.New(specCacheTTL),
	}
}

// Invalidate drops cached output, forcing the next request to
// regenerate the document.
func (s *SpecServer) Invalidate() {
	s.cache.Clear()
}

// JSONHandler returns a handler serving the document as JSON.
func (s *SpecServer) JSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := s.rendered("json")
		if err != nil {
			WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// YAMLHandler returns a handler serving the document as YAML.
func (s *SpecServer) YAMLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := s.rendered("yaml")
		if err != nil {
			WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// rendered returns the serialized document in the given format,
// generating and caching it on miss.
func (s *SpecServer) rendered(format string) ([]byte, error) {
	key := specKeyPrefix + format
	if v, ok := s.cache.Get(key); ok {
		return v.([]byte), nil
	}

	doc, err := s.Generator.Generate(s.Registry)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case "yaml":
		data, err = doc.YAML()
	default:
		data, err = doc.JSON(true)
	}
	if err != nil {
		return nil, NewOpenAPIError("failed to serialize OpenAPI document",
			map[string]any{"format": format}, err)
	}

	s.cache.Set(key, data, 0)
	return data, nil
}
