package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/fndocs/openapi"
)

type validateOptions struct {
	format string
	strict bool
}

func newValidateCommand(a *app) *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an OpenAPI document file",
		Long: `Validate checks the structural shape of an OpenAPI document:
the openapi version field, info.title, info.version, and the paths
object with recognized HTTP method keys. With --strict the document is
additionally loaded and validated against the OpenAPI 3 specification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, a, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.format, "format", "", "Document format (json or yaml, default from file extension)")
	flags.BoolVar(&opts.strict, "strict", false, "Run full specification validation")
	return cmd
}

func runValidate(cmd *cobra.Command, a *app, path string, opts validateOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return openapi.NewNotFoundError(
				fmt.Sprintf("spec file not found: %s", path),
				map[string]any{"path": path},
			)
		}
		return fmt.Errorf("read spec file: %w", err)
	}

	tree, err := parseDocument(data, documentFormat(path, opts.format))
	if err != nil {
		return err
	}

	violations := structuralViolations(tree)
	for _, v := range violations {
		fmt.Fprintln(cmd.OutOrStdout(), "violation:", v)
	}
	if len(violations) > 0 {
		return fmt.Errorf("document has %d structural violation(s)", len(violations))
	}

	if opts.strict {
		if err := strictValidate(data, tree); err != nil {
			return fmt.Errorf("strict validation failed: %w", err)
		}
	}

	a.logger.Debug("document validated", "path", path, "strict", opts.strict)
	fmt.Fprintln(cmd.OutOrStdout(), "OK")
	return nil
}

// documentFormat picks the parse format: an explicit flag wins, then
// the file extension, then JSON.
func documentFormat(path, flag string) string {
	if flag != "" {
		return flag
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func parseDocument(data []byte, format string) (map[string]any, error) {
	var tree map[string]any
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse YAML document: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse JSON document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s (expected json or yaml)", format)
	}
	return tree, nil
}

// pathItemFixedFields are the non-method keys a Path Item Object may
// carry.
//
// See: https://spec.openapis.org/oas/v3.0.3#path-item-object
var pathItemFixedFields = map[string]bool{
	"$ref":        true,
	"summary":     true,
	"description": true,
	"servers":     true,
	"parameters":  true,
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

// structuralViolations checks the document shape without interpreting
// schemas. Every violation is reported, not just the first.
func structuralViolations(tree map[string]any) []string {
	var violations []string

	if v, ok := tree["openapi"]; !ok {
		violations = append(violations, "missing required field: openapi")
	} else if _, ok := v.(string); !ok {
		violations = append(violations, "field openapi must be a string")
	}

	info, ok := tree["info"].(map[string]any)
	if !ok {
		violations = append(violations, "missing or malformed required field: info")
	} else {
		if _, ok := info["title"].(string); !ok {
			violations = append(violations, "missing required field: info.title")
		}
		if _, ok := info["version"].(string); !ok {
			violations = append(violations, "missing required field: info.version")
		}
	}

	pathsValue, ok := tree["paths"]
	if !ok {
		violations = append(violations, "missing required field: paths")
		return violations
	}
	paths, ok := pathsValue.(map[string]any)
	if !ok {
		violations = append(violations, "field paths must be an object")
		return violations
	}

	for route, itemValue := range paths {
		if !strings.HasPrefix(route, "/") {
			violations = append(violations,
				fmt.Sprintf("path %q must start with a slash", route))
		}
		item, ok := itemValue.(map[string]any)
		if !ok {
			violations = append(violations,
				fmt.Sprintf("path %q must map to an object", route))
			continue
		}
		for key := range item {
			if httpMethods[key] || pathItemFixedFields[key] || strings.HasPrefix(key, "x-") {
				continue
			}
			violations = append(violations,
				fmt.Sprintf("path %q has unknown operation key %q", route, key))
		}
	}

	return violations
}

// strictValidate runs the full specification validator. YAML input is
// normalized to JSON first so one loader path handles both formats.
func strictValidate(data []byte, tree map[string]any) error {
	if !json.Valid(data) {
		normalized, err := json.Marshal(tree)
		if err != nil {
			return err
		}
		data = normalized
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}
