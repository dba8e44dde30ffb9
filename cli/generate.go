package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vitalvas/fndocs/openapi"
)

type generateOptions struct {
	title          string
	version        string
	description    string
	openapiVersion string
	format         string
	output         string
	pretty         bool
}

func newGenerateCommand(a *app) *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the OpenAPI document from registered handlers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, a, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.title, "title", "", "API title (default \"API\")")
	flags.StringVar(&opts.version, "version", "", "API version (default \"1.0.0\")")
	flags.StringVar(&opts.description, "description", "", "API description")
	flags.StringVar(&opts.openapiVersion, "openapi-version", openapi.Version30,
		"OpenAPI specification version (3.0.0 or 3.1.0)")
	flags.StringVar(&opts.format, "format", defaultFormat(), "Output format (json or yaml)")
	flags.StringVarP(&opts.output, "output", "o", "", "Write to file instead of stdout")
	flags.BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts generateOptions) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unsupported format: %s (expected json or yaml)", opts.format)
	}

	gen := &openapi.Generator{
		Title:          opts.title,
		Version:        opts.version,
		Description:    opts.description,
		OpenAPIVersion: opts.openapiVersion,
		Logger:         a.logger,
	}
	doc, err := gen.Generate(a.registry)
	if err != nil {
		return err
	}

	var data []byte
	if opts.format == "yaml" {
		data, err = doc.YAML()
	} else {
		data, err = doc.JSON(opts.pretty)
	}
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}

	if opts.output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	path := resolveOutputPath(opts.output)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	a.logger.Info("wrote OpenAPI document", "path", path, "format", opts.format)
	return nil
}

// resolveOutputPath joins relative paths with FNDOCS_OUTPUT_DIR when it
// is set. Absolute paths are used as-is.
func resolveOutputPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		return filepath.Join(dir, path)
	}
	return path
}
