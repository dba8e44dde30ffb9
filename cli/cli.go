// Package cli provides the fndocs command line interface. Function
// apps embed it via NewRootCommand so the commands operate on the
// app's own handler registry; the fndocs binary wires the process-wide
// default registry.
//
// Environment variables recognized by all commands:
//
//	FNDOCS_DEBUG       enable debug logging when set to a true value
//	FNDOCS_FORMAT      default output format (json or yaml)
//	FNDOCS_OUTPUT_DIR  directory that relative --output paths are joined with
package cli

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vitalvas/fndocs/monitoring"
	"github.com/vitalvas/fndocs/openapi"
)

// Environment variable names.
const (
	EnvDebug     = "FNDOCS_DEBUG"
	EnvFormat    = "FNDOCS_FORMAT"
	EnvOutputDir = "FNDOCS_OUTPUT_DIR"
)

// app carries the dependencies shared by all subcommands.
type app struct {
	registry *openapi.Registry
	monitor  *monitoring.Monitor
	logger   *slog.Logger
}

// NewRootCommand returns the fndocs root command operating on the
// given registry. A nil registry uses openapi.DefaultRegistry.
func NewRootCommand(reg *openapi.Registry) *cobra.Command {
	if reg == nil {
		reg = openapi.DefaultRegistry
	}

	level := slog.LevelInfo
	if debugEnabled() {
		level = slog.LevelDebug
	}
	a := &app{
		registry: reg,
		monitor:  monitoring.NewMonitor(),
		logger: slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: level})),
	}

	cmd := &cobra.Command{
		Use:           "fndocs",
		Short:         "Generate and validate OpenAPI documentation for function apps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().SetNormalizeFunc(normalizeFlagName)
	cmd.AddCommand(
		newGenerateCommand(a),
		newValidateCommand(a),
		newInfoCommand(a),
		newHealthCommand(a),
		newMetricsCommand(a),
	)
	return cmd
}

// normalizeFlagName accepts underscore-separated flag names as aliases
// for the canonical hyphen-separated form.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func debugEnabled() bool {
	v, err := strconv.ParseBool(os.Getenv(EnvDebug))
	return err == nil && v
}

// defaultFormat returns the format from FNDOCS_FORMAT, or "json".
func defaultFormat() string {
	switch os.Getenv(EnvFormat) {
	case "yaml":
		return "yaml"
	default:
		return "json"
	}
}
