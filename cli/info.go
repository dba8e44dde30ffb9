package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print instance and registry information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := struct {
				Server   any `json:"server"`
				Handlers int `json:"registered_handlers"`
			}{
				Server:   a.monitor.Info(),
				Handlers: a.registry.Len(),
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print the instance health status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := a.monitor.Status()
			fmt.Fprintln(cmd.OutOrStdout(), status)
			if status == "unhealthy" {
				return fmt.Errorf("instance is unhealthy")
			}
			return nil
		},
	}
}

func newMetricsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print current metrics in Prometheus exposition format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			families, err := a.monitor.Registry().Gather()
			if err != nil {
				return fmt.Errorf("gather metrics: %w", err)
			}

			var buf bytes.Buffer
			for _, family := range families {
				if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
					return fmt.Errorf("encode metrics: %w", err)
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), buf.String())
			return nil
		},
	}
}
