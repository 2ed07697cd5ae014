package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/glider-ops-api/internal/service"
)

func masterListCommand(a *app) *cobra.Command {
	var (
		season string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "master-list",
		Short: "Export the station master list used to seed the next season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, err := parseSeasonArg(season)
			if err != nil {
				return err
			}
			f, err := service.ParseMasterListFormat(format)
			if err != nil {
				return err
			}
			records, err := a.masterList.Prepare(cmd.Context(), year)
			if err != nil {
				return err
			}
			payload, err := a.masterList.Render(records, f)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}
			if err := os.WriteFile(out, payload, 0o644); err != nil {
				return fmt.Errorf("write master list: %w", err)
			}
			a.logger.Info("master list written", zap.String("path", out), zap.String("format", string(f)), zap.Int("stations", len(records)))
			return nil
		},
	}

	cmd.Flags().StringVar(&season, "season", "current", "season year, or current for unassigned stations")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, csv, xlsx or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to stdout)")
	return cmd
}
