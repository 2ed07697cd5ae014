package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/noah-isme/glider-ops-api/internal/dto"
	"github.com/noah-isme/glider-ops-api/internal/models"
)

func seasonCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Manage field seasons",
	}

	cmd.AddCommand(
		seasonListCommand(a),
		seasonCreateCommand(a),
		seasonActivateCommand(a),
		seasonCloseCommand(a),
		seasonReprocessCommand(a),
		seasonStatsCommand(a),
	)
	return cmd
}

func seasonListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered seasons, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seasons, err := a.seasons.List(cmd.Context())
			if err != nil {
				return err
			}
			return printSeasons(cmd.OutOrStdout(), seasons)
		},
	}
}

func seasonCreateCommand(a *app) *cobra.Command {
	var activate bool

	cmd := &cobra.Command{
		Use:   "create YEAR",
		Short: "Register a new season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			season, err := a.seasons.Create(cmd.Context(), dto.CreateSeasonRequest{Year: year, MakeActive: activate})
			if err != nil {
				return err
			}
			return printSeasons(cmd.OutOrStdout(), []models.FieldSeason{*season})
		},
	}

	cmd.Flags().BoolVar(&activate, "activate", false, "make the new season the active one")
	return cmd
}

func seasonActivateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate YEAR",
		Short: "Make a season the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			season, err := a.seasons.Activate(cmd.Context(), year)
			if err != nil {
				return err
			}
			return printSeasons(cmd.OutOrStdout(), []models.FieldSeason{*season})
		},
	}
}

func seasonCloseCommand(a *app) *cobra.Command {
	var closedBy string

	cmd := &cobra.Command{
		Use:   "close YEAR",
		Short: "Freeze a season: snapshot statistics and archive its stations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			if closedBy == "" {
				closedBy = a.cfg.Seasons.DefaultClosedBy
			}
			season, err := a.archiver.CloseSeason(cmd.Context(), year, closedBy)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printSeasons(out, []models.FieldSeason{*season}); err != nil {
				return err
			}
			if stats := season.SummaryStatistics; stats != nil {
				fmt.Fprintf(out, "\narchived %s stations, %s offload attempts, success rate %.2f%%\n",
					humanize.Comma(int64(stats.TotalStations)), humanize.Comma(int64(stats.TotalOffloadAttempts)), stats.SuccessRate)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&closedBy, "by", "", "operator closing the season (defaults to SEASON_DEFAULT_CLOSED_BY)")
	return cmd
}

func seasonReprocessCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reprocess YEAR",
		Short: "Recompute the frozen statistics of a closed season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYearArg(args[0])
			if err != nil {
				return err
			}
			season, err := a.archiver.ReprocessStatistics(cmd.Context(), year)
			if err != nil {
				return err
			}
			return printSeasons(cmd.OutOrStdout(), []models.FieldSeason{*season})
		},
	}
}

func seasonStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [YEAR|current]",
		Short: "Print season statistics as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) == 1 {
				raw = args[0]
			}
			year, err := parseSeasonArg(raw)
			if err != nil {
				return err
			}
			result, err := a.statistics.Compute(cmd.Context(), year)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Statistics)
		},
	}
}

func printSeasons(w io.Writer, seasons []models.FieldSeason) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tACTIVE\tCLOSED\tCLOSED BY\tSTATIONS\tSUCCESS RATE")
	for _, season := range seasons {
		closed, closedBy, stations, rate := "-", "-", "-", "-"
		if season.ClosedAt != nil {
			closed = humanize.Time(*season.ClosedAt)
		}
		if season.ClosedBy != nil {
			closedBy = *season.ClosedBy
		}
		if stats := season.SummaryStatistics; stats != nil {
			stations = humanize.Comma(int64(stats.TotalStations))
			rate = fmt.Sprintf("%.2f%%", stats.SuccessRate)
		}
		fmt.Fprintf(tw, "%d\t%t\t%s\t%s\t%s\t%s\n", season.Year, season.IsActive, closed, closedBy, stations, rate)
	}
	return tw.Flush()
}

func parseYearArg(raw string) (int, error) {
	year, err := parseSeasonArg(raw)
	if err != nil {
		return 0, err
	}
	if year == nil {
		return 0, fmt.Errorf("a concrete season year is required")
	}
	return *year, nil
}

// parseSeasonArg accepts a year, or "current" (and empty) for the unassigned period.
func parseSeasonArg(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "current") {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return nil, fmt.Errorf("invalid season %q", raw)
	}
	return &year, nil
}
