package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/spf13/cobra"
)

func newStatsCmd(flags *sourceFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats <country>",
		Short: "Show a country's latest counts and change over the lookback window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := referenceTime(flags.date, time.Now())
			if err != nil {
				return err
			}
			dataset, err := loadDataset(flags.datasetPath)
			if err != nil {
				return err
			}

			country := args[0]
			series, err := dataset.Lookup(country)
			if err != nil {
				return fmt.Errorf("%s: No data available: %w", country, err)
			}

			stats := domain.BuildCountryStats(country, series, ref, flags.lookback)
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			return printStats(cmd, stats)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func printStats(cmd *cobra.Command, stats domain.CountryStats) error {
	counts := stats.Counts()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "%s\t%s %s (%s)\n", stats.Country, swatch(stats.Color), stats.Color, stats.Classification)
	_, _ = fmt.Fprintf(w, "Day\t%s (vs %d days earlier)\n", stats.ReferenceDay, stats.LookbackDays)
	_, _ = fmt.Fprintf(w, "Cases\t%s\n", counts.Cases)
	_, _ = fmt.Fprintf(w, "Infected\t%s\n", counts.Infected)
	_, _ = fmt.Fprintf(w, "Deaths\t%s\n", counts.Deaths)
	_, _ = fmt.Fprintf(w, "Recoveries\t%s\n", counts.Recoveries)
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), stats.Summary())
	return err
}
