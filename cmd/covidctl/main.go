// Command covidctl inspects a downloaded time-series file offline: country
// stats, marker colors and the color for arbitrary counts.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// sourceFlags are shared by the commands that read local files.
type sourceFlags struct {
	datasetPath string
	coordsPath  string
	date        string
	lookback    int
}

func newRootCmd() *cobra.Command {
	flags := &sourceFlags{}
	rootCmd := &cobra.Command{
		Use:          "covidctl",
		Short:        "Inspect COVID-19 time series and map markers offline",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.datasetPath, "dataset", "timeseries.json", "Path to the time-series JSON file")
	rootCmd.PersistentFlags().StringVar(&flags.coordsPath, "coords", "coords.json", "Path to the GeoJSON coordinate file")
	rootCmd.PersistentFlags().StringVar(&flags.date, "date", "", "Reference day as YYYY-M-D (default: yesterday)")
	rootCmd.PersistentFlags().IntVar(&flags.lookback, "lookback", 7, "Days between the latest and prior counts")

	rootCmd.AddCommand(newStatsCmd(flags))
	rootCmd.AddCommand(newMarkersCmd(flags))
	rootCmd.AddCommand(newColorCmd())
	return rootCmd
}
