package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/spf13/cobra"
)

func newMarkersCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "markers",
		Short: "List every located country with its marker color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := referenceTime(flags.date, time.Now())
			if err != nil {
				return err
			}
			dataset, err := loadDataset(flags.datasetPath)
			if err != nil {
				return err
			}
			locations, err := loadLocations(cmd.Context(), flags.coordsPath)
			if err != nil {
				return err
			}

			markers := domain.BuildMarkers(dataset, locations, ref, flags.lookback)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "\tCountry\tColor\tCases\tLon\tLat")
			for _, m := range markers {
				cases := "no data"
				if m.Stats != nil {
					cases = domain.FormatThousands(m.Stats.Latest.Confirmed)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.2f\n", swatch(m.Color), m.Country, m.Color, cases, m.Lon, m.Lat)
			}
			return w.Flush()
		},
	}
}
