package main

import (
	"fmt"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/spf13/cobra"
)

func newColorCmd() *cobra.Command {
	var (
		triple domain.SeverityTriple
		noData bool
	)

	cmd := &cobra.Command{
		Use:   "color",
		Short: "Print the marker color for a set of counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noData {
				c := domain.SeverityColor(nil)
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (no data)\n", swatch(c), c)
				return err
			}
			c := domain.SeverityColor(&triple)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, infected %s)\n",
				swatch(c), c, domain.Classify(triple), domain.FormatThousands(triple.Infected()))
			return err
		},
	}
	cmd.Flags().Int64Var(&triple.Confirmed, "confirmed", 0, "Confirmed cases")
	cmd.Flags().Int64Var(&triple.Deaths, "deaths", 0, "Deaths")
	cmd.Flags().Int64Var(&triple.Recovered, "recovered", 0, "Recoveries")
	cmd.Flags().BoolVar(&noData, "no-data", false, "Color for a country missing from the dataset")
	return cmd
}
