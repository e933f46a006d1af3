package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newScenariosCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenario catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := global.loadCatalog()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTATIONS\tHOURS\tSERVICE (MIN)\tBALK\tATTENDANCE\tTARGET\tDAYS")
			for _, name := range cat.Names() {
				sc, err := cat.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%g\t%g\t%g\t%g\t%d\t%d\n",
					sc.Name, sc.Stations, sc.OperatingHoursPerDay, sc.ServiceTimeMeanMinutes,
					sc.BalkProbability, sc.AttendanceRate, sc.TargetPopulation, sc.Days)
			}
			return tw.Flush()
		},
	}
}
