package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/eventstore"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/report"
)

func newArchiveCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect the SQLite event-log archive",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", os.Getenv("VAXSIM_DB"), "SQLite archive file")

	list := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openRequiredArchive(dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			runs, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN ID\tSCENARIO\tEVENTS\tSAVED AT")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.Scenario, r.Events, r.SavedAt.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	var exportPath string
	export := &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Write an archived event log as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openRequiredArchive(dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := store.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if exportPath != "" && exportPath != "-" {
				f, err := os.Create(exportPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return report.WriteEventsCSV(w, records)
		},
	}
	export.Flags().StringVarP(&exportPath, "out", "o", "-", "Output file, - for stdout")

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete archived runs older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			store, closeStore, err := openRequiredArchive(dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of the runs to delete")

	cmd.AddCommand(list, export, prune)
	return cmd
}

func openRequiredArchive(dbPath string) (*eventstore.Store, func(), error) {
	if dbPath == "" {
		return nil, nil, errors.New("--db is required")
	}
	return openArchive(dbPath)
}
