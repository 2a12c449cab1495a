package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"tg_checkin_bot/internal/app"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [provider]",
		Short: "Show recent check-in runs from the history database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.Close()

			if d.db == nil {
				return errors.New("DATABASE_URL is not set; run history is not persisted")
			}

			provider := ""
			if len(args) == 1 {
				provider = args[0]
			}
			reports, err := d.reports.ListRecent(cmd.Context(), provider, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tPROVIDER\tSTATUS\tGAINED\tTOTAL")
			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"),
					r.Provider, app.StatusLabel(r.Status),
					r.Fields["gained"], r.Fields["total"])
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}
