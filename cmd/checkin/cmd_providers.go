package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the configured providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.Close()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCHAT\tBOT\tCOMMAND\tFOLLOW-UP\tSETTLE\tWINDOW\tCORRELATION")
			for _, p := range d.providers {
				followup := p.FollowupCommand
				if followup == "" {
					followup = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					p.Name, p.ChatHandle(), p.Bot, p.Command, followup,
					p.Settle, p.ScanWindow, p.Correlation)
			}
			return w.Flush()
		},
	}
}
