// Package location implements location reporting commands.
package location

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/datastore"
)

// Command creates the location subcommand tree.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Location reports",
	}

	cmd.AddCommand(totalsCommand(settings))

	return cmd
}

func totalsCommand(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals [location]",
		Short: "Show per-species totals across all checklists at a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locationName := strings.Join(args, " ")

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			totals, err := store.LocationTotals(cmd.Context(), locationName)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SPECIES\tTOTAL")
			for i := range totals {
				fmt.Fprintf(w, "%s\t%d\n", totals[i].CommonName, totals[i].TotalCount)
			}
			return w.Flush()
		},
	}

	return cmd
}
