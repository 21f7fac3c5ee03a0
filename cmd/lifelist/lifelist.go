// Package lifelist implements the lifelist reporting command.
package lifelist

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/datastore"
)

// Command creates the lifelist subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifelist",
		Short: "Show every species ever seen, ordered by first sighting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.LifeList(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SPECIES\tFIRST SEEN\tTOTAL")
			for i := range entries {
				e := &entries[i]
				fmt.Fprintf(w, "%s\t%s\t%d\n",
					e.CommonName, e.FirstSeen.Format("2006-01-02"), e.TotalCount)
			}
			return w.Flush()
		},
	}

	return cmd
}
