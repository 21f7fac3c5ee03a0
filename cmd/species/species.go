// Package species implements species lookup commands.
package species

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/datastore"
)

// Command creates the species subcommand tree.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "species",
		Short: "Species lookups",
	}

	cmd.AddCommand(searchCommand(settings))

	return cmd
}

func searchCommand(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [prefix]",
		Short: "List species whose common name starts with a prefix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := strings.Join(args, " ")

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			matches, err := store.SearchSpecies(cmd.Context(), prefix)
			if err != nil {
				return err
			}

			for i := range matches {
				if matches[i].ScientificName != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n",
						matches[i].CommonName, matches[i].ScientificName)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), matches[i].CommonName)
			}
			return nil
		},
	}

	return cmd
}
