// Package initialize implements the init command for database setup.
package initialize

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/datastore"
)

// Command creates the init subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [taxonomy-csv]",
		Short: "Initialize the bird database",
		Long: "Create the database schema if necessary. Optionally load an eBird " +
			"taxonomy CSV (downloaded from ebird.org) to populate the species " +
			"and category tables.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", settings.Database.Path)
				return nil
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening taxonomy file: %w", err)
			}
			defer func() { _ = file.Close() }()

			stats, err := store.ImportTaxonomy(cmd.Context(), file)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d species (%d already present, %d categories)\n",
				stats.SpeciesCreated, stats.SpeciesExisting, stats.CategoriesCreated)
			return nil
		},
	}

	return cmd
}
