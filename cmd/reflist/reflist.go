// Package reflist implements reference species list management commands.
package reflist

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/datastore"
)

// Command creates the reflist subcommand tree.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reflist",
		Short: "Manage reference species lists",
	}

	cmd.AddCommand(
		createCommand(settings),
		listCommand(settings),
		showCommand(settings),
	)

	return cmd
}

func createCommand(settings *conf.Settings) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "create [name] [species]...",
		Short: "Create a named reference list",
		Long: "Create a named reference list from species given as arguments,\n" +
			"from a file with one common name per line, or both.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			speciesNames := args[1:]

			if fromFile != "" {
				fileNames, err := readSpeciesFile(fromFile)
				if err != nil {
					return err
				}
				speciesNames = append(speciesNames, fileNames...)
			}

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			list, err := store.CreateReferenceList(cmd.Context(), name, speciesNames)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created reference list %q with %d species\n",
				list.Name, len(speciesNames))
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "File with one species common name per line")

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reference lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			lists, err := store.GetReferenceLists(cmd.Context())
			if err != nil {
				return err
			}

			for i := range lists {
				fmt.Fprintln(cmd.OutOrStdout(), lists[i].Name)
			}
			return nil
		},
	}

	return cmd
}

func showCommand(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show the species on a reference list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			list, err := store.GetReferenceList(cmd.Context(), name)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SPECIES\tCATEGORY")
			for i := range list.Species {
				category := ""
				if list.Species[i].Category != nil {
					category = list.Species[i].Category.Name
				}
				fmt.Fprintf(w, "%s\t%s\n", list.Species[i].CommonName, category)
			}
			return w.Flush()
		},
	}

	return cmd
}

// readSpeciesFile reads a newline-separated species name file, skipping blank
// lines and comments.
func readSpeciesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading species file: %w", err)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}
