package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bkubisiak/birdr-go/cmd/checklist"
	"github.com/bkubisiak/birdr-go/cmd/initialize"
	"github.com/bkubisiak/birdr-go/cmd/lifelist"
	"github.com/bkubisiak/birdr-go/cmd/location"
	"github.com/bkubisiak/birdr-go/cmd/reflist"
	"github.com/bkubisiak/birdr-go/cmd/sighting"
	"github.com/bkubisiak/birdr-go/cmd/species"
	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "birdr",
		Short: "Record and track bird sightings",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Flags are parsed by now, so --debug can reach the logger.
			logging.SetDebug(settings.Debug)
		},
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		initialize.Command(settings),
		sighting.Command(settings),
		checklist.Command(settings),
		lifelist.Command(settings),
		location.Command(settings),
		reflist.Command(settings),
		species.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Database.Path, "database", viper.GetString("database.path"), "Path to the SQLite database file")
}
