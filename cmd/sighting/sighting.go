// Package sighting implements the add command for recording observations.
package sighting

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/datastore"
)

// Command creates the add subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		checklistID uint
		count       int
		notes       string
		observedAt  string
	)

	cmd := &cobra.Command{
		Use:   "add [species name]",
		Short: "Record a sighting on an open checklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speciesName := strings.Join(args, " ")

			var observed *time.Time
			if observedAt != "" {
				parsed, err := time.Parse(time.RFC3339, observedAt)
				if err != nil {
					return fmt.Errorf("parsing observation time: %w", err)
				}
				observed = &parsed
			}

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sighting, err := store.RecordSighting(cmd.Context(), checklistID, speciesName, count, notes, observed)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d x %s on checklist %d\n",
				sighting.Count, sighting.Species.CommonName, checklistID)
			return nil
		},
	}

	cmd.Flags().UintVarP(&checklistID, "checklist", "c", 0, "Checklist to record the sighting on")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of individuals observed")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes for the sighting")
	cmd.Flags().StringVar(&observedAt, "time", "", "Observation time (RFC 3339)")
	_ = cmd.MarkFlagRequired("checklist")

	return cmd
}
