// Package checklist implements checklist lifecycle and reporting commands.
package checklist

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/datastore"
)

// Command creates the checklist subcommand tree.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Manage outing checklists",
	}

	cmd.AddCommand(
		openCommand(settings),
		closeCommand(settings),
		listCommand(settings),
		summaryCommand(settings),
		diffCommand(settings),
	)

	return cmd
}

func openCommand(settings *conf.Settings) *cobra.Command {
	var startAt string

	cmd := &cobra.Command{
		Use:   "open [location]",
		Short: "Open a new checklist at a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locationName := strings.Join(args, " ")

			startTime := time.Now()
			if startAt != "" {
				parsed, err := time.Parse(time.RFC3339, startAt)
				if err != nil {
					return fmt.Errorf("parsing start time: %w", err)
				}
				startTime = parsed
			}

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			checklist, err := store.OpenChecklist(cmd.Context(), locationName, startTime)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Opened checklist %d at %s\n",
				checklist.ID, checklist.Location.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&startAt, "start", "", "Start time (RFC 3339, defaults to now)")

	return cmd
}

func closeCommand(settings *conf.Settings) *cobra.Command {
	var endAt string

	cmd := &cobra.Command{
		Use:   "close [checklist-id]",
		Short: "Close a checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checklistID, err := parseChecklistID(args[0])
			if err != nil {
				return err
			}

			endTime := time.Now()
			if endAt != "" {
				parsed, err := time.Parse(time.RFC3339, endAt)
				if err != nil {
					return fmt.Errorf("parsing end time: %w", err)
				}
				endTime = parsed
			}

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			checklist, err := store.CloseChecklist(cmd.Context(), checklistID, endTime)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Closed checklist %d\n", checklist.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&endAt, "end", "", "End time (RFC 3339, defaults to now)")

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent checklists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			checklists, err := store.GetChecklists(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLOCATION\tSTARTED\tSTATE")
			for i := range checklists {
				c := &checklists[i]
				state := "open"
				if c.IsClosed() {
					state = "closed"
				}
				locationName := ""
				if c.Location != nil {
					locationName = c.Location.Name
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					c.ID, locationName, c.StartTime.Format("2006-01-02 15:04"), state)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of checklists to show")

	return cmd
}

func summaryCommand(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [checklist-id]",
		Short: "Show per-species totals for a checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checklistID, err := parseChecklistID(args[0])
			if err != nil {
				return err
			}

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			totals, err := store.ChecklistSummary(cmd.Context(), checklistID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SPECIES\tCOUNT")
			for i := range totals {
				fmt.Fprintf(w, "%s\t%d\n", totals[i].CommonName, totals[i].TotalCount)
			}
			return w.Flush()
		},
	}

	return cmd
}

func diffCommand(settings *conf.Settings) *cobra.Command {
	var (
		listName   string
		byCategory bool
	)

	cmd := &cobra.Command{
		Use:   "diff [checklist-id]",
		Short: "Diff a checklist against a reference species list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checklistID, err := parseChecklistID(args[0])
			if err != nil {
				return err
			}

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()

			if byCategory {
				diff, err := store.DiffAgainstReferenceListByCategory(cmd.Context(), checklistID, listName)
				if err != nil {
					return err
				}
				for i := range diff.Categories {
					c := &diff.Categories[i]
					fmt.Fprintf(out, "%s: %d/%d (%.0f%%)\n",
						c.Category, len(c.Seen), len(c.Seen)+len(c.Missing), c.Completion()*100)
					for _, name := range c.Seen {
						fmt.Fprintf(out, "  + %s\n", name)
					}
					for _, name := range c.Missing {
						fmt.Fprintf(out, "  - %s\n", name)
					}
				}
				fmt.Fprintf(out, "Overall: %.0f%%\n", diff.Completion()*100)
				return nil
			}

			diff, err := store.DiffAgainstReferenceList(cmd.Context(), checklistID, listName)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Seen (%d):\n", len(diff.Seen))
			for _, name := range diff.Seen {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintf(out, "Missing (%d):\n", len(diff.Missing))
			for _, name := range diff.Missing {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&listName, "list", "r", "", "Reference list to diff against")
	cmd.Flags().BoolVar(&byCategory, "by-category", false, "Group the diff by taxonomy category with completion percentages")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}

func parseChecklistID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid checklist id %q: %w", arg, err)
	}
	return uint(id), nil
}
