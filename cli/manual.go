package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bvtime/reconciler/engine/core"
	"github.com/bvtime/reconciler/engine/manualentry"
)

// manualCmd groups the manual-entry store operations (§4.J).
func manualCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Manage manually-logged time entries",
	}
	cmd.AddCommand(manualAddCmd(), manualListCmd(), manualRemoveCmd())
	return cmd
}

func manualAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a manual time entry",
		RunE:  runManualAdd,
	}
	cmd.Flags().Int("work-item", 0, "work item ID (required)")
	cmd.Flags().Float64("hours", 0, "hours logged, in (0, 24] (required)")
	cmd.Flags().String("date", "", "date, YYYY-MM-DD (required)")
	cmd.Flags().String("description", "", "what the time was spent on (required)")
	cmd.Flags().String("user", "", "user ID the entry belongs to (required)")
	return cmd
}

func runManualAdd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	workItem, _ := cmd.Flags().GetInt("work-item")
	hours, _ := cmd.Flags().GetFloat64("hours")
	date, _ := cmd.Flags().GetString("date")
	description, _ := cmd.Flags().GetString("description")
	user, _ := cmd.Flags().GetString("user")

	entry := manualentry.Entry{
		WorkItemID:  workItem,
		Hours:       hours,
		Date:        date,
		Description: description,
		UserID:      user,
	}

	saved, err := a.manualStore().Add(entry)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s (work item %d, %.2fh)\n", saved.ID, saved.WorkItemID, saved.Hours)
	return nil
}

func manualListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List manual time entries",
		RunE:  runManualList,
	}
}

func runManualList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	entries, err := a.manualStore().List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No manual entries.")
		return nil
	}
	fmt.Fprintf(out, "%-30s %-10s %-8s %-12s %-8s %s\n", "ID", "WORK_ITEM", "HOURS", "DATE", "SYNCED", "DESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(out, "%-30s %-10d %-8.2f %-12s %-8t %s\n", e.ID, e.WorkItemID, e.Hours, e.Date, e.Synced, e.Description)
	}
	return nil
}

func manualRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry-id>",
		Short: "Remove a manual time entry by ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runManualRemove,
	}
}

func runManualRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	id, err := core.ParseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid entry ID %q: %w", args[0], err)
	}
	if err := a.manualStore().Remove(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %s\n", id)
	return nil
}
