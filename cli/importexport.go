package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bvtime/reconciler/engine/manualentry"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import manual entries from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", args[0], err)
	}
	defer f.Close()

	entries, err := manualentry.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse CSV %q: %w", args[0], err)
	}

	store := a.manualStore()
	imported := 0
	for _, e := range entries {
		if _, err := store.Add(e); err != nil {
			return fmt.Errorf("failed to import entry for work item %d: %w", e.WorkItemID, err)
		}
		imported++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s\n", imported, args[0])
	return nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export manual entries to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	entries, err := a.manualStore().List()
	if err != nil {
		return err
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", args[0], err)
	}
	defer f.Close()

	if err := manualentry.WriteCSV(f, entries); err != nil {
		return fmt.Errorf("failed to write CSV %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), args[0])
	return nil
}
