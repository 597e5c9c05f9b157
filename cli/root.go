package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// exitCanceled is the convention used for a user interrupt (§6: 130).
const exitCanceled = 130

// RootCmd assembles the full CLI surface: sync, manual, import, export,
// list, summary, schedule, report, status.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile calendar meetings against work-item tracked time",
	}
	root.PersistentFlags().String("config", "", "path to the YAML config file")
	root.PersistentFlags().Int("days", 1, "lookback window in days for sync/list/summary/report")
	root.PersistentFlags().String("user", "", "calendar user ID to reconcile (defaults to config)")

	root.AddCommand(
		syncCmd(),
		summaryCmd(),
		listCmd(),
		reportCmd(),
		manualCmd(),
		importCmd(),
		exportCmd(),
		scheduleCmd(),
		statusCmd(),
	)
	return root
}

// Execute runs the root command and translates errors/interrupts into the
// exit codes §6 specifies: 0 success, 1 handled failure, 130 interrupt.
func Execute() int {
	root := RootCmd()
	root.SilenceUsage = true
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

// handleInterrupt is called by commands that want to report a user
// interrupt with the §6 exit code instead of a generic failure.
func handleInterrupt() {
	os.Exit(exitCanceled)
}
