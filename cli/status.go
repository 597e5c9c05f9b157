package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd reports the engine's configured scope and local state: org,
// project, manual-entry count, and whether a scheduler instance is running.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration scope and local engine state",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Org: %s\n", a.cfg.Org)
	fmt.Fprintf(out, "Project: %s\n", a.cfg.Project)
	fmt.Fprintf(out, "Timezone: %s\n", a.cfg.Timezone)
	fmt.Fprintf(out, "Dry run: %t\n", a.cfg.DryRun)
	fmt.Fprintf(out, "Report dir: %s\n", a.cfg.ReportDir)

	entries, err := a.manualStore().List()
	if err != nil {
		fmt.Fprintf(out, "Manual entries: unavailable (%s)\n", err.Error())
	} else {
		fmt.Fprintf(out, "Manual entries: %d\n", len(entries))
	}

	if pid, err := readSchedulerPID(a); err == nil && processAlive(pid) {
		fmt.Fprintf(out, "Scheduler: running (pid %d)\n", pid)
	} else {
		fmt.Fprintln(out, "Scheduler: not running")
	}
	return nil
}
