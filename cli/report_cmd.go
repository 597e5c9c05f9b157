package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bvtime/reconciler/engine/compare"
	"github.com/bvtime/reconciler/engine/report"
)

// reportCmd runs a reconciliation pass (honoring config's dry_run unless
// --dry-run is set) and writes JSON and CSV reports to report_dir. Both
// reports list discrepancies at or above --min-level per §4.F's
// extraction rule; the JSON report's stats block always summarises the
// full, unfiltered batch.
func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run reconciliation and write JSON/CSV reports",
		RunE:  runReport,
	}
	cmd.Flags().Bool("dry-run", false, "compute updates without writing them")
	cmd.Flags().String("min-level", string(compare.DeviationLight), "minimum deviation level to include (none|light|moderate|high)")
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := a.context(cmd.Context())

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		a.cfg.DryRun = true
	}

	o, err := a.orchestrator()
	if err != nil {
		return err
	}
	params, err := runParams(cmd, a.cfg)
	if err != nil {
		return err
	}

	result := o.Run(ctx, params)
	printSummary(cmd.OutOrStdout(), result)

	minLevel, _ := cmd.Flags().GetString("min-level")
	level := compare.DeviationLevel(minLevel)

	if err := os.MkdirAll(a.cfg.ReportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create report_dir %q: %w", a.cfg.ReportDir, err)
	}

	now := time.Now()
	jsonPath := filepath.Join(a.cfg.ReportDir, report.Filename(now, "json"))
	if err := writeReportFile(jsonPath, func(f *os.File) error { return report.WriteJSON(f, result, now, level) }); err != nil {
		return err
	}
	csvPath := filepath.Join(a.cfg.ReportDir, report.Filename(now, "csv"))
	if err := writeReportFile(csvPath, func(f *os.File) error { return report.WriteCSV(f, result, level) }); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reports written: %s, %s\n", jsonPath, csvPath)
	if !result.Success {
		return errRunIncomplete
	}
	return nil
}

func writeReportFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %q: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write report file %q: %w", path, err)
	}
	return nil
}
