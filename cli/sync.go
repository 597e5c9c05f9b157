package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bvtime/reconciler/engine/conflict"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass and write the resolved updates",
		RunE:  runSync,
	}
	cmd.Flags().Bool("dry-run", false, "compute updates without writing them")
	cmd.Flags().String("strategy", "", "force a conflict resolution strategy (override, add, skip, fail)")
	cmd.Flags().Bool("stop-on-error", false, "abort the write batch on the first failure")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := a.context(cmd.Context())

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	strategyFlag, _ := cmd.Flags().GetString("strategy")
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	if dryRun {
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
	params.Strategy = conflict.Strategy(strategyFlag)
	params.StopOnError = stopOnError

	result := o.Run(ctx, params)
	printSummary(cmd.OutOrStdout(), result)

	if !result.Success {
		return errRunIncomplete
	}
	if result.BatchResult.Failed > 0 {
		return fmt.Errorf("%d update(s) failed", result.BatchResult.Failed)
	}
	return nil
}
