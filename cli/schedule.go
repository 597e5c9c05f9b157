package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bvtime/reconciler/engine/conflict"
	"github.com/bvtime/reconciler/engine/schedule"
)

// scheduleCmd groups the internal cron daemon (§6): start runs it in the
// foreground; stop/status/jobs inspect the running instance via a PID file
// next to the manual-entry store, since sync_frequency_hours/daily_time are
// otherwise just hints an external scheduler (cron, a k8s CronJob) reads.
func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run or inspect the built-in reconciliation scheduler",
	}
	cmd.AddCommand(scheduleStartCmd(), scheduleStopCmd(), scheduleStatusCmd(), scheduleJobsCmd())
	return cmd
}

func pidFilePath(a *app) string {
	return filepath.Join(filepath.Dir(a.cfg.ManualStorePath), "reconcile-scheduler.pid")
}

func scheduleStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler and block until interrupted",
		RunE:  runScheduleStart,
	}
}

func runScheduleStart(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := a.context(cmd.Context())

	pidPath := pidFilePath(a)
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("failed to write pid file %q: %w", pidPath, err)
	}

	o, err := a.orchestrator()
	if err != nil {
		return err
	}

	s := schedule.New()
	job := func(jobCtx context.Context) error {
		params, err := runParams(cmd, a.cfg)
		if err != nil {
			return err
		}
		params.Strategy = conflict.Strategy("")
		result := o.Run(jobCtx, params)
		printSummary(cmd.OutOrStdout(), result)
		if !result.Success {
			return errRunIncomplete
		}
		return nil
	}

	if a.cfg.DailyTime != "" {
		if err := s.AddDaily("daily-sync", a.cfg.DailyTime, job); err != nil {
			return err
		}
	} else if a.cfg.SyncFrequencyHours > 0 {
		if err := s.AddHourly("hourly-sync", a.cfg.SyncFrequencyHours, job); err != nil {
			return err
		}
	} else {
		return fmt.Errorf("no schedule configured: set daily_time or sync_frequency_hours")
	}

	if err := s.WatchConfig(ctx, configPathOrDefault(cmd), func() {
		a.log.Info("config change detected; running jobs keep the configuration loaded at start")
	}); err != nil {
		a.log.Warn("config watch disabled", "error", err.Error())
	}

	s.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	fmt.Fprintln(cmd.OutOrStdout(), "Scheduler stopping.")

	s.Stop()
	os.Remove(pidPath)

	if sig == syscall.SIGINT {
		handleInterrupt()
	}
	return nil
}

func configPathOrDefault(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func scheduleStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running scheduler instance",
		RunE:  runScheduleStop,
	}
}

func runScheduleStop(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	pid, err := readSchedulerPID(a)
	if err != nil {
		return err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal scheduler process %d: %w", pid, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent stop signal to scheduler (pid %d)\n", pid)
	return nil
}

func scheduleStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a scheduler instance is running",
		RunE:  runScheduleStatus,
	}
}

func runScheduleStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	pid, err := readSchedulerPID(a)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Scheduler is not running.")
		return nil
	}
	if !processAlive(pid) {
		fmt.Fprintln(cmd.OutOrStdout(), "Scheduler is not running (stale pid file).")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scheduler is running (pid %d)\n", pid)
	return nil
}

func scheduleJobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Describe the job(s) the scheduler would register from config",
		RunE:  runScheduleJobs,
	}
}

func runScheduleJobs(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if a.cfg.DailyTime != "" {
		fmt.Fprintf(out, "daily-sync: once per day at %s (scheduler host's local time)\n", a.cfg.DailyTime)
		return nil
	}
	if a.cfg.SyncFrequencyHours > 0 {
		fmt.Fprintf(out, "hourly-sync: every %d hour(s)\n", a.cfg.SyncFrequencyHours)
		return nil
	}
	fmt.Fprintln(out, "No schedule configured.")
	return nil
}

func readSchedulerPID(a *app) (int, error) {
	raw, err := os.ReadFile(pidFilePath(a))
	if err != nil {
		return 0, fmt.Errorf("no scheduler pid file found: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("corrupt pid file: %w", err)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
