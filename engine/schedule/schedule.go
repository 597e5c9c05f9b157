// Package schedule drives periodic reconciliation runs via cron or
// interval triggers, and can watch the config file and report changes to a
// callback.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/bvtime/reconciler/pkg/config"
	"github.com/bvtime/reconciler/pkg/logger"
)

// Job is one scheduled reconciliation invocation.
type Job func(ctx context.Context) error

// Scheduler wraps a cron.Cron, exposing start/stop/status and a
// config-change hook.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	entries map[string]cron.EntryID
	watcher *config.Watcher
}

func New() *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		entries: map[string]cron.EntryID{},
	}
}

// AddDaily schedules job to run once per day at HH:MM (local time,
// §6's daily_time config key).
func (s *Scheduler) AddDaily(name, dailyTime string, job Job) error {
	spec, err := dailyTimeToCron(dailyTime)
	if err != nil {
		return err
	}
	return s.addCron(name, spec, job)
}

// AddHourly schedules job to run every `hours` hours (§6's
// sync_frequency_hours config key).
func (s *Scheduler) AddHourly(name string, hours int, job Job) error {
	if hours <= 0 {
		return fmt.Errorf("sync_frequency_hours must be positive, got %d", hours)
	}
	spec := fmt.Sprintf("@every %dh", hours)
	return s.addCron(name, spec, job)
}

func (s *Scheduler) addCron(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, func() {
		log := logger.FromContext(context.Background())
		if err := job(context.Background()); err != nil {
			log.Error("scheduled job failed", "job", name, "error", err.Error())
		}
	})
	if err != nil {
		return err
	}
	s.entries[name] = id
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
	s.running = true
}

// Stop halts the scheduler and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	if s.watcher != nil {
		s.watcher.Close()
	}
}

// Status reports whether the scheduler is currently running.
func (s *Scheduler) Status() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Jobs lists the scheduled job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// WatchConfig ties a config.Watcher into the scheduler's lifetime (Stop
// closes it). onChange is invoked on every detected write; the scheduler
// itself does not reload configuration or change its registered jobs.
func (s *Scheduler) WatchConfig(ctx context.Context, path string, onChange func()) error {
	w, err := config.NewWatcher()
	if err != nil {
		return err
	}
	w.OnChange(onChange)
	if err := w.Watch(ctx, path); err != nil {
		return err
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

func dailyTimeToCron(dailyTime string) (string, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(dailyTime, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("invalid daily_time %q: %w", dailyTime, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("daily_time %q out of range", dailyTime)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
