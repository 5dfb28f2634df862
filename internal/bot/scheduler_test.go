package bot_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/edgard/relaybot/internal/bot"
	"github.com/edgard/relaybot/internal/bot/tasks"
	"github.com/edgard/relaybot/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunsEnabledTasks(t *testing.T) {
	t.Parallel()

	ran := make(chan struct{}, 1)
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"tick": func(context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
		"never": func(context.Context) error {
			t.Error("disabled task was executed")
			return nil
		},
	}
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"tick":    {Enabled: true, Schedule: "* * * * * *"},
		"never":   {Enabled: false, Schedule: "* * * * * *"},
		"missing": {Enabled: true, Schedule: "* * * * * *"},
		"empty":   {Enabled: true},
	}}
	taskMap["empty"] = func(context.Context) error { return nil }

	s, err := bot.NewScheduler(discardLogger(), cfg, taskMap)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	scheduled, err := s.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	if scheduled != 1 {
		t.Errorf("Start() scheduled %d tasks, want 1", scheduled)
	}

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("enabled task did not run within 3s")
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	t.Parallel()

	s, err := bot.NewScheduler(discardLogger(), nil, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if _, err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := s.Start(); err == nil {
		t.Error("second Start() error = nil, want error")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() on stopped scheduler error = %v", err)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"broken": {Enabled: true, Schedule: "not a cron"},
	}}
	s, err := bot.NewScheduler(discardLogger(), cfg, map[string]tasks.ScheduledTaskFunc{
		"broken": func(context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	scheduled, err := s.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = s.Stop() }()

	if scheduled != 0 {
		t.Errorf("Start() scheduled %d tasks, want 0", scheduled)
	}
}
