package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/events"
	"github.com/shieldloop/sentryloop/pkg/experiment"
	"github.com/shieldloop/sentryloop/pkg/export"
)

const pollInterval = 200 * time.Millisecond

// RunCmd drives a single experiment to completion in-process, without the
// Control API, and exits once it reaches a terminal state.
type RunCmd struct {
	ConfigFile string `help:"YAML config file path." type:"existingfile" name:"config-file" short:"c"`
	Scenario   string `help:"Named scenario from the config file's scenarios table." name:"scenario"`
	Name       string `help:"Name for the created experiment." default:"cli-run"`

	Export    string `help:"Write a snapshot of the finished experiment to this path." type:"path"`
	ExportFmt string `help:"Export format." enum:"json,csv,sqlite" default:"json" name:"export-format"`
}

func (r *RunCmd) Run() error {
	configureLogging()

	cfg, err := loadConfig(r.ConfigFile)
	if err != nil {
		return &configError{err}
	}

	var expCfg domain.ExperimentConfig
	if r.Scenario != "" {
		expCfg, err = cfg.ApplyScenario(r.Scenario)
		if err != nil {
			return &configError{err}
		}
	} else {
		expCfg = cfg.Experiment.ToDomain("")
	}
	if err := expCfg.Validate(); err != nil {
		return &configError{err}
	}

	gw := buildGateway(cfg.Gateway)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := checkGatewayReachable(ctx, gw); err != nil {
		return &gatewayError{err}
	}

	bus := events.NewBus()
	logEvents(ctx, bus)

	sup := experiment.NewSupervisor(buildFactory(gw, bus))
	defer sup.Shutdown()

	exp, err := sup.Start(r.Name, expCfg)
	if err != nil {
		return &configError{err}
	}

	final, err := awaitTerminal(ctx, sup, exp.UUID)
	if err != nil {
		return err
	}

	slog.Info("experiment finished",
		"uuid", final.UUID, "status", final.Status,
		"episodes", final.CurrentEpisode, "violations", final.Stats.ViolationCount,
		"success", final.Stats.SuccessCount)

	if r.Export == "" {
		return nil
	}
	return r.exportFinal(final)
}

func awaitTerminal(ctx context.Context, sup *experiment.Supervisor, uuid string) (domain.Experiment, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = sup.Stop(uuid)
			exp, _ := sup.Status(uuid)
			return exp, ctx.Err()
		case <-ticker.C:
			exp, err := sup.Status(uuid)
			if err != nil {
				return domain.Experiment{}, fmt.Errorf("internal: %w", err)
			}
			switch exp.Status {
			case domain.StatusCompleted, domain.StatusStopped:
				return exp, nil
			case domain.StatusFailed:
				return exp, fmt.Errorf("internal: experiment failed: %s", exp.FailureReason)
			}
		}
	}
}

func logEvents(ctx context.Context, bus *events.Bus) {
	ch, unsubscribe := bus.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if ev.Kind == events.KindViolationDetected || ev.Kind == events.KindError {
					slog.Info("event", "uuid", ev.ExperimentID, "kind", ev.Kind, "seq", ev.Sequence)
				}
			}
		}
	}()
}

func (r *RunCmd) exportFinal(exp domain.Experiment) error {
	snap := export.NewSnapshot(exp, nil, time.Now())
	switch r.ExportFmt {
	case "csv":
		return export.WriteCSV(r.Export, snap)
	case "sqlite":
		return export.WriteSQLite(r.Export, snap)
	default:
		return export.WriteJSON(r.Export, snap)
	}
}
