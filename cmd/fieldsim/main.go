package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fieldsim/host/internal/config"
	"github.com/fieldsim/host/internal/core/event"
	"github.com/fieldsim/host/internal/data"
	"github.com/fieldsim/host/internal/scripting"
	"github.com/fieldsim/host/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string, id int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            fieldsim  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     deterministic simulation host         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", name, id)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func run() error {
	// 1. Load config
	cfgPath := "config/fieldsim.toml"
	if p := os.Getenv("FIELDSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// A missing default config is fine; an explicitly named one is not.
		if !errors.Is(err, fs.ErrNotExist) || os.Getenv("FIELDSIM_CONFIG") != "" {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Defaults()
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Event bus with logging subscribers
	bus := event.NewBus()
	event.Subscribe(bus, func(ev event.GoalScored) {
		log.Info("goal scored", zap.Uint64("cycle", ev.Cycle), zap.Float64("x", ev.X), zap.Float64("y", ev.Y))
	})
	event.Subscribe(bus, func(ev event.PhaseChanged) {
		log.Info("phase changed", zap.Uint64("cycle", ev.Cycle), zap.String("from", ev.From), zap.String("to", ev.To))
	})
	event.Subscribe(bus, func(ev event.RobotSpawned) {
		log.Info("robot spawned", zap.Uint64("cycle", ev.Cycle), zap.Int("id", ev.ID))
	})
	event.Subscribe(bus, func(ev event.HookFaulted) {
		log.Warn("hook faulted", zap.Uint64("cycle", ev.Cycle), zap.String("hook", ev.Hook), zap.Error(ev.Err))
	})

	// 4. World + scenario
	field := sim.Field{
		HalfLength:    cfg.Field.HalfLength,
		HalfWidth:     cfg.Field.HalfWidth,
		GoalHalfWidth: cfg.Field.GoalHalfWidth,
	}
	world := sim.NewWorld(cfg.Sim.TickDuration, field, bus)

	if cfg.Scenario.Path != "" {
		sc, err := data.Load(cfg.Scenario.Path)
		if err != nil {
			return err
		}
		if err := sc.Apply(world); err != nil {
			return fmt.Errorf("apply scenario: %w", err)
		}
		printOK(fmt.Sprintf("scenario %q: %d robots, phase %s", sc.Name, len(sc.Robots), world.Phase()))
	} else {
		// Host default-spawn policy: ball at center, zero velocity.
		world.ReturnBallToCenter()
	}

	// 5. Script hooks
	engine, err := scripting.NewEngine(cfg.Scripts.Dir, log)
	if err != nil {
		return err
	}
	defer engine.Close()
	printOK(fmt.Sprintf("scripts loaded from %s", cfg.Scripts.Dir))

	// 6. Scheduler
	sched := sim.NewScheduler(world, engine, bus, sim.Config{
		MaxCycles: cfg.Sim.MaxCycles,
		Realtime:  cfg.Sim.Realtime,
	}, log)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdownCh
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
		sched.Stop()
	}()

	printOK(fmt.Sprintf("loop started (tick: %s)", cfg.Sim.TickDuration))
	fmt.Println()

	if err := sched.Run(context.Background()); err != nil {
		return err
	}

	log.Info("run complete",
		zap.Uint64("cycles", world.CycleCount()),
		zap.Float64("sim_time", world.Time()),
		zap.String("phase", world.Phase().String()),
		zap.Int("hook_faults", len(sched.Faults())))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
