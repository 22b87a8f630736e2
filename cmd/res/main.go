package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/res-engine/res/internal/app"
	"github.com/res-engine/res/internal/audio"
	"github.com/res-engine/res/internal/config"
	coresys "github.com/res-engine/res/internal/core/system"
	"github.com/res-engine/res/internal/input"
	"github.com/res-engine/res/internal/render"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/res.toml"
	if p := os.Getenv("RES_CONFIG"); p != "" {
		cfgPath = p
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the TOML config")
	prof := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	headless := flag.Bool("headless", false, "run without a terminal, recording draw calls")
	frames := flag.Int("frames", 0, "headless: stop after this many frames (0 = until interrupted)")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(cfgPath)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return fmt.Errorf("load config: %w", err)
	}
	missing := err != nil

	// 2. Logger
	log, err := newLogger(cfg.Logging, *headless)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	if missing {
		log.Warn("config not found, using defaults", zap.String("path", cfgPath))
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *prof)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		return runHeadless(ctx, *cfg, *frames, log)
	}
	return runTerminal(ctx, *cfg, log)
}

func runTerminal(ctx context.Context, cfg config.Config, log *zap.Logger) (err error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	// A panic must not leave the terminal in raw mode.
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			log.Error("panic", zap.Any("value", r), zap.Stack("stack"))
			err = fmt.Errorf("panic: %v", r)
			return
		}
		screen.Fini()
	}()
	screen.SetTitle(cfg.Window.Title)

	keys := input.NewTerminalSource(cfg.Input.HoldWindow, log.Named("input"))
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go keys.Poll(pollCtx, screen)

	player := audio.Open(cfg.Audio.Enabled, cfg.Audio.SampleRate, log.Named("audio"))
	backend := render.NewTerminal(render.Clip(screen, cfg.Window.Width, cfg.Window.Height), log.Named("render"))

	a, err := app.New(cfg, app.Deps{Backend: backend, Keys: keys, Audio: player}, log)
	if err != nil {
		player.Close()
		return err
	}
	defer a.Close()
	a.Runner().Register(a.Phases().Begin, coresys.Func("ScreenSync", func(time.Duration) {
		if keys.Resized() {
			screen.Sync()
		}
	}))

	return a.Run(ctx)
}

func runHeadless(ctx context.Context, cfg config.Config, frames int, log *zap.Logger) error {
	rec := render.NewRecorder(80, 24)
	a, err := app.New(cfg, app.Deps{Backend: rec, Keys: input.NewStatic()}, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if frames <= 0 {
		return a.Run(ctx)
	}
	dt := cfg.Window.TickRate()
	start := time.Now()
	for i := 0; i < frames && ctx.Err() == nil; i++ {
		a.Step(dt)
	}
	log.Info("headless run finished",
		zap.Uint64("frames", a.Runner().Frame()),
		zap.Int("bodies", a.Bridge().BodyCount()),
		zap.Int("draw_calls", len(rec.Calls())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// newLogger writes to cfg.File when set. The terminal belongs to the
// renderer, so console output is only used headless.
func newLogger(cfg config.LoggingConfig, headless bool) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
		if headless && cfg.File == "" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	switch {
	case cfg.File != "":
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	case !headless:
		// Nowhere visible to write while the screen is owned.
		zapCfg.OutputPaths = nil
		zapCfg.ErrorOutputPaths = nil
	}

	return zapCfg.Build()
}
