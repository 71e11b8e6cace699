package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/sarsim/internal/ai"
	"github.com/udisondev/sarsim/internal/api"
	"github.com/udisondev/sarsim/internal/command"
	"github.com/udisondev/sarsim/internal/comms"
	"github.com/udisondev/sarsim/internal/config"
	"github.com/udisondev/sarsim/internal/journal"
	"github.com/udisondev/sarsim/internal/world"
)

const ConfigPath = "config/sarsim.yaml"

func main() {
	// sarsim hash-token <token> prints the value for api.token_hash.
	if len(os.Args) == 3 && os.Args[1] == "hash-token" {
		hash, err := api.HashToken(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("SARSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("sarsim starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.Simulation.TickRate,
		"journal", cfg.Journal.Backend)

	store, err := journal.Open(ctx, cfg.Journal)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("closing journal", "err", err)
		}
	}()

	runInfo := journal.NewRun(cfg, time.Now())
	if err := store.StartRun(ctx, runInfo); err != nil {
		return fmt.Errorf("starting journal run: %w", err)
	}
	writer := journal.NewWriter(store, runInfo.ID, cfg.Journal.QueueSize, cfg.Journal.FlushInterval)
	board := comms.NewBoard(cfg.Comms.MessageTTL, time.Now)

	w, err := world.New(cfg, world.WithSink(writer), world.WithSink(board))
	if err != nil {
		return fmt.Errorf("creating world: %w", err)
	}
	slog.Info("run started", "run", runInfo.ID)

	tickMgr := ai.NewTickManager(cfg.Simulation.TickInterval())
	tickMgr.Register("world", w)
	tickMgr.Register("comms", board)

	server := api.NewServer(cfg.API, w, command.NewDispatcher(w), board)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := writer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("journal writer: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := tickMgr.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting api server", "address", cfg.API.Addr())
		if err := server.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	stats := w.Stats()
	slog.Info("run finished",
		"run", runInfo.ID,
		"ticks", tickMgr.Ticks(),
		"world_tick", w.CurrentTick(),
		"victims_discovered", stats.VictimsDiscovered,
		"victims_rescued", stats.VictimsRescued,
		"total_distance", fmt.Sprintf("%.1f", stats.TotalDistance))
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
