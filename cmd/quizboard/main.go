package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quizboard/quizboard-server-go/internal/config"
	"github.com/quizboard/quizboard-server-go/internal/game"
	"github.com/quizboard/quizboard-server-go/internal/repository"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	resume     = flag.Bool("resume", false, "resume the most recently saved game")
	boardID    = flag.String("board", "", "start a new game on a board stored by import_board")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting quizboard host",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("host stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("host stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	repo, err := repository.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer repo.Close()

	eventCfg, err := cfg.EventConfig()
	if err != nil {
		return err
	}

	bus := game.NewEffectBus()
	opts := []game.Option{
		game.WithLogger(logger),
		game.WithEventConfig(eventCfg),
		game.WithEffectBus(bus),
	}

	var recorder *game.ReplayRecorder
	if cfg.Replay.Enabled {
		recorder = game.NewReplayRecorder(logger, cfg.Replay.Dir)
		opts = append(opts, game.WithRecorder(recorder))
	}

	engine, err := buildEngine(ctx, cfg, repo, startOptions{resume: *resume, boardID: *boardID}, logger, opts)
	if err != nil {
		return err
	}

	c := newConsole(engine, repo, os.Stdout, logger)
	c.animation = eventCfg.AnimationDuration
	c.attach(bus)

	fmt.Fprintf(os.Stdout, "quizboard %s, game %s (type help)\n", version, engine.ID())
	runErr := c.Run(ctx, os.Stdin)

	if recorder != nil {
		if err := recorder.SaveReplay(engine.ID()); err != nil {
			logger.Warn("failed to save replay", zap.Error(err))
		}
	}
	return runErr
}

type startOptions struct {
	resume  bool
	boardID string
}

// buildEngine resumes the latest saved game when asked, falling back to a new
// game on the stored or configured board.
func buildEngine(ctx context.Context, cfg *config.Config, repo repository.SnapshotRepository, start startOptions, logger *zap.Logger, opts []game.Option) (*game.Engine, error) {
	if !start.resume {
		if start.boardID == "" {
			return game.NewEngine(cfg.NewBoard(), opts...)
		}
		snap, err := repo.Load(ctx, start.boardID)
		if err != nil {
			return nil, fmt.Errorf("load board %s: %w", start.boardID, err)
		}
		logger.Info("starting on stored board",
			zap.String("board_id", start.boardID),
			zap.Int("categories", len(snap.Board.Categories)),
		)
		return game.NewEngine(snap.Board, opts...)
	}

	id, snap, err := repo.Latest(ctx)
	switch {
	case errors.Is(err, repository.ErrSnapshotNotFound):
		logger.Info("no saved game to resume; starting a new one")
		return game.NewEngine(cfg.NewBoard(), opts...)
	case err != nil:
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	engine, err := game.FromSnapshot(snap, append(opts, game.WithGameID(id))...)
	if errors.Is(err, game.ErrNoGameInSnapshot) {
		logger.Info("saved session has no game in progress; starting on its board", zap.String("game_id", id))
		return game.NewEngine(snap.Board, opts...)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("resumed game",
		zap.String("game_id", id),
		zap.String("phase", engine.Phase().Kind().String()),
	)
	return engine, nil
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
