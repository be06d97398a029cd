package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/jigoku/jigoku-server-go/internal/cards"
	"github.com/jigoku/jigoku-server-go/internal/config"
	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/gateway"
	"github.com/jigoku/jigoku-server-go/internal/metrics"
	"github.com/jigoku/jigoku-server-go/internal/repository"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
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

	logger.Info("starting jigoku server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("jigoku server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	catalog, err := cards.Load(cfg.Cards.Catalog)
	if err != nil {
		return err
	}
	logger.Info("card catalog loaded",
		zap.String("path", cfg.Cards.Catalog),
		zap.Int("cards", catalog.Len()),
	)

	journal, err := openJournal(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer journal.Close()

	var recorder *game.ReplayRecorder
	if cfg.Replay.Enabled {
		if err := os.MkdirAll(cfg.Replay.Directory, 0o755); err != nil {
			return fmt.Errorf("failed to create replay directory: %w", err)
		}
		recorder = game.NewReplayRecorder(logger, cfg.Replay.Directory)
		logger.Info("replay recording enabled", zap.String("directory", cfg.Replay.Directory))
	}

	engine := game.NewEngine(game.EngineOptions{
		Logger:        logger,
		Journal:       journal,
		Recorder:      recorder,
		MaxGames:      cfg.Game.MaxGames,
		StartingFate:  cfg.Game.StartingFate,
		StartingHonor: cfg.Game.StartingHonor,
	})
	hub := gateway.NewHub(engine, catalog, logger, gateway.Options{
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxMessageSize: cfg.Server.MaxMessageSize,
	})

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.WebSocketPath, hub)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}
	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     mux,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return hub.Run(ctx)
	})
	eg.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("websocket_path", cfg.Server.WebSocketPath),
			zap.Bool("metrics", cfg.Metrics.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		for _, id := range engine.Games() {
			if err := engine.EndGame(id); err != nil {
				logger.Warn("failed to end game", zap.String("game_id", id), zap.Error(err))
			}
		}
		return nil
	})
	return eg.Wait()
}

func openJournal(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.EventStore, error) {
	if cfg.DSN == "" {
		logger.Warn("no database configured; journaling events in memory")
		return repository.NewMemoryJournal(), nil
	}
	return repository.NewPostgresJournal(ctx, cfg, logger)
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
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
