package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	server "github.com/Ghost-Author/fish-game"
	"github.com/Ghost-Author/fish-game/internal/config"
	"github.com/Ghost-Author/fish-game/internal/data"
	servernet "github.com/Ghost-Author/fish-game/internal/net"
	"github.com/Ghost-Author/fish-game/internal/persist"
	"github.com/Ghost-Author/fish-game/internal/sim"
)

// Run boots the whole server and blocks until ctx is cancelled, then shuts
// everything down in order: tick loop, player notifications, HTTP server,
// store.
func Run(ctx context.Context, cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	levels, err := loadLevels(cfg.Game.LevelsPath, logger)
	if err != nil {
		return err
	}

	store, err := newStore(ctx, cfg.Leaderboard, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	hub := server.NewHub(server.HubConfig{
		Levels:   levels,
		Store:    store,
		Logger:   logger,
		TickRate: cfg.Game.TickRate,
	})

	stop := make(chan struct{})
	go hub.RunSimulation(stop)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{Store: store, Logger: logger}),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		close(stop)
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	close(stop)
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func loadLevels(path string, logger *zap.Logger) ([]sim.Level, error) {
	if path == "" {
		return sim.DefaultLevels(), nil
	}
	levels, err := data.LoadLevelTable(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("level table not found, using defaults", zap.String("path", path))
		return sim.DefaultLevels(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	logger.Info("level table loaded", zap.String("path", path), zap.Int("levels", len(levels)))
	return levels, nil
}

func newStore(ctx context.Context, cfg config.LeaderboardConfig, logger *zap.Logger) (persist.Store, error) {
	switch cfg.Driver {
	case "postgres":
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		db, err := persist.NewDB(connectCtx, persist.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := persist.RunMigrations(connectCtx, db.Pool); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		logger.Info("leaderboard store ready", zap.String("driver", "postgres"))
		return persist.NewPostgresStore(db), nil
	case "", "file":
		store, err := persist.NewFileStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("leaderboard file: %w", err)
		}
		logger.Info("leaderboard store ready",
			zap.String("driver", "file"), zap.String("path", cfg.Path))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown leaderboard driver %q", cfg.Driver)
	}
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
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
