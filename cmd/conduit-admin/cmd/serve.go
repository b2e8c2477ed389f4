package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/conduitllm/admin/internal/api"
	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/config"
	"github.com/conduitllm/admin/internal/database"
	"github.com/conduitllm/admin/internal/engine"
	"github.com/conduitllm/admin/internal/events"
	"github.com/conduitllm/admin/internal/metrics"
	"github.com/conduitllm/admin/internal/policy"
	"github.com/conduitllm/admin/internal/slogutil"
	"github.com/conduitllm/admin/internal/snapshot"
)

const shutdownTimeout = 15 * time.Second

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the cache admin server",
		Long:  `Start the cache admin REST API and the statistics scheduler using configuration from YAML file and environment.`,
		RunE:  runServe,
	}

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()

	// Load configuration first (using default logger for config loading errors)
	cfg, err := config.LoadConfig(fs, configFile)
	if err != nil {
		slog.Default().Error("Failed to load config", "err", err)
		return err
	}

	logger, leveler := slogutil.Setup(cfg.Log, slogutil.Options{})
	slog.SetDefault(logger)

	logger.Info("Starting conduit admin",
		"log_file", cfg.Log.File,
		"log_level", cfg.Log.Level,
		"engine", cfg.Cache.Engine,
		"database", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, database.Config{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		logger.Error("Failed to open database", "err", err)
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = engine.NewRedisClient(ctx, engine.RedisConfig{
			Addr:      cfg.Cache.Redis.Addr,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			KeyPrefix: cfg.GetRedisKeyPrefix(),
		})
		if err != nil {
			logger.Error("Failed to connect to Redis", "addr", cfg.Cache.Redis.Addr, "err", err)
			return err
		}
		logger.Info("Redis backend connected", "addr", cfg.Cache.Redis.Addr)
	} else {
		logger.Info("No Redis backend configured, distributed regions stay in memory")
	}

	eng, err := engine.New(engine.Config{
		Defaults: engine.Settings{
			Enabled:     true,
			TTL:         cfg.Cache.DefaultTTL,
			MaxEntries:  int(cfg.Cache.MaxEntries),
			Compression: cfg.Cache.CompressionEnabled,
			Distributed: cfg.Cache.Engine == "redis",
		},
		Redis:     redisClient,
		KeyPrefix: cfg.GetRedisKeyPrefix(),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Failed to create cache engine", "err", err)
		return err
	}
	defer func() {
		_ = eng.Close()
	}()

	if err := eng.Reload(ctx, db.RegionConfigs); err != nil {
		logger.Error("Failed to apply persisted region configuration", "err", err)
		return err
	}

	policies, err := policy.New(policy.RulesFromConfig(cfg.Cache.Policies))
	if err != nil {
		logger.Error("Invalid cache policies", "err", err)
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cacheMetrics := metrics.NewMetrics(registry, metrics.NewCollector(eng, logger))

	bus := events.NewBus(logger)
	defer bus.Close()
	bus.Subscribe("log", events.LogHandler(logger))
	bus.Subscribe("engine-reload", events.ReloadHandler(eng, db.RegionConfigs))
	bus.Subscribe("metrics", cacheMetrics.ConfigChangeHandler)

	service := cachemgmt.NewService(eng, policies, db.RegionConfigs, bus, serviceOptions(cfg, logger))

	// Create config manager for dynamic configuration updates
	configManager := config.NewManager(cfg, configFile, fs)

	components := config.NewComponentRegistry(logger)
	components.RegisterLogging(config.NewLoggingUpdater(leveler, cfg.Log.Level))
	components.RegisterPolicies(policies)
	configManager.OnConfigChange(components.ApplyChanges)

	// Log changes that still require restart
	configManager.OnConfigChange(func(oldConfig, newConfig *config.Config) {
		if oldConfig.Cache.DefaultTTL != newConfig.Cache.DefaultTTL ||
			oldConfig.Cache.MaxEntries != newConfig.Cache.MaxEntries ||
			oldConfig.Cache.EvictionPolicy != newConfig.Cache.EvictionPolicy {
			logger.Info("Cache defaults changed (restart required)")
		}
		if oldConfig.Snapshots.Schedule != newConfig.Snapshots.Schedule ||
			oldConfig.Snapshots.SettingsSync != newConfig.Snapshots.SettingsSync {
			logger.Info("Snapshot schedules changed (restart required)")
		}
	})

	apiServer := api.NewServer(&api.Config{
		Prefix:       cfg.API.Prefix,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}, api.Dependencies{
		Cache:         service,
		Audit:         db.RegionConfigs,
		History:       db.Snapshots,
		Events:        bus,
		Database:      db,
		ConfigManager: configManager,
		Gatherer:      registry,
		Logger:        logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	snapshotCfg := snapshot.Config{
		Retention:    cfg.GetSnapshotRetention(),
		SettingsSync: cfg.Snapshots.SettingsSync,
	}
	if cfg.GetSnapshotsEnabled() {
		snapshotCfg.Schedule = cfg.Snapshots.Schedule
	} else {
		logger.Info("Statistics snapshots are disabled in configuration")
	}

	recorder := snapshot.NewRecorder(eng, db.Snapshots, eng, db.RegionConfigs, snapshotCfg, logger)
	if err := recorder.Start(gctx); err != nil {
		logger.Error("Failed to start snapshot recorder", "err", err)
		return err
	}

	g.Go(func() error {
		logger.Info("API server listening", "addr", cfg.GetListenAddress(), "prefix", cfg.API.Prefix)
		if err := apiServer.Listen(cfg.GetListenAddress()); err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			recorder.Stop(shutdownCtx),
			apiServer.Shutdown(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Conduit admin stopped with error", "err", err)
		return err
	}

	logger.Info("Conduit admin shutting down gracefully")
	return nil
}

func serviceOptions(cfg *config.Config, logger *slog.Logger) cachemgmt.Options {
	opts := cachemgmt.DefaultOptions()
	opts.Defaults = cachemgmt.RegionConfiguration{
		Enabled:             true,
		DefaultTTL:          cfg.Cache.DefaultTTL,
		MaxEntries:          cfg.Cache.MaxEntries,
		EvictionPolicy:      cfg.Cache.EvictionPolicy,
		CompressionEnabled:  cfg.Cache.CompressionEnabled,
		UseDistributedCache: cfg.Cache.Engine == "redis",
	}
	opts.MemoryLimitBytes = cfg.Cache.MaxMemoryBytes
	opts.Global = cachemgmt.GlobalSettings{
		Engine:             cfg.Cache.Engine,
		DistributedBackend: cfg.DistributedBackend(),
		RedisConnection:    cfg.RedisConnectionString(),
		DatabaseConnection: cfg.DatabaseConnectionString(),
	}
	opts.MaxConcurrency = cfg.GetMaxConcurrency()
	opts.Logger = logger
	return opts
}
