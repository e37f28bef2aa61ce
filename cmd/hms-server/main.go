package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/health"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/constants"
	"github.com/openhms/hms/internal/daemon"
	"github.com/openhms/hms/internal/db"
	"github.com/openhms/hms/internal/db/dsn"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/utils/cmd"
)

var (
	gracefulShutdownSec     = flag.Int64("graceful-shutdown", 1, "graceful shutdown seconds")
	gracefulShutdownMessage = flag.String("graceful-shutdown-message", "Graceful shutdown in %d seconds",
		"graceful shutdown message")
)

// BuildInfo is set at link time.
var BuildInfo = "{}"

const (
	healthStatusTimeoutS = 5 * time.Second
	postgresDriverName   = "pgx"
)

// - Starts the status server
// - Connects the central database and synchronises schemas when configured
// - Starts the HMS API Server
func run(ctx context.Context, cfg *config.Config) error {
	err := commoncfg.UpdateConfigVersion(&cfg.BaseConfig, BuildInfo)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	err = logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	startStatusServer(ctx, cfg)

	metrics := db.NewMetrics(prometheus.DefaultRegisterer)

	registry, err := daemon.OpenRegistry(ctx, cfg, metrics)
	if err != nil {
		return oops.In("main").Wrapf(err, "opening databases")
	}

	if cfg.Sync.OnStartup {
		err = syncSchemas(ctx, cfg, registry, metrics)
		if err != nil {
			_ = registry.Close()
			return err
		}
	}

	s, err := daemon.NewHMSServer(ctx, cfg, registry, prometheus.DefaultGatherer)
	if err != nil {
		_ = registry.Close()
		return oops.In("main").Wrapf(err, "creating hms server")
	}

	err = s.Start(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting hms api server")
	}

	log.Info(ctx, "HMS API server started", slog.String("address", cfg.HTTP.Address))

	<-ctx.Done()

	err = s.Close(context.WithoutCancel(ctx))
	if err != nil {
		return oops.In("main").Wrapf(err, "closing server")
	}

	return nil
}

// syncSchemas fails only when the central models cannot be migrated.
func syncSchemas(ctx context.Context, cfg *config.Config, registry *db.Registry, metrics *db.Metrics) error {
	catalog, err := cfg.Tenancy.Catalog()
	if err != nil {
		return oops.In("main").Wrapf(err, "building hospital catalog")
	}

	report, err := db.NewSynchronizer(registry, catalog, metrics).Sync(ctx, db.SyncOptions{
		Force: cfg.Sync.Force,
		Alter: cfg.Sync.Alter,
	})
	if err != nil {
		return oops.In("main").Wrapf(err, "synchronising schemas")
	}

	if failed := report.Failed(); len(failed) > 0 {
		log.Warn(ctx, "Some hospitals could not be synchronised", slog.Int("failed", len(failed)))
	}

	return nil
}

func startStatusServer(ctx context.Context, cfg *config.Config) {
	liveness := status.WithLiveness(
		health.NewHandler(
			health.NewChecker(health.WithDisabledAutostart()),
		),
	)

	healthOptions := make([]health.Option, 0)
	healthOptions = append(healthOptions,
		health.WithDisabledAutostart(),
		health.WithTimeout(healthStatusTimeoutS),
		health.WithStatusListener(func(ctx context.Context, state health.State) {
			log.Info(ctx, "readiness status changed", slog.String("status", string(state.Status)))
		}),
	)

	central, err := dsn.NewEnvSource(cfg.Database.EnvPrefix, dsn.WithConfigFallback(cfg.Database)).Central()
	if err != nil {
		log.Error(ctx, "Could not resolve the central database for readiness", err)
	} else {
		healthOptions = append(healthOptions,
			health.WithDatabaseChecker(
				postgresDriverName,
				central,
			),
		)
	}

	readiness := status.WithReadiness(
		health.NewHandler(
			health.NewChecker(healthOptions...),
		),
	)

	go func() {
		err := status.Start(ctx, &cfg.BaseConfig, liveness, readiness)
		if err != nil {
			log.Error(ctx, "Failure on the status server", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()
}

// main is the entry point for the application. It is intentionally kept small
// because it is hard to test, which would lower test coverage.
func main() {
	flag.Parse()

	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{
		GracefulShutdownSec:     *gracefulShutdownSec,
		GracefulShutdownMessage: *gracefulShutdownMessage,
		Env:                     constants.EnvPrefix,
	})
	os.Exit(exitCode)
}
