package daemon

import (
	"context"
	"log/slog"

	retry "github.com/avast/retry-go/v5"
	"github.com/samber/oops"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/db"
	"github.com/openhms/hms/internal/db/dsn"
	"github.com/openhms/hms/internal/log"
)

const DatabaseLogDomain = "database startup"

// OpenRegistry connects the central database, waits until it answers and
// returns the hospital connection registry built on top of it. Hospital
// connection strings come from the environment.
func OpenRegistry(ctx context.Context, cfg *config.Config, metrics *db.Metrics) (*db.Registry, error) {
	source := dsn.NewEnvSource(cfg.Database.EnvPrefix, dsn.WithConfigFallback(cfg.Database))

	central, err := source.Central()
	if err != nil {
		return nil, oops.In(DatabaseLogDomain).Wrapf(err, "resolving central database")
	}

	replicas := make([]string, 0, len(cfg.DatabaseReplicas))
	for _, replica := range cfg.DatabaseReplicas {
		r, err := dsn.FromDBConfig(replica)
		if err != nil {
			return nil, oops.In(DatabaseLogDomain).Wrapf(err, "resolving replica")
		}

		replicas = append(replicas, r)
	}

	conn, err := db.NewCentralConnection(central, cfg, metrics, replicas...)
	if err != nil {
		return nil, oops.In(DatabaseLogDomain).Wrapf(err, "opening central database")
	}

	err = WaitForDatabase(ctx, conn, cfg.Startup)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(ctx, "Central database is reachable", slog.String("dsn", dsn.Redact(central)))

	return db.NewRegistry(conn, source,
		db.WithRegistryMetrics(metrics),
		db.WithPool(cfg.Database.Pool, cfg.IsDevelopment()),
	), nil
}

// WaitForDatabase pings conn until it answers or the attempts run out.
func WaitForDatabase(ctx context.Context, conn *db.Connection, startup config.Startup) error {
	attempt := 0

	err := retry.New(
		retry.Attempts(startup.DBWaitAttempts),
		retry.Delay(startup.DBWaitDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() error {
		attempt++

		err := conn.Ping(ctx)
		if err != nil {
			log.Warn(ctx, "Central database is not reachable yet",
				slog.Int("attempt", attempt), log.ErrorAttr(err))
		}

		return err
	})
	if err != nil {
		return oops.In(DatabaseLogDomain).Wrapf(err, "waiting for central database")
	}

	return nil
}
