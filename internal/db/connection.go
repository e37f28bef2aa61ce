package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/db/dialect"
	"github.com/openhms/hms/internal/errs"
)

var (
	ErrMissingConnectionString = errors.New("connection string is empty")
	ErrInvalidConnectionString = errors.New("connection string cannot be parsed")
	ErrStartingDBCon           = errors.New("error starting db connection")
	ErrDBResolver              = errors.New("error starting db resolver")
	ErrGatePlugin              = errors.New("error installing acquire gate")
	ErrClosingConnection       = errors.New("error closing db connection")
)

const CentralConnectionName = "central"

// Connection is a pooled handle to one PostgreSQL database. Handles are
// lazy: nothing is dialled until the first statement runs.
type Connection struct {
	Name string
	DB   *multitenancy.DB

	pool  *pgxpool.Pool
	sqlDB *sql.DB
	gate  *Gate

	modelsOnce sync.Once
	models     *builtModels
	modelsErr  error

	closeOnce sync.Once
	closeErr  error
}

type connectionOptions struct {
	development bool
	replicas    []string
	metrics     *Metrics
}

type ConnectionOption func(*connectionOptions)

// WithDevelopment turns on statement logging.
func WithDevelopment(enabled bool) ConnectionOption {
	return func(o *connectionOptions) {
		o.development = enabled
	}
}

// WithReplicas routes reads to the given connection strings.
func WithReplicas(dsns ...string) ConnectionOption {
	return func(o *connectionOptions) {
		o.replicas = append(o.replicas, dsns...)
	}
}

func WithMetrics(m *Metrics) ConnectionOption {
	return func(o *connectionOptions) {
		o.metrics = m
	}
}

// NewConnection builds a handle for dsn without contacting the server.
func NewConnection(name, dsn string, poolCfg config.Pool, opts ...ConnectionOption) (*Connection, error) {
	o := &connectionOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if strings.TrimSpace(dsn) == "" {
		return nil, errs.Wrapf(ErrMissingConnectionString, "connection %q", name)
	}

	pgxCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.Wrapf(ErrInvalidConnectionString, "connection %q: %v", name, err)
	}

	pgxCfg.MaxConns = poolCfg.MaxConns
	pgxCfg.MinConns = poolCfg.MinConns
	pgxCfg.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	if poolCfg.MaxConnIdleTime > 0 {
		pgxCfg.HealthCheckPeriod = poolCfg.MaxConnIdleTime / 2
	}
	pgxCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxCfg)
	if err != nil {
		return nil, errs.Wrap(ErrStartingDBCon, err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	sqlDB.SetMaxOpenConns(int(poolCfg.MaxConns))

	conn, err := openConnection(name, sqlDB, poolCfg, o)
	if err != nil {
		closeQuietly(sqlDB, pool)
		return nil, err
	}

	conn.pool = pool

	return conn, nil
}

func openConnection(name string, sqlDB *sql.DB, poolCfg config.Pool, o *connectionOptions) (*Connection, error) {
	db, err := multitenancy.Open(dialect.NewFromConn(sqlDB), &gorm.Config{
		TranslateError:       true,
		DisableAutomaticPing: true,
		Logger:               gormLogger(o.development),
	})
	if err != nil {
		return nil, errs.Wrap(ErrStartingDBCon, err)
	}

	gate := NewGate(int64(poolCfg.MaxConns), poolCfg.AcquireTimeout, func() {
		o.metrics.acquireTimeout(name)
	})

	err = db.Use(gate)
	if err != nil {
		return nil, errs.Wrap(ErrGatePlugin, err)
	}

	if len(o.replicas) > 0 {
		err = useReplicas(db, sqlDB, o.replicas)
		if err != nil {
			return nil, err
		}
	}

	return &Connection{
		Name:  name,
		DB:    db,
		sqlDB: sqlDB,
		gate:  gate,
	}, nil
}

// NewCentralConnection builds the central handle, with replicas when configured.
func NewCentralConnection(dsn string, cfg *config.Config, metrics *Metrics, replicas ...string) (*Connection, error) {
	return NewConnection(CentralConnectionName, dsn, cfg.Database.Pool,
		WithDevelopment(cfg.IsDevelopment()),
		WithMetrics(metrics),
		WithReplicas(replicas...),
	)
}

func useReplicas(db *multitenancy.DB, source *sql.DB, replicas []string) error {
	dialectors := make([]gorm.Dialector, 0, len(replicas))
	for _, r := range replicas {
		_, err := pgxpool.ParseConfig(r)
		if err != nil {
			return errs.Wrapf(ErrInvalidConnectionString, "replica: %v", err)
		}

		dialectors = append(dialectors, dialect.NewFrom(r))
	}

	err := db.Use(dbresolver.Register(dbresolver.Config{
		Sources:  []gorm.Dialector{dialect.NewFromConn(source)},
		Replicas: dialectors,
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		return errs.Wrap(ErrDBResolver, err)
	}

	return nil
}

// WithTenant runs fn in a transaction scoped to schema. The transaction
// waits for a gate slot before it begins and keeps it until it ends.
func (c *Connection) WithTenant(ctx context.Context, schema string, fn func(tx *multitenancy.DB) error) error {
	err := c.gate.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.gate.Release()

	return c.DB.WithTenant(ctx, schema, fn)
}

// Transaction runs fn in a transaction holding a gate slot, like WithTenant.
func (c *Connection) Transaction(ctx context.Context, fn func(tx *multitenancy.DB) error) error {
	err := c.gate.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.gate.Release()

	return c.DB.Transaction(fn)
}

// Ping checks that the server is reachable.
func (c *Connection) Ping(ctx context.Context) error {
	return c.sqlDB.PingContext(ctx)
}

// Stats reports the state of the underlying pool.
func (c *Connection) Stats() *pgxpool.Stat {
	return c.pool.Stat()
}

// Close releases the pool. Calling it more than once is safe.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		err := c.sqlDB.Close()
		if c.pool != nil {
			c.pool.Close()
		}

		if err != nil {
			c.closeErr = errs.Wrap(ErrClosingConnection, err)
		}
	})

	return c.closeErr
}

func gormLogger(development bool) logger.Interface {
	if development {
		return logger.Default.LogMode(logger.Info)
	}

	return logger.Default.LogMode(logger.Silent)
}

func closeQuietly(sqlDB *sql.DB, pool *pgxpool.Pool) {
	_ = sqlDB.Close()
	pool.Close()
}
