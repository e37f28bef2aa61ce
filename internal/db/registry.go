package db

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/db/dsn"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/tenant"
)

var (
	ErrRegistryClosed = errors.New("connection registry is closed")
	ErrOpenTenantDB   = errors.New("failed to open hospital database")
	ErrNoCentral      = errors.New("no central connection to fall back to")
)

// Factory builds the dedicated handle of a hospital.
type Factory func(id tenant.ID, dsn string) (*Connection, error)

type entry struct {
	conn     *Connection
	fallback bool
}

// Registry hands out one connection per hospital for the life of the
// process. Hospitals without their own connection string share the central
// handle.
type Registry struct {
	central *Connection
	source  dsn.Source
	factory Factory
	metrics *Metrics

	mu      sync.RWMutex
	entries map[tenant.ID]entry
	closed  bool

	group singleflight.Group
}

type RegistryOption func(*Registry)

func WithFactory(f Factory) RegistryOption {
	return func(r *Registry) {
		r.factory = f
	}
}

func WithRegistryMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithPool builds hospital handles with the given pool limits.
func WithPool(pool config.Pool, development bool) RegistryOption {
	return func(r *Registry) {
		r.factory = func(id tenant.ID, d string) (*Connection, error) {
			return NewConnection("hospital"+id.String(), d, pool,
				WithDevelopment(development),
				WithMetrics(r.metrics),
			)
		}
	}
}

func NewRegistry(central *Connection, source dsn.Source, opts ...RegistryOption) *Registry {
	r := &Registry{
		central: central,
		source:  source,
		entries: make(map[tenant.ID]entry),
	}

	WithPool(config.Pool{
		MaxConns:        config.DefaultMaxConns,
		MaxConnIdleTime: config.DefaultMaxConnIdleTime,
		AcquireTimeout:  config.DefaultAcquireTimeout,
	}, false)(r)

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Registry) Central() *Connection {
	return r.central
}

// Get returns the connection of hospital id, creating it on first use.
// Concurrent first calls for the same id share a single creation.
func (r *Registry) Get(ctx context.Context, id tenant.ID) (*Connection, error) {
	e, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}

	return e.conn, nil
}

func (r *Registry) get(ctx context.Context, id tenant.ID) (entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	closed := r.closed
	r.mu.RUnlock()

	if closed {
		return entry{}, ErrRegistryClosed
	}

	if ok {
		return e, nil
	}

	v, err, _ := r.group.Do(id.String(), func() (any, error) {
		return r.create(ctx, id)
	})
	if err != nil {
		return entry{}, err
	}

	e, _ = v.(entry)

	return e, nil
}

func (r *Registry) create(ctx context.Context, id tenant.ID) (entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if ok {
		return e, nil
	}

	d, found := r.source.Lookup(id)
	if found {
		conn, err := r.factory(id, d)
		if err != nil {
			return entry{}, errs.Wrap(ErrOpenTenantDB, err)
		}

		e = entry{conn: conn}

		log.Info(ctx, "Opened dedicated hospital database", slog.Int("hospitalId", int(id)))
	} else {
		if r.central == nil {
			return entry{}, ErrNoCentral
		}

		e = entry{conn: r.central, fallback: true}

		log.Warn(ctx, "No connection string for hospital, using the central database",
			slog.Int("hospitalId", int(id)),
		)
		r.metrics.fallback(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		if !e.fallback {
			_ = e.conn.Close()
		}

		return entry{}, ErrRegistryClosed
	}

	r.entries[id] = e
	r.metrics.connectionCached(e.fallback)

	return e, nil
}

// Tenant resolves hospital id to its connection, schema and model set.
func (r *Registry) Tenant(ctx context.Context, id tenant.ID) (*TenantDB, error) {
	e, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}

	models, err := BuildModelSet(ctx, e.conn)
	if err != nil {
		return nil, err
	}

	return &TenantDB{
		ID:       id,
		Schema:   id.Schema(),
		Conn:     e.conn,
		Models:   models,
		Fallback: e.fallback,
	}, nil
}

// Len returns the number of hospitals with a cached connection.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Close closes every distinct handle once, the central one included.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}

	r.closed = true

	seen := map[*Connection]struct{}{}
	conns := make([]*Connection, 0, len(r.entries)+1)

	if r.central != nil {
		seen[r.central] = struct{}{}
		conns = append(conns, r.central)
	}

	for _, e := range r.entries {
		if _, ok := seen[e.conn]; ok {
			continue
		}

		seen[e.conn] = struct{}{}
		conns = append(conns, e.conn)
	}
	r.mu.Unlock()

	var errList []error

	for _, c := range conns {
		err := c.Close()
		if err != nil {
			errList = append(errList, err)
		}
	}

	return errors.Join(errList...)
}

// TenantDB is the database access of one request: the hospital, its schema
// and the connection serving it.
type TenantDB struct {
	ID       tenant.ID
	Schema   string
	Conn     *Connection
	Models   *ModelSet
	Fallback bool
}

// WithTenant runs fn in a transaction scoped to the hospital schema.
func (t *TenantDB) WithTenant(ctx context.Context, fn func(tx *multitenancy.DB) error) error {
	return t.Conn.WithTenant(ctx, t.Schema, fn)
}

type tenantDBKey struct{}

func ContextWithTenantDB(ctx context.Context, t *TenantDB) context.Context {
	return context.WithValue(ctx, tenantDBKey{}, t)
}

func TenantDBFromContext(ctx context.Context) (*TenantDB, bool) {
	t, ok := ctx.Value(tenantDBKey{}).(*TenantDB)
	return t, ok && t != nil
}
