package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/oops"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/tenant"
)

var (
	ErrSyncCentral = errors.New("failed to synchronise central models")
	ErrSyncTenant  = errors.New("failed to synchronise hospital models")
)

const SyncLogDomain = "schema sync"

// SyncOptions select how far synchronisation may change existing tables.
// With both flags off only hospitals with missing tables are migrated.
type SyncOptions struct {
	// Force drops the hospital tables before recreating them.
	Force bool
	// Alter migrates every hospital even when its tables exist.
	Alter bool
}

// TenantSyncResult is the outcome for one hospital.
type TenantSyncResult struct {
	ID       tenant.ID
	Schema   string
	Fallback bool
	Migrated bool
	Err      error
}

type SyncReport struct {
	Tenants []TenantSyncResult
}

// Failed returns the hospitals whose synchronisation failed.
func (r SyncReport) Failed() []TenantSyncResult {
	var failed []TenantSyncResult

	for _, t := range r.Tenants {
		if t.Err != nil {
			failed = append(failed, t)
		}
	}

	return failed
}

// Err joins the per-hospital failures, nil when every hospital succeeded.
func (r SyncReport) Err() error {
	errList := make([]error, 0)
	for _, t := range r.Failed() {
		errList = append(errList, fmt.Errorf("hospital %d: %w", int(t.ID), t.Err))
	}

	return errors.Join(errList...)
}

// schemaStore performs the DDL of a synchronisation.
type schemaStore interface {
	MigrateShared(ctx context.Context, conn *Connection) error
	CreateSchema(ctx context.Context, conn *Connection, schema string) error
	MissingTables(ctx context.Context, conn *Connection, schema string, tables []string) (bool, error)
	DropTables(ctx context.Context, conn *Connection, schema string, tables []string) error
	MigrateTenant(ctx context.Context, conn *Connection, schema string) error
}

// Synchronizer brings the central schema and every hospital schema in line
// with the model sets.
type Synchronizer struct {
	registry *Registry
	catalog  *tenant.Catalog
	metrics  *Metrics
	store    schemaStore
}

func NewSynchronizer(registry *Registry, catalog *tenant.Catalog, metrics *Metrics) *Synchronizer {
	return &Synchronizer{
		registry: registry,
		catalog:  catalog,
		metrics:  metrics,
		store:    gormSchemaStore{},
	}
}

// Sync migrates the central models first; failing that nothing else runs.
// Hospitals are then handled one by one and a failing hospital never stops
// the others.
func (s *Synchronizer) Sync(ctx context.Context, opts SyncOptions) (SyncReport, error) {
	ctx = log.InjectSystemEvent(ctx, "schema-sync")

	central := s.registry.Central()

	_, err := BuildCentralModelSet(ctx, central)
	if err == nil {
		err = s.store.MigrateShared(ctx, central)
	}

	if err != nil {
		return SyncReport{}, oops.In(SyncLogDomain).Wrapf(errs.Wrap(ErrSyncCentral, err), "central database")
	}

	log.Info(ctx, "Central models synchronised")

	report := SyncReport{Tenants: make([]TenantSyncResult, 0, len(s.catalog.IDs()))}

	for _, id := range s.catalog.IDs() {
		result := s.syncTenant(ctx, id, opts)
		if result.Err != nil {
			s.metrics.syncFailed(id)
			log.Error(ctx, "Hospital synchronisation failed", result.Err,
				slog.Int("hospitalId", int(id)),
				slog.String("schema", result.Schema),
			)
		} else {
			log.Info(ctx, "Hospital synchronised",
				slog.Int("hospitalId", int(id)),
				slog.Bool("migrated", result.Migrated),
				slog.Bool("fallback", result.Fallback),
			)
		}

		report.Tenants = append(report.Tenants, result)
	}

	return report, nil
}

func (s *Synchronizer) syncTenant(ctx context.Context, id tenant.ID, opts SyncOptions) TenantSyncResult {
	result := TenantSyncResult{ID: id, Schema: id.Schema()}

	tdb, err := s.registry.Tenant(ctx, id)
	if err != nil {
		result.Err = errs.Wrap(ErrSyncTenant, err)
		return result
	}

	result.Fallback = tdb.Fallback
	tables := tdb.Models.Tables()

	err = s.store.CreateSchema(ctx, tdb.Conn, tdb.Schema)
	if err != nil {
		result.Err = errs.Wrap(ErrSyncTenant, err)
		return result
	}

	if opts.Force {
		err = s.store.DropTables(ctx, tdb.Conn, tdb.Schema, tables)
		if err != nil {
			result.Err = errs.Wrap(ErrSyncTenant, err)
			return result
		}
	}

	if !opts.Force && !opts.Alter {
		missing, err := s.store.MissingTables(ctx, tdb.Conn, tdb.Schema, tables)
		if err != nil {
			result.Err = errs.Wrap(ErrSyncTenant, err)
			return result
		}

		if !missing {
			return result
		}
	}

	err = s.store.MigrateTenant(ctx, tdb.Conn, tdb.Schema)
	if err != nil {
		result.Err = errs.Wrap(ErrSyncTenant, err)
		return result
	}

	result.Migrated = true

	return result
}

type gormSchemaStore struct{}

func (gormSchemaStore) MigrateShared(ctx context.Context, conn *Connection) error {
	return conn.DB.MigrateSharedModels(ctx)
}

func (gormSchemaStore) CreateSchema(ctx context.Context, conn *Connection, schema string) error {
	return conn.DB.WithContext(ctx).Exec("CREATE SCHEMA IF NOT EXISTS " + QuoteSchema(schema)).Error
}

func (gormSchemaStore) MissingTables(ctx context.Context, conn *Connection, schema string, tables []string) (bool, error) {
	var count int64

	err := conn.DB.WithContext(ctx).Raw(
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = ? AND table_name IN ?",
		schema, tables,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}

	return count < int64(len(tables)), nil
}

// DropTables removes tables in reverse dependency order.
func (gormSchemaStore) DropTables(ctx context.Context, conn *Connection, schema string, tables []string) error {
	reversed := slices.Clone(tables)
	slices.Reverse(reversed)

	for _, table := range reversed {
		err := conn.DB.WithContext(ctx).Exec(
			fmt.Sprintf("DROP TABLE IF EXISTS %s.%s CASCADE", QuoteSchema(schema), QuoteSchema(table)),
		).Error
		if err != nil {
			return err
		}
	}

	return nil
}

func (gormSchemaStore) MigrateTenant(ctx context.Context, conn *Connection, schema string) error {
	return conn.DB.MigrateTenantModels(ctx, schema)
}
