package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	_ "github.com/lib/pq" // registers the postgres driver used by goose

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/db/dsn"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/tenant"
)

type (
	MigrationType   string
	MigrationTarget string
	migrateFunc     func(ctx context.Context, db *sql.DB, dir string) error
)

const (
	DataMigrationTable                   = "goose_db_data_version"
	SchemaMigrationTable                 = "goose_db_schema_version"
	SharedSchema                         = "public"
	SchemaMigration      MigrationType   = "schema"
	DataMigration        MigrationType   = "data"
	SharedTarget         MigrationTarget = "shared"
	TenantTarget         MigrationTarget = "tenant"
	AllTarget            MigrationTarget = "all"
)

var (
	ErrUnsupportedMigration = errors.New("unsupported migration")
	ErrMigrationDirMissing  = errors.New("migration directory is not configured")
	ErrMigrateHospital      = errors.New("failed to migrate hospital")
)

type Migration struct {
	Downgrade bool
	Type      MigrationType
	Target    MigrationTarget
}

type Migrator interface {
	MigrateHospitalToLatest(ctx context.Context, id tenant.ID) error
	MigrateToLatest(ctx context.Context, migration Migration) error
	MigrateTo(ctx context.Context, migration Migration, version int64) error
}

type migrator struct {
	source  dsn.Source
	catalog *tenant.Catalog
	dirs    config.Migrator
}

func NewMigrator(source dsn.Source, catalog *tenant.Catalog, dirs config.Migrator) (Migrator, error) {
	_, err := source.Central()
	if err != nil {
		return nil, err
	}

	return &migrator{
		source:  source,
		catalog: catalog,
		dirs:    dirs,
	}, nil
}

// MigrateToLatest runs migrations onto the latest version
// For migrations with Downgrade false, it runs all migrations up to and including the latest version
// For migrations with Downgrade true, it downgrades the latest version
func (m *migrator) MigrateToLatest(ctx context.Context, migration Migration) error {
	return m.migrate(ctx, migration, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownContext(ctx, db, dir)
		}

		return goose.UpContext(ctx, db, dir)
	})
}

// MigrateTo runs migrations up-to a specific version
// For migrations with Downgrade false, it migrates up to the specified version
// For migrations with Downgrade true, it downgrades until the DB is the specified version
func (m *migrator) MigrateTo(ctx context.Context, migration Migration, version int64) error {
	return m.migrate(ctx, migration, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownToContext(ctx, db, dir, version)
		}

		return goose.UpToContext(ctx, db, dir, version)
	})
}

// MigrateHospitalToLatest brings the schema of one hospital to the latest version.
func (m *migrator) MigrateHospitalToLatest(ctx context.Context, id tenant.ID) error {
	mig := Migration{
		Type:   SchemaMigration,
		Target: TenantTarget,
	}

	return m.migrateHospital(ctx, mig, id, func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.UpContext(ctx, db, dir)
	})
}

func (m *migrator) migrate(ctx context.Context, migration Migration, f migrateFunc) error {
	switch migration.Target {
	case SharedTarget:
		return m.migrateShared(ctx, migration, f)
	case TenantTarget:
		return m.migrateHospitals(ctx, migration, f)
	case AllTarget:
		mig := migration
		mig.Target = SharedTarget

		err := m.migrateShared(ctx, mig, f)
		if err != nil {
			return err
		}

		mig.Target = TenantTarget

		return m.migrateHospitals(ctx, mig, f)
	default:
		return ErrUnsupportedMigration
	}
}

func (m *migrator) migrateShared(ctx context.Context, migration Migration, f migrateFunc) error {
	central, err := m.source.Central()
	if err != nil {
		return err
	}

	return m.runMigration(ctx, migration, central, SharedSchema, f)
}

func (m *migrator) migrateHospitals(ctx context.Context, migration Migration, f migrateFunc) error {
	for _, id := range m.catalog.IDs() {
		err := m.migrateHospital(ctx, migration, id, f)
		if err != nil {
			return errs.Wrapf(ErrMigrateHospital, "hospital %d: %v", int(id), err)
		}
	}

	return nil
}

// migrateHospital runs in the database serving the hospital, which is the
// central one when no dedicated connection string exists.
func (m *migrator) migrateHospital(ctx context.Context, migration Migration, id tenant.ID, f migrateFunc) error {
	target, ok := m.source.Lookup(id)
	if !ok {
		central, err := m.source.Central()
		if err != nil {
			return err
		}

		target = central
	}

	schema := id.Schema()

	log.Info(ctx, "Migrating hospital schema",
		slog.Int("hospitalId", int(id)),
		slog.String("schema", schema),
		slog.String("type", string(migration.Type)),
	)

	return m.runMigration(ctx, migration, target, schema, func(ctx context.Context, db *sql.DB, dir string) error {
		_, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+QuoteSchema(schema))
		if err != nil {
			return err
		}

		return f(ctx, db, dir)
	})
}

func (m *migrator) runMigration(
	ctx context.Context,
	migration Migration,
	conn string,
	schema string,
	f migrateFunc,
) error {
	dir, err := m.getMigrationDir(migration)
	if err != nil {
		return err
	}

	dbCon, err := newSchemaDBCon(migration, conn, schema)
	if err != nil {
		return err
	}
	defer dbCon.Close()

	return f(ctx, dbCon, dir)
}

func newSchemaDBCon(migration Migration, conn string, schema string) (*sql.DB, error) {
	var table string

	switch migration.Type {
	case DataMigration:
		table = fmt.Sprintf("%s.%s", QuoteSchema(schema), DataMigrationTable)
	case SchemaMigration:
		table = fmt.Sprintf("%s.%s", QuoteSchema(schema), SchemaMigrationTable)
	default:
		return nil, ErrUnsupportedMigration
	}

	scoped, err := dsn.WithSearchPath(conn, schema)
	if err != nil {
		return nil, errs.Wrap(ErrInvalidConnectionString, err)
	}

	db, err := goose.OpenDBWithDriver(string(goose.DialectPostgres), scoped)
	if err != nil {
		return nil, err
	}

	goose.SetTableName(table)

	return db, nil
}

func QuoteSchema(schema string) string {
	return fmt.Sprintf("\"%s\"", schema)
}

func (m *migrator) getMigrationDir(mig Migration) (string, error) {
	var dir string

	switch {
	case mig.Type == SchemaMigration && mig.Target == SharedTarget:
		dir = m.dirs.Shared.Schema
	case mig.Type == SchemaMigration && mig.Target == TenantTarget:
		dir = m.dirs.Tenant.Schema
	case mig.Type == DataMigration && mig.Target == SharedTarget:
		dir = m.dirs.Shared.Data
	case mig.Type == DataMigration && mig.Target == TenantTarget:
		dir = m.dirs.Tenant.Data
	default:
		return "", ErrUnsupportedMigration
	}

	if dir == "" {
		return "", errs.Wrapf(ErrMigrationDirMissing, "%s %s", mig.Target, mig.Type)
	}

	return dir, nil
}
