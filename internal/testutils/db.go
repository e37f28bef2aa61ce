package testutils

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/db"
	"github.com/openhms/hms/internal/db/dsn"
	"github.com/openhms/hms/internal/tenant"
	hmscontext "github.com/openhms/hms/utils/context"
)

var TestPool = config.Pool{
	MaxConns:        5,
	MaxConnIdleTime: 10 * time.Second,
	AcquireTimeout:  5 * time.Second,
}

type TestDBConfig struct {
	// Dedicated lists hospitals that get a database of their own. The others
	// fall back to the central database.
	Dedicated []tenant.ID
	Hospitals []tenant.ID
}

// TestEnv is a migrated central database with its registry.
type TestEnv struct {
	Registry   *db.Registry
	Catalog    *tenant.Catalog
	Source     dsn.StaticSource
	CentralDSN string
}

// NewTestEnv creates a fresh central database (and the dedicated hospital
// databases asked for) inside the shared container and synchronises all
// schemas.
func NewTestEnv(tb testing.TB, cfg TestDBConfig) *TestEnv {
	tb.Helper()

	adminDSN := StartPostgresSQL(tb, nil)
	admin, err := db.NewConnection("admin", adminDSN, TestPool)
	require.NoError(tb, err)

	defer admin.Close()

	centralDSN := createDatabase(tb, admin, adminDSN)

	source := dsn.StaticSource{
		CentralDSN: centralDSN,
		Hospitals:  map[tenant.ID]string{},
	}

	for _, id := range cfg.Dedicated {
		source.Hospitals[id] = createDatabase(tb, admin, adminDSN)
	}

	ids := cfg.Hospitals
	if len(ids) == 0 {
		ids = tenant.DefaultIDs
	}

	catalog, err := tenant.NewCatalog(ids, ids[0], tenant.PolicyLenient)
	require.NoError(tb, err)

	central, err := db.NewConnection(db.CentralConnectionName, centralDSN, TestPool)
	require.NoError(tb, err)

	registry := db.NewRegistry(central, source, db.WithPool(TestPool, false))
	tb.Cleanup(func() {
		_ = registry.Close()
	})

	report, err := db.NewSynchronizer(registry, catalog, nil).Sync(tb.Context(), db.SyncOptions{})
	require.NoError(tb, err)
	require.NoError(tb, report.Err())

	return &TestEnv{
		Registry:   registry,
		Catalog:    catalog,
		Source:     source,
		CentralDSN: centralDSN,
	}
}

// HospitalContext binds hospital id to ctx the way the request middleware does.
func (e *TestEnv) HospitalContext(tb testing.TB, ctx context.Context, id tenant.ID) context.Context {
	tb.Helper()

	tdb, err := e.Registry.Tenant(ctx, id)
	require.NoError(tb, err)

	return HospitalContext(ctx, tdb)
}

// HospitalContext binds an already resolved hospital to ctx.
func HospitalContext(ctx context.Context, tdb *db.TenantDB) context.Context {
	return hmscontext.New(db.ContextWithTenantDB(ctx, tdb),
		hmscontext.WithTenantSchema(tdb.Schema),
		hmscontext.WithHospitalID(int(tdb.ID)),
	)
}

func createDatabase(tb testing.TB, admin *db.Connection, adminDSN string) string {
	tb.Helper()

	name := "hms_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]

	err := admin.DB.Exec(fmt.Sprintf("CREATE DATABASE %q", name)).Error
	require.NoError(tb, err)

	i := strings.LastIndex(adminDSN, "/")
	j := strings.Index(adminDSN, "?")

	return adminDSN[:i+1] + name + adminDSN[j:]
}
