package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/openhms/hms/internal/config"
)

type SchemaStore = schemaStore

func SetSchemaStore(s *Synchronizer, store SchemaStore) {
	s.store = store
}

func ExportMigrationDir(m Migrator, mig Migration) (string, error) {
	return m.(*migrator).getMigrationDir(mig)
}

func ExportAcquireGate(c *Connection) *Gate {
	return c.gate
}

func ExportModelsBuilt(ctx context.Context, c *Connection) bool {
	_, err := c.buildModels(ctx)
	return err == nil && c.models != nil
}

func ExportConnectionOnDB(name string, sqlDB *sql.DB, poolCfg config.Pool) (*Connection, error) {
	return openConnection(name, sqlDB, poolCfg, &connectionOptions{})
}

func ExportHealthCheckPeriod(c *Connection) time.Duration {
	return c.pool.Config().HealthCheckPeriod
}
