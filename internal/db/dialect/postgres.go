package dialect

import (
	"database/sql"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	pg "github.com/bartventer/gorm-multitenancy/postgres/v8"
)

// NewFrom returns a postgres dialector opening its own connections from dsn.
// Note: PreferSimpleProtocol is enabled to disable prepared statement caching, which prevents
// "cached plan must not change result type" errors once tenant schemas are altered.
func NewFrom(dsn string) gorm.Dialector {
	return pg.New(pg.Config{
		Config: postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		},
	})
}

// NewFromConn returns a postgres dialector on top of an existing pool.
func NewFromConn(conn *sql.DB) gorm.Dialector {
	return pg.New(pg.Config{
		Config: postgres.Config{
			Conn:                 conn,
			PreferSimpleProtocol: true,
		},
	})
}
