package violations

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/openhms/hms/internal/db"
)

const (
	pgUniqueViolationErrCode = "23505" // see https://www.postgresql.org/docs/14/errcodes-appendix.html
	pgConnectionErrClass     = "08"
	pgAdminShutdownErrCode   = "57P01"
	pgCannotConnectNowCode   = "57P03"
)

// IsUniqueConstraint checks if the error is a PostgreSQL unique constraint
// violation, as reported by pgx or lib/pq.
func IsUniqueConstraint(err error) bool {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code == pgUniqueViolationErrCode
	}

	var pqError *pq.Error
	if errors.As(err, &pqError) {
		return pqError.Code == pgUniqueViolationErrCode
	}

	return false
}

// IsConnectivity reports failures to reach the database, as opposed to
// failures of the statement itself.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, db.ErrPoolTimeout) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return isConnectivityCode(pgError.Code)
	}

	var pqError *pq.Error
	if errors.As(err, &pqError) {
		return isConnectivityCode(string(pqError.Code))
	}

	var netErr net.Error

	return errors.As(err, &netErr) || pgconn.Timeout(err)
}

func isConnectivityCode(code string) bool {
	if len(code) >= 2 && code[:2] == pgConnectionErrClass {
		return true
	}

	return code == pgAdminShutdownErrCode || code == pgCannotConnectNowCode
}
