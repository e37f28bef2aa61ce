package middleware

import (
	"errors"
	"net/http"

	multitenancyMiddleware "github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/db"
)

// ErrTenantNotResolved is returned when no hospital was bound to the request.
var ErrTenantNotResolved = errors.New("hospital was not resolved for the request")

// InjectMultiTenancy hands the schema chosen by ResolveHospital to the
// gorm-multitenancy middleware, which validates it and stores it under
// its TenantKey. It must run after ResolveHospital.
func InjectMultiTenancy() func(http.Handler) http.Handler {
	withTenantConfig := multitenancyMiddleware.DefaultWithTenantConfig
	withTenantConfig.Skipper = func(*http.Request) bool { return false }
	withTenantConfig.TenantGetters = []func(r *http.Request) (string, error){
		func(r *http.Request) (string, error) {
			tdb, ok := db.TenantDBFromContext(r.Context())
			if !ok {
				return "", ErrTenantNotResolved
			}

			return tdb.Schema, nil
		},
	}
	withTenantConfig.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		write.Error(r.Context(), w, err)
	}

	return multitenancyMiddleware.WithTenant(withTenantConfig)
}
