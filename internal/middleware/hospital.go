package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/constants"
	"github.com/openhms/hms/internal/db"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/tenant"
	hmscontext "github.com/openhms/hms/utils/context"
)

// TenantResolver hands out the database access of a hospital. *db.Registry
// implements it.
type TenantResolver interface {
	Tenant(ctx context.Context, id tenant.ID) (*db.TenantDB, error)
}

// ResolveHospital binds every request to one hospital of the catalog. The
// requested id is taken from, in order: a numeric X-Hospital-Id header, the
// hospital claim of the authenticated principal, the first label of the
// host, the catalog default. Ids outside the catalog follow its policy.
func ResolveHospital(resolver TenantResolver, catalog *tenant.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id, err := catalog.Normalize(ctx, RequestedHospital(r, catalog.Default()))
			if err != nil {
				write.Error(ctx, w, err)
				return
			}

			tdb, err := resolver.Tenant(ctx, id)
			if err != nil {
				write.Error(ctx, w, err)
				return
			}

			ctx = db.ContextWithTenantDB(ctx, tdb)
			ctx = hmscontext.CreateTenantContext(ctx, tdb.Schema)
			ctx = hmscontext.InjectHospitalID(ctx, int(tdb.ID))
			ctx = log.InjectHospital(ctx, int(tdb.ID), tdb.Schema, tdb.Fallback)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestedHospital returns the hospital asked for by r before the catalog
// policy is applied.
func RequestedHospital(r *http.Request, def tenant.ID) tenant.ID {
	if id, ok := fromHeader(r); ok {
		return id
	}

	if id, ok := fromPrincipal(r.Context()); ok {
		return id
	}

	if id, ok := fromHost(r.Host); ok {
		return id
	}

	return def
}

// fromHeader reads the hospital header. Numbers too large for an id are
// returned clamped, so the catalog policy treats them as unknown hospitals.
func fromHeader(r *http.Request) (tenant.ID, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Header.Get(constants.HospitalIDHeader)))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}

	return tenant.ID(n), true
}

func fromPrincipal(ctx context.Context) (tenant.ID, bool) {
	p, err := hmscontext.ExtractPrincipal(ctx)
	if err != nil || p.HospitalID == nil {
		return 0, false
	}

	return tenant.ID(*p.HospitalID), true
}

// fromHost reads "3.example.org" or "hospital3.example.org". Bare hosts and
// IP addresses carry no hospital.
func fromHost(host string) (tenant.ID, bool) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if net.ParseIP(host) != nil {
		return 0, false
	}

	label, rest, found := strings.Cut(host, ".")
	if !found || rest == "" {
		return 0, false
	}

	id, err := tenant.Parse(label)
	if err != nil {
		return 0, false
	}

	return id, true
}
