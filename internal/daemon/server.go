package daemon

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/apierrors"
	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/db"
	"github.com/openhms/hms/internal/handlers"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/manager"
	"github.com/openhms/hms/internal/middleware"
	"github.com/openhms/hms/internal/repo/sql"
	"github.com/openhms/hms/internal/tenant"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ServerLogDomain   = "server daemon"

	APIVersionedNamespace = "/hms/v1"
	MetricsPath           = "/metrics"
)

type HMSServer struct {
	cfg      *config.Config
	registry *db.Registry
	server   *http.Server
}

type Server interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewHMSServer builds the API on top of registry. The server owns the
// registry from then on and closes it in Close.
func NewHMSServer(
	ctx context.Context,
	cfg *config.Config,
	registry *db.Registry,
	gatherer prometheus.Gatherer,
) (*HMSServer, error) {
	catalog, err := cfg.Tenancy.Catalog()
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "building hospital catalog")
	}

	handler, err := NewHandler(cfg, registry, catalog, gatherer)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "creating http handler")
	}

	log.Info(ctx, "HTTP server configured")

	return &HMSServer{
		cfg:      cfg,
		registry: registry,
		server: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: ReadHeaderTimeout,
			ReadTimeout:       ReadTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
		},
	}, nil
}

func (s *HMSServer) Start(ctx context.Context) error {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server encountered an error", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()

	return nil
}

// Close stops accepting requests, waits for the running ones and then
// closes every database handle.
func (s *HMSServer) Close(ctx context.Context) error {
	shutdownCtx, shutdownRelease := context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	shutdownErr := s.server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		shutdownErr = oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(shutdownErr, "Failed shutting down HTTP server")
	} else {
		log.Info(ctx, "Completed graceful shutdown of HTTP server")
	}

	closeErr := s.registry.Close()
	if closeErr != nil {
		closeErr = oops.In(ServerLogDomain).Wrapf(closeErr, "closing database connections")
	}

	return errors.Join(shutdownErr, closeErr)
}

// NewHandler wires the API routes behind the request middlewares and
// exposes the metrics of gatherer.
func NewHandler(
	cfg *config.Config,
	registry *db.Registry,
	catalog *tenant.Catalog,
	gatherer prometheus.Gatherer,
) (http.Handler, error) {
	chain, err := middlewares(cfg, registry, catalog)
	if err != nil {
		return nil, err
	}

	apiMux := NewServeMux(APIVersionedNamespace)
	handlers.New(manager.New(sql.NewRepository(registry.Central()), catalog)).Register(apiMux)
	apiMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		write.ErrorResponse(r.Context(), w, apierrors.NotFoundErrorMessage())
	})

	var apiHandler http.Handler = apiMux
	for i := len(chain) - 1; i >= 0; i-- {
		apiHandler = chain[i](apiHandler)
	}

	root := http.NewServeMux()
	root.Handle(APIVersionedNamespace+"/", apiHandler)
	root.Handle("GET "+MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return root, nil
}

// middlewares returns the request middlewares in the order they run.
func middlewares(
	cfg *config.Config,
	registry *db.Registry,
	catalog *tenant.Catalog,
) ([]func(http.Handler) http.Handler, error) {
	chain := []func(http.Handler) http.Handler{
		middleware.InjectRequestID(),
		middleware.PanicRecoveryMiddleware(),
		middleware.LoggingMiddleware(),
	}

	if cfg.Auth.Enabled {
		secret, err := commoncfg.LoadValueFromSourceRef(cfg.Auth.Secret)
		if err != nil {
			return nil, oops.In(ServerLogDomain).Wrapf(err, "loading auth secret")
		}

		chain = append(chain, middleware.Authenticate(middleware.AuthConfig{
			Secret:   secret,
			Issuer:   cfg.Auth.Issuer,
			Required: cfg.Auth.Required,
		}))
	}

	return append(chain,
		middleware.ResolveHospital(registry, catalog),
		middleware.InjectMultiTenancy(),
	), nil
}
