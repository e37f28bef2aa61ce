package config

import (
	"errors"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openhms/hms/internal/constants"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/tenant"
)

var (
	ErrConfigurationValuesError = errors.New("configuration value error")
	ErrInvalidMode              = errors.New("mode must be development or production")
	ErrInvalidPool              = errors.New("pool limits are not valid")
	ErrAuthSecretMissing        = errors.New("auth secret must be set when auth is enabled")
)

// Config holds all application configuration parameters
type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash"`

	Mode             constants.Mode `yaml:"mode" default:"production"`
	HTTP             HTTPServer     `yaml:"http"`
	Database         Database       `yaml:"database"`
	DatabaseReplicas []Database     `yaml:"databaseReplicas"`
	Tenancy          Tenancy        `yaml:"tenancy"`
	Auth             Auth           `yaml:"auth"`
	Sync             Sync           `yaml:"sync"`
	Startup          Startup        `yaml:"startup"`
}

func (c *Config) IsDevelopment() bool {
	return c.Mode == constants.ModeDevelopment
}

func (c *Config) Validate() error {
	switch c.Mode {
	case constants.ModeDevelopment, constants.ModeProduction:
	default:
		return errs.Wrap(ErrConfigurationValuesError, ErrInvalidMode)
	}

	err := c.Database.Pool.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	_, err = c.Tenancy.Catalog()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	if c.Auth.Enabled && c.Auth.Secret == (commoncfg.SourceRef{}) {
		return errs.Wrap(ErrConfigurationValuesError, ErrAuthSecretMissing)
	}

	return nil
}

// HTTPServer holds http server config
type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

// Database holds the central database config. Connection strings found in
// the environment take precedence over Host, User and Secret.
type Database struct {
	Name   string              `yaml:"name"`
	Port   string              `yaml:"port"`
	Host   commoncfg.SourceRef `yaml:"host"`
	User   commoncfg.SourceRef `yaml:"user"`
	Secret commoncfg.SourceRef `yaml:"secret"`

	// EnvPrefix names the central URL variable; hospital N reads <EnvPrefix>_HOSPITAL<N>.
	EnvPrefix string   `yaml:"envPrefix" default:"DATABASE_URL"`
	Pool      Pool     `yaml:"pool"`
	Migrator  Migrator `yaml:"migrator"`
}

// Pool bounds every connection handle, central and per hospital.
type Pool struct {
	MaxConns        int32         `yaml:"maxConns" default:"5"`
	MinConns        int32         `yaml:"minConns" default:"0"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime" default:"10s"`
	AcquireTimeout  time.Duration `yaml:"acquireTimeout" default:"30s"`
}

func (p Pool) Validate() error {
	if p.MaxConns <= 0 || p.MinConns < 0 || p.MinConns > p.MaxConns {
		return errs.Wrapf(ErrInvalidPool, "max=%d min=%d", p.MaxConns, p.MinConns)
	}

	if p.AcquireTimeout <= 0 {
		return errs.Wrapf(ErrInvalidPool, "acquire timeout %s", p.AcquireTimeout)
	}

	return nil
}

type Migrator struct {
	Shared MigrationDirs `yaml:"shared"`
	Tenant MigrationDirs `yaml:"tenant"`
}

type MigrationDirs struct {
	Schema string `yaml:"schema"`
	Data   string `yaml:"data"`
}

// Tenancy describes the hospitals served by this deployment.
type Tenancy struct {
	Hospitals []int  `yaml:"hospitals"`
	Default   int    `yaml:"default" default:"1"`
	Policy    string `yaml:"policy" default:"lenient"`
}

func (t Tenancy) Catalog() (*tenant.Catalog, error) {
	ids := tenant.DefaultIDs
	if len(t.Hospitals) > 0 {
		ids = make([]tenant.ID, 0, len(t.Hospitals))
		for _, h := range t.Hospitals {
			ids = append(ids, tenant.ID(h))
		}
	}

	def := tenant.DefaultID
	if t.Default != 0 {
		def = tenant.ID(t.Default)
	}

	return tenant.NewCatalog(ids, def, tenant.Policy(t.Policy))
}

// Auth configures bearer token verification. Tokens are issued elsewhere.
type Auth struct {
	Enabled bool                `yaml:"enabled"`
	Secret  commoncfg.SourceRef `yaml:"secret"`
	Issuer  string              `yaml:"issuer"`

	// Required rejects requests without a bearer token.
	Required bool `yaml:"required"`
}

// Sync controls structural synchronisation run by the server on startup.
type Sync struct {
	OnStartup bool `yaml:"onStartup"`
	Force     bool `yaml:"force"`
	Alter     bool `yaml:"alter"`
}

type Startup struct {
	DBWaitAttempts uint          `yaml:"dbWaitAttempts" default:"10"`
	DBWaitDelay    time.Duration `yaml:"dbWaitDelay" default:"2s"`
}
