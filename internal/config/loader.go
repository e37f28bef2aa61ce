package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/samber/oops"

	"github.com/openhms/hms/internal/constants"
)

const (
	DefaultMaxConns        = 5
	DefaultMaxConnIdleTime = 10 * time.Second
	DefaultAcquireTimeout  = 30 * time.Second
	DefaultEnvPrefix       = "DATABASE_URL"
)

//nolint:mnd
var defaultConfig = map[string]any{
	"Mode": string(constants.ModeProduction),
	"Database": map[string]any{
		"EnvPrefix": DefaultEnvPrefix,
		"Migrator": map[string]any{
			"Shared": map[string]string{"Schema": "migrations/shared/schema", "Data": "migrations/shared/data"},
			"Tenant": map[string]string{"Schema": "migrations/tenant/schema", "Data": "migrations/tenant/data"},
		},
	},
	"Tenancy": map[string]any{"Default": 1, "Policy": "lenient"},
}

func LoadConfig(opts ...commoncfg.Option) (*Config, error) {
	cfg := &Config{}

	// If loadconfig is called with one of the default ones but different values
	// these are overridden as only the last one takes efect
	options := make([]commoncfg.Option, 0, 2+len(opts))
	options = append(options,
		commoncfg.WithDefaults(defaultConfig),
		commoncfg.WithPaths(
			constants.DefaultConfigPath1,
			constants.DefaultConfigPath2,
			".",
		),
	)

	options = append(options, opts...)

	loader := commoncfg.NewLoader(
		cfg,
		options...,
	)

	err := loader.LoadConfig()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to load config")
	}

	cfg.SetDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to validate config")
	}

	return cfg, nil
}

// SetDefaults fills values left at their zero value.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = constants.ModeProduction
	}

	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}

	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 5 * time.Second
	}

	if c.Database.EnvPrefix == "" {
		c.Database.EnvPrefix = DefaultEnvPrefix
	}

	c.Database.Pool.setDefaults()

	for i := range c.DatabaseReplicas {
		c.DatabaseReplicas[i].Pool.setDefaults()
	}

	if c.Tenancy.Policy == "" {
		c.Tenancy.Policy = "lenient"
	}

	if c.Startup.DBWaitAttempts == 0 {
		c.Startup.DBWaitAttempts = 10
	}

	if c.Startup.DBWaitDelay == 0 {
		c.Startup.DBWaitDelay = 2 * time.Second
	}
}

func (p *Pool) setDefaults() {
	if p.MaxConns == 0 {
		p.MaxConns = DefaultMaxConns
	}

	if p.MaxConnIdleTime == 0 {
		p.MaxConnIdleTime = DefaultMaxConnIdleTime
	}

	if p.AcquireTimeout == 0 {
		p.AcquireTimeout = DefaultAcquireTimeout
	}
}
