package testutils

import (
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/openhms/hms/internal/config"
)

const postgresContainer = "testcontainers-hms-postgresql-shared"

var TestDB = config.Database{
	Name: "hms",
	Port: "5432",
	User: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "hms",
	},
	Secret: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "secret",
	},
}

// StartPostgresSQL runs (or reuses) a PostgreSQL container and points cfg
// at it. It returns a URL form connection string to database name.
func StartPostgresSQL(
	tb testing.TB,
	cfg *config.Database,
	opts ...testcontainers.ContainerCustomizer,
) string {
	tb.Helper()

	if cfg == nil {
		c := TestDB
		cfg = &c
	}

	// Do it like this so the user specified override the defaults
	options := append([]testcontainers.ContainerCustomizer{
		postgres.WithDatabase(TestDB.Name),
		postgres.WithUsername(TestDB.User.Value),
		postgres.WithPassword(TestDB.Secret.Value),
		postgres.BasicWaitStrategies(),
		testcontainers.WithStartupCommand(testcontainers.NewRawCommand([]string{
			"postgres",
			"-c", "max_connections=500",
		})),
		testcontainers.WithReuseByName(postgresContainer),
	}, opts...)

	service, err := postgres.Run(tb.Context(),
		"postgres:16-alpine",
		options...,
	)
	require.NoError(tb, err)

	p, err := service.MappedPort(tb.Context(), nat.Port("5432"))
	require.NoError(tb, err)

	host, err := service.Host(tb.Context())
	require.NoError(tb, err)

	if cfg.Name == "" {
		cfg.Name = TestDB.Name
	}

	cfg.Port = p.Port()
	cfg.User = TestDB.User
	cfg.Secret = TestDB.Secret
	cfg.Host = commoncfg.SourceRef{
		Value:  host,
		Source: commoncfg.EmbeddedSourceValue,
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		TestDB.User.Value, TestDB.Secret.Value, host, p.Port(), cfg.Name)
}
