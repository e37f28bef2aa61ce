package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/daemon"
	"github.com/openhms/hms/internal/db"
	"github.com/openhms/hms/internal/db/dsn"
	"github.com/openhms/hms/internal/tenant"
)

const (
	defaultTarget = "all"
	defaultType   = "schema"
	targetOptions = "shared, all, or tenant"
	typeOptions   = "data or schema"
)

var ErrHospitalNotServed = errors.New("hospital is not served by this deployment")

func run(ctx context.Context, cfg *config.Config) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to initialise the logger")
	}

	rootCmd := setupCommands(cfg)

	err = rootCmd.ExecuteContext(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "error executing command")
	}

	return nil
}

// setupCommands creates and configures all CLI commands and flags
func setupCommands(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hmsctl",
		Short:         "HMS administration",
		Long:          "HMS CLI - Command Line Interface to manage hospital databases.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newSyncCmd(cfg), newMigrateCmd(cfg))

	return rootCmd
}

func newSyncCmd(cfg *config.Config) *cobra.Command {
	opts := db.SyncOptions{
		Force: cfg.Sync.Force,
		Alter: cfg.Sync.Alter,
	}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronise the central and hospital schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			catalog, err := cfg.Tenancy.Catalog()
			if err != nil {
				return err
			}

			registry, err := daemon.OpenRegistry(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer func() { _ = registry.Close() }()

			report, err := db.NewSynchronizer(registry, catalog, nil).Sync(ctx, opts)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)

			return report.Err()
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", opts.Force, "drop and recreate hospital tables")
	cmd.Flags().BoolVar(&opts.Alter, "alter", opts.Alter, "migrate hospital tables even when they all exist")

	return cmd
}

func printReport(w io.Writer, report db.SyncReport) {
	for _, t := range report.Tenants {
		state := "skipped"
		switch {
		case t.Err != nil:
			state = "failed: " + t.Err.Error()
		case t.Migrated:
			state = "migrated"
		}

		conn := "dedicated"
		if t.Fallback {
			conn = "central"
		}

		_, _ = fmt.Fprintf(w, "hospital %d\t%s\t%s\t%s\n", int(t.ID), t.Schema, conn, state)
	}
}

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	var (
		target, migrationType string
		version               int64
		rollback              bool
		hospital              int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run goose migrations on the central and hospital schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			catalog, err := cfg.Tenancy.Catalog()
			if err != nil {
				return err
			}

			source := dsn.NewEnvSource(cfg.Database.EnvPrefix, dsn.WithConfigFallback(cfg.Database))

			m, err := db.NewMigrator(source, catalog, cfg.Database.Migrator)
			if err != nil {
				return err
			}

			if hospital != 0 {
				id := tenant.ID(hospital)
				if !catalog.Known(id) {
					return oops.Wrapf(ErrHospitalNotServed, "hospital %d", hospital)
				}

				return m.MigrateHospitalToLatest(ctx, id)
			}

			req := db.Migration{
				Downgrade: rollback,
				Type:      db.MigrationType(migrationType),
				Target:    db.MigrationTarget(target),
			}

			if version != 0 {
				return m.MigrateTo(ctx, req, version)
			}

			return m.MigrateToLatest(ctx, req)
		},
	}

	cmd.Flags().StringVar(&target, "target", defaultTarget, "migration target ("+targetOptions+")")
	cmd.Flags().StringVar(&migrationType, "type", defaultType, "migration type ("+typeOptions+")")
	cmd.Flags().Int64Var(&version, "version", 0, "run migration until targeted version")
	cmd.Flags().BoolVarP(&rollback, "rollback", "r", false, "run down migrations (rollback)")
	cmd.Flags().IntVar(&hospital, "hospital", 0, "bring a single hospital schema to the latest version")

	return cmd
}
