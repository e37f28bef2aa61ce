package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/log"
)

type ConfigLoader func(opts ...commoncfg.Option) (*config.Config, error)

type RunFlags struct {
	GracefulShutdownSec     int64
	GracefulShutdownMessage string
	Env                     string

	// LoadConfig defaults to config.LoadConfig.
	LoadConfig ConfigLoader
}

// RunFuncWithSignalHandling runs the given function with signal handling. When
// a CTRL-C is received, the context will be cancelled on which the function can
// act upon.
// It returns the exitCode
func RunFuncWithSignalHandling(f func(context.Context, *config.Config) error, runFlags RunFlags) int {
	ctx, cancelOnSignal := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancelOnSignal()

	loadConfig := runFlags.LoadConfig
	if loadConfig == nil {
		loadConfig = config.LoadConfig
	}

	cfg, err := loadConfig(
		commoncfg.WithEnvOverride(runFlags.Env),
	)
	if err != nil {
		log.Error(ctx, "Failed to load the configuration", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return 1
	}

	log.Debug(ctx, "Starting the application", slog.String("mode", string(cfg.Mode)))

	err = f(ctx, cfg)
	if err != nil {
		log.Error(ctx, "Failed to start the application", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return 1
	}

	// graceful shutdown so running goroutines may finish
	if runFlags.GracefulShutdownMessage != "" {
		_, _ = fmt.Fprintf(os.Stderr, runFlags.GracefulShutdownMessage+"\n", runFlags.GracefulShutdownSec)
	}

	time.Sleep(time.Duration(runFlags.GracefulShutdownSec) * time.Second)

	return 0
}
