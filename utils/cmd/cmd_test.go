package cmd_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"

	"github.com/openhms/hms/internal/config"
	"github.com/openhms/hms/internal/constants"
	"github.com/openhms/hms/utils/cmd"
)

var (
	errLoad = errors.New("no configuration found")
	errRun  = errors.New("central database unreachable")
)

func loader(cfg *config.Config, err error) cmd.ConfigLoader {
	return func(...commoncfg.Option) (*config.Config, error) {
		return cfg, err
	}
}

func TestRunFuncWithSignalHandling(t *testing.T) {
	cfg := &config.Config{Mode: constants.ModeDevelopment}

	tests := []struct {
		name     string
		loader   cmd.ConfigLoader
		run      func(context.Context, *config.Config) error
		expected int
	}{
		{
			name:     "config failure",
			loader:   loader(nil, errLoad),
			run:      func(context.Context, *config.Config) error { return nil },
			expected: 1,
		},
		{
			name:     "run failure",
			loader:   loader(cfg, nil),
			run:      func(context.Context, *config.Config) error { return errRun },
			expected: 1,
		},
		{
			name:   "success",
			loader: loader(cfg, nil),
			run: func(ctx context.Context, got *config.Config) error {
				assert.Same(t, cfg, got)
				assert.NoError(t, ctx.Err())

				return nil
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := cmd.RunFuncWithSignalHandling(tt.run, cmd.RunFlags{
				GracefulShutdownMessage: "Graceful shutdown in %d seconds",
				Env:                     constants.EnvPrefix,
				LoadConfig:              tt.loader,
			})

			assert.Equal(t, tt.expected, code)
		})
	}
}
