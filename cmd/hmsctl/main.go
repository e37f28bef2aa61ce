package main

import (
	"os"

	"github.com/openhms/hms/internal/constants"
	"github.com/openhms/hms/utils/cmd"
)

// main is the entry point for the application. It is intentionally kept small
// because it is hard to test, which would lower test coverage.
func main() {
	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{
		Env: constants.EnvPrefix,
	})
	os.Exit(exitCode)
}
