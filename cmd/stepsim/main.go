// Stepsim is a command-line front end for running demo simulations with
// the stepsim scheduler.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use:   "stepsim",
	Short: "Stepsim runs particle simulations with a deterministic stepping scheduler.",
	Long: `Stepsim runs particle simulations with a deterministic stepping ` +
		`scheduler. Operations (tuners, updaters, one integrator, writers) are ` +
		`invoked in a fixed order at every timestep, gated by per-operation ` +
		`triggers.`,
}

func main() {
	// A .env file can provide defaults such as STEPSIM_OUTPUT.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}
