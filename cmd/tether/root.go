package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tether",
	Short: "Tether bridges asynchronous message streams into deterministic simulations.",
	Long: `Tether bridges asynchronous message streams into deterministic ` +
		`discrete event simulations. The CLI currently runs the sensor feed ` +
		`demo simulation (run) and reports the build version (version).`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// Flags fall back to TETHER_* variables, which a .env file can provide.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
