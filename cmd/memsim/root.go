package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "memsim",
	Short: "Memsim simulates a memory manager that admits processes into " +
		"paged memory.",
	Long: `Memsim runs a discrete-time simulation of a memory manager. ` +
		`Processes arrive over time, wait in a FIFO queue, and are admitted ` +
		`into fixed-size page frames when enough free memory is available. ` +
		`Every arrival, admission, and completion is printed, traced, and ` +
		`recorded for later analysis.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Credentials for the MySQL trace backend may live in a .env file.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Exiting through atexit lets the registered tracer and
// recorder flushes run.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
