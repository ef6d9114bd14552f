// Command tableformctl inspects annotated form markup, checks values against
// the column validators and reads stored form values.
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/tableform/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "tableformctl",
		Short:         "Inspect and export editable table forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, "text")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newSchemaCmd(),
		newExportCmd(),
		newValidateCmd(),
		newFormsCmd(),
		newValueCmd(),
		newMigrateCmd(),
	)
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
