package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fichaflow",
	Short: "fichaflow is a schema-driven clinical-entry engine",
	Long:  `fichaflow walks template graphs of clinical workflows, collecting typed answers and deriving line-item budgets, with incremental autosave.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("templates", "templates", "Directory containing template documents")
	rootCmd.PersistentFlags().String("entries", ".fichaflow/entries", "Directory for entry snapshots")
}
