package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/massanella/fichaflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fichaflow v" + fichaflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
