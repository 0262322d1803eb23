package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/massanella/fichaflow/internal/cli"
	"github.com/massanella/fichaflow/internal/presentation/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <template-id>",
	Short: "Walk a clinical entry interactively",
	Long:  `Opens (or resumes) an entry against the given template and walks the graph on the terminal, autosaving progress to the entries directory.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		templatesDir, _ := cmd.Flags().GetString("templates")
		entriesDir, _ := cmd.Flags().GetString("entries")
		entryID, _ := cmd.Flags().GetString("entry")
		catalogPath, _ := cmd.Flags().GetString("catalog")
		debug, _ := cmd.Flags().GetBool("debug")
		plain, _ := cmd.Flags().GetBool("plain")

		if entryID == "" {
			fmt.Println("Error: --entry is required")
			os.Exit(1)
		}

		runner := &cli.Runner{Input: os.Stdin, Output: os.Stdout}
		if !plain {
			tui.PrintBanner()
			runner.Renderer = tui.NewRenderer()
		}

		opts := cli.RunOptions{
			TemplatesDir: templatesDir,
			EntriesDir:   entriesDir,
			TemplateID:   args[0],
			EntryID:      entryID,
			CatalogPath:  catalogPath,
			Debug:        debug,
		}
		if err := cli.Execute(opts, runner); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("entry", "", "Entry id to open or resume")
	runCmd.Flags().String("catalog", "", "JSON file with treatment catalog records")
	runCmd.Flags().Bool("debug", false, "Verbose engine logging")
	runCmd.Flags().Bool("plain", false, "Disable markdown rendering and banner")
}
