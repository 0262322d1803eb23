package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/massanella/fichaflow/internal/presentation/graph"
	"github.com/massanella/fichaflow/pkg/adapters/file"
)

var graphCmd = &cobra.Command{
	Use:   "graph <template-id>",
	Short: "Render a template as a Mermaid diagram",
	Long:  `Renders the node graph of a clinical template as Mermaid flowchart syntax, suitable for embedding in documentation.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		templatesDir, _ := cmd.Flags().GetString("templates")

		loader := file.NewLoader(templatesDir)
		tpl, err := loader.LoadTemplate(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading template: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(graph.GenerateMermaid(tpl, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
