package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/massanella/fichaflow/pkg/adapters/file"
	"github.com/massanella/fichaflow/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate [template-id]",
	Short: "Check templates for authoring errors",
	Long:  `Validates one template (or every template in the directory) for duplicate keys, dangling edges, unreachable conditioned edges and cycles. Intended to run at publish time.`,
	Run: func(cmd *cobra.Command, args []string) {
		templatesDir, _ := cmd.Flags().GetString("templates")
		if err := runValidate(templatesDir, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Templates are valid.")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(templatesDir string, args []string) error {
	loader := file.NewLoader(templatesDir)
	ctx := context.Background()

	ids := args
	if len(ids) == 0 {
		var err error
		ids, err = loader.ListTemplates(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no templates found in %s", templatesDir)
		}
	}

	for _, id := range ids {
		tpl, err := loader.LoadTemplate(ctx, id)
		if err != nil {
			return fmt.Errorf("template %s: %w", id, err)
		}
		if err := schema.Validate(tpl); err != nil {
			return fmt.Errorf("template %s:\n%w", id, err)
		}
	}
	return nil
}
