package cli

import (
	"fmt"
	"strings"

	"github.com/massanella/fichaflow/pkg/budget"
	"github.com/massanella/fichaflow/pkg/schema"
	"github.com/massanella/fichaflow/pkg/wizard"
)

// nodeMarkdown builds the markdown prompt for one wizard step.
func nodeMarkdown(node *schema.Node, step, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", node.Title)
	fmt.Fprintf(&sb, "*Paso %d de ~%d*\n\n", step, total)

	switch node.Type {
	case schema.NodeTypeDecision, schema.NodeTypeDiagnosis:
		for i, opt := range node.Options {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, opt)
		}
		if node.Type == schema.NodeTypeDiagnosis && node.AllowOther {
			fmt.Fprintf(&sb, "%d. Otro (texto libre)\n", len(node.Options)+1)
		}
	case schema.NodeTypeChecklist:
		for i, opt := range node.Options {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, opt)
		}
		sb.WriteString("\nSelección múltiple: números separados por comas.\n")
	case schema.NodeTypeText:
		sb.WriteString("Texto libre.\n")
	case schema.NodeTypeDrawing:
		sb.WriteString("Adjunte el dibujo codificado (o deje vacío).\n")
	}
	return sb.String()
}

// budgetMarkdown renders a budget as a markdown table with totals.
func budgetMarkdown(data *budget.Data) string {
	var sb strings.Builder
	sb.WriteString("| Descripción | Cant. | Precio | Total |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, item := range data.Items {
		fmt.Fprintf(&sb, "| %s | %d | %.2f | %.2f |\n",
			item.Descripcion, item.Cantidad, item.PrecioUnitario, item.Total)
	}
	fmt.Fprintf(&sb, "\n**Subtotal:** %.2f\n", data.Subtotal)
	fmt.Fprintf(&sb, "**Descuentos:** %.2f\n", data.Descuentos)
	fmt.Fprintf(&sb, "**Total:** %.2f\n", data.Total)
	return sb.String()
}

// reviewMarkdown renders the consolidated summary of a review node.
func reviewMarkdown(summary wizard.ReviewSummary) string {
	var sb strings.Builder
	sb.WriteString("## Resumen\n\n")
	for _, entry := range summary.Entries {
		fmt.Fprintf(&sb, "- **%s**: %v\n", entry.Title, entry.Value)
	}
	return sb.String()
}
