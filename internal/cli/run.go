// Package cli implements the interactive terminal runner behind the
// fichaflow run command.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/massanella/fichaflow"
	"github.com/massanella/fichaflow/internal/logging"
	"github.com/massanella/fichaflow/pkg/adapters/file"
	"github.com/massanella/fichaflow/pkg/adapters/memory"
	"github.com/massanella/fichaflow/pkg/catalog"
	"github.com/massanella/fichaflow/pkg/ports"
	"github.com/massanella/fichaflow/pkg/schema"
)

// RunOptions configures the interactive runner.
type RunOptions struct {
	TemplatesDir string
	EntriesDir   string
	TemplateID   string
	EntryID      string
	CatalogPath  string // optional JSON file with treatment records
	Debug        bool
}

// Runner walks one entry through its template on a terminal.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Renderer func(string) (string, error) // optional markdown renderer
}

// Execute opens the entry and runs the interactive loop until the review
// node is finalized or the user quits.
func Execute(opts RunOptions, runner *Runner) error {
	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	cat, err := loadCatalog(opts.CatalogPath)
	if err != nil {
		return err
	}

	eng, err := fichaflow.New(
		fichaflow.WithLoader(file.NewLoader(opts.TemplatesDir)),
		fichaflow.WithStore(file.NewStore(opts.EntriesDir)),
		fichaflow.WithCatalog(cat),
		fichaflow.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	es, err := eng.Open(ctx, opts.EntryID, opts.TemplateID)
	if err != nil {
		return err
	}
	defer es.Close()

	return runner.loop(ctx, es, cat)
}

func loadCatalog(path string) (ports.Catalog, error) {
	if path == "" {
		return memory.NewCatalog(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var treatments []catalog.Treatment
	if err := json.Unmarshal(data, &treatments); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return memory.NewCatalog(treatments), nil
}

func (r *Runner) render(md string) string {
	if r.Renderer != nil {
		if out, err := r.Renderer(md); err == nil {
			return out
		}
	}
	return md
}

func (r *Runner) loop(ctx context.Context, es *fichaflow.EntrySession, cat ports.Catalog) error {
	reader := bufio.NewReader(r.Input)

	for {
		node := es.Current()
		if node == nil {
			return fmt.Errorf("current node missing from template")
		}
		step, total := es.Progress()
		fmt.Fprint(r.Output, r.render(nodeMarkdown(node, step, total)))

		switch node.Type {
		case schema.NodeTypeReview:
			fmt.Fprint(r.Output, r.render(reviewMarkdown(es.Review())))
			fmt.Fprint(r.Output, "¿Finalizar la ficha? (s/n): ")
			line, err := readLine(reader)
			if err != nil {
				return err
			}
			if strings.EqualFold(line, "s") || strings.EqualFold(line, "si") {
				if err := es.Finalize(ctx); err != nil {
					fmt.Fprintf(r.Output, "No se pudo finalizar: %v. La ficha sigue editable.\n", err)
					continue
				}
				fmt.Fprintln(r.Output, "Ficha finalizada.")
				return nil
			}
			// Not finalizing: flush and leave the entry resumable.
			if err := es.Flush(ctx); err != nil {
				fmt.Fprintf(r.Output, "Aviso: no se pudo guardar: %v\n", err)
			}
			return nil

		case schema.NodeTypeBudget:
			data, err := es.BudgetData(node.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(r.Output, r.render(budgetMarkdown(data)))

		default:
			if err := r.collect(ctx, es, node, reader, cat); err != nil {
				if err == errQuit {
					return es.Flush(ctx)
				}
				if err == errBack {
					es.Back()
					continue
				}
				return err
			}
		}

		if !es.Next() {
			// Dead end outside a review node: terminal for this answer set.
			fmt.Fprintln(r.Output, "No hay más pasos para estas respuestas.")
			return es.Flush(ctx)
		}
	}
}

var (
	errQuit = fmt.Errorf("quit requested")
	errBack = fmt.Errorf("back requested")
)

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// prompt reads a line and intercepts the navigation keywords.
func (r *Runner) prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(r.Output, label)
	line, err := readLine(reader)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(line) {
	case ":q", ":quit":
		return "", errQuit
	case ":b", ":back":
		return "", errBack
	}
	return line, nil
}

// collect gathers the answer for one input node.
func (r *Runner) collect(ctx context.Context, es *fichaflow.EntrySession, node *schema.Node, reader *bufio.Reader, cat ports.Catalog) error {
	switch node.Type {
	case schema.NodeTypeText, schema.NodeTypeDrawing:
		line, err := r.prompt(reader, "> ")
		if err != nil {
			return err
		}
		es.SetAnswer(node.Key, line)

	case schema.NodeTypeDecision:
		choice, err := r.pickOne(reader, node.Options)
		if err != nil {
			return err
		}
		es.SetAnswer(node.Key, choice)

	case schema.NodeTypeDiagnosis:
		line, err := r.prompt(reader, "> ")
		if err != nil {
			return err
		}
		idx, convErr := strconv.Atoi(line)
		if convErr == nil && node.AllowOther && idx == len(node.Options)+1 {
			other, err := r.prompt(reader, "Especifique: ")
			if err != nil {
				return err
			}
			es.SetAnswer(node.Key, map[string]any{"value": "otro", "otherText": other})
			return nil
		}
		if convErr != nil || idx < 1 || idx > len(node.Options) {
			fmt.Fprintln(r.Output, "Opción no válida.")
			return r.collect(ctx, es, node, reader, cat)
		}
		es.SetAnswer(node.Key, node.Options[idx-1])

	case schema.NodeTypeChecklist:
		line, err := r.prompt(reader, "> ")
		if err != nil {
			return err
		}
		var picked []string
		for _, part := range strings.Split(line, ",") {
			idx, convErr := strconv.Atoi(strings.TrimSpace(part))
			if convErr != nil || idx < 1 || idx > len(node.Options) {
				continue
			}
			picked = append(picked, node.Options[idx-1])
		}
		es.SetAnswer(node.Key, picked)

	case schema.NodeTypeStep:
		for _, field := range node.Fields {
			line, err := r.prompt(reader, field.Label+": ")
			if err != nil {
				return err
			}
			es.SetAnswer(field.Key, line)
		}

	case schema.NodeTypeTreatment:
		treatments, err := cat.Treatments(ctx)
		if err != nil {
			return err
		}
		for i, t := range treatments {
			fmt.Fprintf(r.Output, "%d. %s (%.2f)\n", i+1, t.Nombre, t.Precio)
		}
		line, err := r.prompt(reader, "Tratamientos (números separados por comas): ")
		if err != nil {
			return err
		}
		var selections []catalog.Selection
		for _, part := range strings.Split(line, ",") {
			idx, convErr := strconv.Atoi(strings.TrimSpace(part))
			if convErr != nil || idx < 1 || idx > len(treatments) {
				continue
			}
			selections = append(selections, catalog.Select(treatments[idx-1], 1))
		}
		es.SetAnswer(node.Key, selections)

	case schema.NodeTypeProcedure:
		targets, err := es.ProcedureTargets(node.ID)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			fmt.Fprintln(r.Output, "Sin tratamientos seleccionados todavía.")
			return nil
		}
		for _, sel := range targets {
			note, err := r.prompt(reader, sel.Nombre+": ")
			if err != nil {
				return err
			}
			if err := es.SetProcedureNote(node.ID, sel.TratamientoID, note); err != nil {
				return err
			}
		}
	}
	return nil
}

// pickOne reads a 1-based option index until a valid choice arrives.
func (r *Runner) pickOne(reader *bufio.Reader, options []string) (string, error) {
	for {
		line, err := r.prompt(reader, "> ")
		if err != nil {
			return "", err
		}
		idx, convErr := strconv.Atoi(line)
		if convErr == nil && idx >= 1 && idx <= len(options) {
			return options[idx-1], nil
		}
		fmt.Fprintln(r.Output, "Opción no válida.")
	}
}
