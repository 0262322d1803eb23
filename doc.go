/*
Package fichaflow is a schema-driven engine for dynamic clinical entry.

A clinical workflow is described as a template: a directed graph of typed
nodes (decisions, free text, checklists, forms, treatment pickers, derived
budgets, drawings, diagnoses, a terminal review) joined by optionally
conditioned edges. The engine walks that graph one active path at a time,
collects typed answers, derives computed values (notably a line-item
budget), and persists progress incrementally through a debounced autosave.

The core is pure in-process computation over data handed to it: templates
come from a TemplateLoader, durable state goes to an EntryStore, and the
treatment catalog is injected read-only. Adapters for memory, filesystem,
Redis and GORM-backed stores live under pkg/adapters.

# Usage

	eng, err := fichaflow.New(
		fichaflow.WithLoader(loader),
		fichaflow.WithStore(store),
		fichaflow.WithCatalog(cat),
	)
	if err != nil {
		log.Fatal(err)
	}

	es, err := eng.Open(ctx, "entry-42", "periodoncia-v3")
	if err != nil {
		log.Fatal(err)
	}
	defer es.Close()

	es.SetAnswer("motivo", "dolor agudo")
	es.Next()
	// ... walk the graph, then at the review node:
	if err := es.Finalize(ctx); err != nil {
		// entry stays editable and dirty
	}

Navigation and answer mutation are synchronous; the only asynchronous
boundary is the autosave persistence call.
*/
package fichaflow
