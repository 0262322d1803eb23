// Package middleware provides composable wrappers around the entry store:
// at-rest encryption for clinical records and masking of sensitive answer
// keys before they reach a shared backend.
package middleware

import "github.com/massanella/fichaflow/pkg/ports"

// Middleware allows wrapping an EntryStore to add behavior.
type Middleware func(ports.EntryStore) ports.EntryStore

// Chain applies the middlewares to the store, first middleware outermost.
func Chain(store ports.EntryStore, mws ...Middleware) ports.EntryStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
