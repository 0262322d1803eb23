// Package ports defines the driven-port interfaces at the engine boundary:
// entry persistence, template sourcing and catalog lookup. Adapters live in
// pkg/adapters; the engine core depends only on these contracts.
package ports
