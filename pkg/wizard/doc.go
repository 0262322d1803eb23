/*
Package wizard owns the live run of a template against one clinical entry:
the current node, the linear back/forward history, the answer and
computed-value maps, and the Clean/Dirty/Saving status that drives autosave.

A Session is an explicit value owned by the editing surface that created it,
never a package-level singleton. It assumes single-writer access per entry;
the internal mutex only protects against the autosave timer goroutine.

Navigation is delegated to pkg/flow and is synchronous; the only
asynchronous boundary is the Autosaver's persistence call.
*/
package wizard
