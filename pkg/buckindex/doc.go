// Package buckindex provides an in-memory, learned (model-driven) ordered
// index mapping unsigned integer keys to fixed-width values.
//
// Unlike a classical B+-tree, the fanout of each inner node is not fixed:
// a piecewise-linear model predicts where a key's child lives, and a small
// slotted bucket absorbs the model's residual error. The result is fewer
// cache misses per lookup and a smaller memory footprint than a comparable
// B+-tree, at the cost of a more expensive build/rebuild step.
//
// # Basic usage
//
//	idx := buckindex.New(buckindex.DefaultOptions())
//	idx.BulkLoad([]buckindex.KV{{Key: 1, Value: 11}, {Key: 2, Value: 12}})
//	v, ok := idx.Lookup(1)
//	ok = idx.Insert(3, 33)
//	out := idx.Scan(1, 10)
//
// # Concurrency
//
// buckindex uses a single-writer, multi-reader model:
//   - Read operations (Lookup, Scan, Stats, MemorySize) are safe for
//     concurrent use by multiple goroutines.
//   - Insert and BulkLoad are NOT safe for concurrent use with each other;
//     callers must serialize writers (see [Index.Insert]).
//   - A reader that begins before a structural modification observes
//     either the complete pre-modification subtree or the complete
//     post-modification subtree, never a torn mix, because the only
//     mutations a reader can race against are single atomic pointer
//     writes (root swap, parent-slot overwrite).
//
// # Error handling
//
// Lookup misses and update-of-absent-key are not errors: they return a
// boolean false / zero value. Capacity-exhausted conditions (a full
// bucket) are recovered internally via split or re-segmentation and never
// surface to the caller. Only [ErrInvariantViolated]-class conditions
// (a corrupt model, a path inconsistency) are fatal, matching the source
// design's "main-memory, no corruption recovery" stance; see errors.go.
package buckindex
