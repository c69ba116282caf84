// Package db provides the SQL execution engine for HeliDB.
//
// The Engine dispatches parsed statements to the catalog, evaluating
// typed expressions with three-valued NULL logic and enforcing column
// constraints. Each statement applies fully or leaves the catalog
// unchanged; multi-tuple INSERTs and multi-row UPDATEs validate the
// whole post-image before committing.
//
// Row-level work inside a statement (WHERE evaluation, projection,
// new-row construction) goes through a RowManager. SequentialManager
// runs it inline; ParallelManager spreads it over a bounded worker
// pool while the driver keeps mutation single-threaded, so both
// produce identical output.
package db
