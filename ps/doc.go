// Package ps provides the persistence layer for HeliDB.
//
// A Store serializes the whole catalog to a single snapshot file on
// a billy filesystem: memfs for in-memory stores, osfs for on-disk
// ones. Saves write a temporary file and rename it over the target,
// so readers never observe a partial snapshot. Loading a missing
// file yields an empty catalog.
//
//	store, err := ps.NewFileStore("/data/catalog.json")
//	database, err := store.Load()
//	...
//	err = store.Save(database, sessionID)
//
// The snapshot format round-trips exactly: schema (column name,
// type, nullability, primary-key flag), then rows with tagged
// values so NULL is preserved.
//
// # Snapshot History
//
// A History records every save as a git commit, keeping an audit
// trail of catalog states:
//
//	history, err := ps.NewFileHistory("/data/catalog.json.history")
//	store = store.WithHistory(history)
//	...
//	revisions, err := history.Log()
package ps
