// Package helidb provides an embedded SQL database engine.
//
// HeliDB accepts textual SQL, executes it against an in-memory
// catalog of tables, optionally persists the catalog to disk, and
// returns human-readable textual output. The engine is embedded in a
// single process; callers serialize access.
//
// # Quick Start
//
// Create an in-memory session:
//
//	session, _ := helidb.NewConfig().Connect()
//	defer session.Close()
//
//	session.ExecuteSQL("CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(20))")
//	session.ExecuteSQL("INSERT INTO users VALUES (1, 'Alice')")
//
//	out, _ := session.ExecuteSQL("SELECT * FROM users")
//	fmt.Print(out)
//
// # Configuration
//
// Config is a builder; every option returns a new Config:
//
//	session, err := helidb.NewConfig().
//	    StoragePath("/data/catalog.json"). // persist on close
//	    Reinit(false).                     // keep existing data
//	    WriteBack(true).                   // save on Close
//	    Parallel(true).                    // parallel row evaluation
//	    Connect()
//
// # Supported SQL
//
// HeliDB supports a subset of SQL including:
//   - CREATE TABLE (IF NOT EXISTS) with INT and VARCHAR(n) columns,
//     PRIMARY KEY and NOT NULL constraints
//   - DROP TABLE (one or more tables)
//   - INSERT with optional column list and multiple tuples
//   - SELECT with WHERE and multi-key ORDER BY
//   - UPDATE with expression assignments
//   - DELETE with WHERE
//
// Expressions use three-valued logic: comparisons and arithmetic
// with a NULL operand yield NULL, and a WHERE clause admits a row
// only when it evaluates to true.
package helidb
