// Package core provides the data model for HeliDB: values, column
// types, tables, and the catalog of tables owned by a session.
//
// Values are a tagged union of 32-bit integer, variable-length text,
// and NULL. NULL is its own kind, never a sentinel integer or empty
// string, so three-valued logic can be implemented faithfully on top.
//
//	v := core.NewInt(42)
//	s := core.NewVarchar("hello")
//	n := core.Null()
//
// Tables hold rows in insertion order and maintain a primary-key
// index when the schema declares one. The catalog (Database) maps
// table names to tables with case-sensitive lookup.
//
// The package also defines the shared Error type carrying the
// user-visible error kind (Lex, Parse, Bind, Schema, Type,
// Constraint, Arithmetic, IO) used across the lexer, parser, engine,
// and persistence layers.
package core
