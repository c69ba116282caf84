package db

import (
	"strings"

	"github.com/helidb/helidb/core"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	ExecResultType
)

// Result is the outcome of one statement. String returns the
// formatted text: a table for row-emitting queries, empty for DDL
// and mutations.
type Result interface {
	Type() ResultType
	String() string
}

// QueryResult holds a SELECT's output schema and projected rows in
// final order.
type QueryResult struct {
	Columns []string
	Rows    []core.Row
}

// ExecResult reports a statement that emits no rows.
type ExecResult struct {
	RowsAffected int
}

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result ExecResult) Type() ResultType {
	return ExecResultType
}

func (result ExecResult) String() string {
	return ""
}

func (result QueryResult) String() string {
	if len(result.Rows) == 0 {
		return ""
	}

	var builder strings.Builder
	table := NewTextTable(&builder)
	table.Header(result.Columns)
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = value.String()
		}
		table.Row(cells)
	}
	table.Render()
	return builder.String()
}
