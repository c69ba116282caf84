package db

import (
	"fmt"
	"strings"

	"github.com/helidb/helidb/core"
	"github.com/helidb/helidb/sql"
)

// Engine executes parsed statements against a catalog. Each
// statement either applies fully or leaves the catalog unchanged.
type Engine struct {
	database *core.Database
	manager  RowManager
}

func NewEngine(database *core.Database, manager RowManager) *Engine {
	return &Engine{
		database: database,
		manager:  manager,
	}
}

func (engine *Engine) Database() *core.Database {
	return engine.database
}

// Execute runs a batch of SQL text. Statements execute in order; the
// first failure halts the batch, and the returned error names the
// 1-based statement index. Output already produced by earlier
// statements is returned alongside the error.
func (engine *Engine) Execute(text string) (string, error) {
	// On a syntax error Parse still returns the statements before the
	// failing one; those run first, then the parse error is reported.
	statements, parseErr := sql.Parse(text)

	var outputs []string
	for i, statement := range statements {
		result, err := engine.executeStatement(statement)
		if err != nil {
			return joinOutputs(outputs), fmt.Errorf("statement %d: %w", i+1, err)
		}
		if out := result.String(); out != "" {
			outputs = append(outputs, out)
		}
	}
	if parseErr != nil {
		return joinOutputs(outputs), fmt.Errorf("statement %d: %w", len(statements)+1, parseErr)
	}
	return joinOutputs(outputs), nil
}

// joinOutputs separates row-emitting results with a blank line.
func joinOutputs(outputs []string) string {
	return strings.Join(outputs, "\n")
}

func (engine *Engine) executeStatement(statement sql.Statement) (Result, error) {
	switch statement.Type() {
	case sql.CreateTableStatementType:
		return engine.executeCreateTable(statement.(sql.CreateTableStatement))
	case sql.DropTableStatementType:
		return engine.executeDropTable(statement.(sql.DropTableStatement))
	case sql.InsertStatementType:
		return engine.executeInsert(statement.(sql.InsertStatement))
	case sql.SelectStatementType:
		return engine.executeSelect(statement.(sql.SelectStatement))
	case sql.UpdateStatementType:
		return engine.executeUpdate(statement.(sql.UpdateStatement))
	case sql.DeleteStatementType:
		return engine.executeDelete(statement.(sql.DeleteStatement))
	default:
		return nil, core.Errorf(core.ParseError, "unsupported statement type %v", statement.Type())
	}
}

func (engine *Engine) executeCreateTable(statement sql.CreateTableStatement) (Result, error) {
	if engine.database.HasTable(statement.Table) {
		if statement.IfNotExists {
			return ExecResult{}, nil
		}
		return nil, core.Errorf(core.SchemaError, "table %s already exists", statement.Table)
	}

	seen := make(map[string]bool, len(statement.Columns))
	primaryKeys := 0
	for _, column := range statement.Columns {
		if seen[column.Name] {
			return nil, core.Errorf(core.SchemaError, "duplicate column name %s", column.Name)
		}
		seen[column.Name] = true

		if column.PrimaryKey {
			primaryKeys++
			if primaryKeys > 1 {
				return nil, core.Errorf(core.SchemaError, "multiple primary keys in table %s", statement.Table)
			}
			if column.Type.Kind != core.IntType {
				return nil, core.Errorf(core.SchemaError, "primary key column %s must be INT", column.Name)
			}
		}
	}

	engine.database.AddTable(core.NewTable(statement.Table, statement.Columns))
	return ExecResult{}, nil
}

func (engine *Engine) executeDropTable(statement sql.DropTableStatement) (Result, error) {
	// Resolve every name before dropping anything: a missing table
	// fails the whole statement with no partial drops.
	for _, name := range statement.Tables {
		if !engine.database.HasTable(name) {
			return nil, core.Errorf(core.BindError, "table %s not found", name)
		}
	}
	for _, name := range statement.Tables {
		if err := engine.database.DropTable(name); err != nil {
			return nil, err
		}
	}
	return ExecResult{}, nil
}

func (engine *Engine) executeInsert(statement sql.InsertStatement) (Result, error) {
	table, ok := engine.database.Table(statement.Table)
	if !ok {
		return nil, core.Errorf(core.BindError, "table %s not found", statement.Table)
	}

	// Map the supplied column list (or the full schema) to row
	// positions.
	var positions []int
	if len(statement.Columns) == 0 {
		positions = make([]int, len(table.Columns))
		for i := range table.Columns {
			positions[i] = i
		}
	} else {
		positions = make([]int, len(statement.Columns))
		used := make(map[int]bool, len(statement.Columns))
		for i, name := range statement.Columns {
			index, ok := table.ColumnIndex(name)
			if !ok {
				return nil, core.Errorf(core.BindError, "unknown column %s", name)
			}
			if used[index] {
				return nil, core.Errorf(core.BindError, "column %s listed twice", name)
			}
			used[index] = true
			positions[i] = index
		}
	}

	pkCol, hasPK := table.HasPrimaryKey()
	seenKeys := make(map[int32]bool)

	// Validate every tuple before appending any: either the whole
	// INSERT applies or none of it does.
	newRows := make([]core.Row, 0, len(statement.Rows))
	for _, exprs := range statement.Rows {
		if len(exprs) != len(positions) {
			return nil, core.Errorf(core.TypeError, "INSERT has %d values but %d columns", len(exprs), len(positions))
		}

		row := make(core.Row, len(table.Columns))
		for i := range row {
			row[i] = core.Null()
		}
		for i, expr := range exprs {
			value, err := evalExpr(table, nil, expr)
			if err != nil {
				return nil, err
			}
			row[positions[i]] = value
		}

		for i, column := range table.Columns {
			if err := column.CheckValue(row[i]); err != nil {
				return nil, err
			}
		}
		if hasPK {
			key := row[pkCol].Int
			if _, exists := table.LookupKey(key); exists || seenKeys[key] {
				return nil, core.Errorf(core.ConstraintError, "duplicate primary key %d", key)
			}
			seenKeys[key] = true
		}

		newRows = append(newRows, row)
	}

	for _, row := range newRows {
		table.Append(row)
	}
	return ExecResult{RowsAffected: len(newRows)}, nil
}
