package db

import (
	"github.com/helidb/helidb/core"
	"github.com/helidb/helidb/sql"
)

func (engine *Engine) executeUpdate(statement sql.UpdateStatement) (Result, error) {
	table, ok := engine.database.Table(statement.Table)
	if !ok {
		return nil, core.Errorf(core.BindError, "table %s not found", statement.Table)
	}

	assignCols := make([]int, len(statement.Assignments))
	for i, assignment := range statement.Assignments {
		index, ok := table.ColumnIndex(assignment.Column)
		if !ok {
			return nil, core.Errorf(core.BindError, "unknown column %s", assignment.Column)
		}
		assignCols[i] = index
	}

	positions, err := engine.manager.Filter(table, statement.Where)
	if err != nil {
		return nil, err
	}

	// Every right-hand side is evaluated against the pre-update row,
	// so SET a = a + 1 reads the old a.
	newRows, err := engine.manager.Transform(table, positions, func(pos int, row core.Row) (core.Row, error) {
		out := row.Clone()
		for i, assignment := range statement.Assignments {
			value, err := evalExpr(table, row, assignment.Value)
			if err != nil {
				return nil, err
			}
			out[assignCols[i]] = value
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	// Validate the full post-image before touching the table: any
	// violation rolls the whole statement back.
	for _, row := range newRows {
		for i, column := range table.Columns {
			if err := column.CheckValue(row[i]); err != nil {
				return nil, err
			}
		}
	}
	// Key uniqueness is checked the way the rows would be applied:
	// one row at a time against every other row's current key. A new
	// key may not collide with an untouched row, with another
	// admitted row's new key, or with a key a later admitted row has
	// not yet vacated (so shifting a dense sequence by one fails).
	if pkCol, hasPK := table.HasPrimaryKey(); hasPK {
		keyAt := make(map[int32]int, len(table.Rows))
		for pos, row := range table.Rows {
			keyAt[row[pkCol].Int] = pos
		}
		for i, pos := range positions {
			oldKey := table.Rows[pos][pkCol].Int
			newKey := newRows[i][pkCol].Int
			if other, taken := keyAt[newKey]; taken && other != pos {
				return nil, core.Errorf(core.ConstraintError, "duplicate primary key %d", newKey)
			}
			delete(keyAt, oldKey)
			keyAt[newKey] = pos
		}
	}

	table.ReplaceAt(positions, newRows)
	return ExecResult{RowsAffected: len(positions)}, nil
}

func (engine *Engine) executeDelete(statement sql.DeleteStatement) (Result, error) {
	table, ok := engine.database.Table(statement.Table)
	if !ok {
		return nil, core.Errorf(core.BindError, "table %s not found", statement.Table)
	}

	positions, err := engine.manager.Filter(table, statement.Where)
	if err != nil {
		return nil, err
	}

	table.DeleteAt(positions)
	return ExecResult{RowsAffected: len(positions)}, nil
}
