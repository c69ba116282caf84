package db

import (
	"sort"

	"github.com/helidb/helidb/core"
	"github.com/helidb/helidb/sql"
)

func (engine *Engine) executeSelect(statement sql.SelectStatement) (Result, error) {
	table, ok := engine.database.Table(statement.Table)
	if !ok {
		return nil, core.Errorf(core.BindError, "table %s not found", statement.Table)
	}

	// Output schema: * expands to all columns in declared order.
	var columns []int
	var names []string
	if statement.Star {
		columns = make([]int, len(table.Columns))
		names = make([]string, len(table.Columns))
		for i, column := range table.Columns {
			columns[i] = i
			names[i] = column.Name
		}
	} else {
		columns = make([]int, len(statement.Columns))
		names = make([]string, len(statement.Columns))
		for i, name := range statement.Columns {
			index, ok := table.ColumnIndex(name)
			if !ok {
				return nil, core.Errorf(core.BindError, "unknown column %s", name)
			}
			columns[i] = index
			names[i] = name
		}
	}

	// Resolve ORDER BY keys before scanning.
	orderCols := make([]int, len(statement.OrderBy))
	for i, key := range statement.OrderBy {
		index, ok := table.ColumnIndex(key.Column)
		if !ok {
			return nil, core.Errorf(core.BindError, "unknown column %s", key.Column)
		}
		orderCols[i] = index
	}

	positions, err := engine.manager.Filter(table, statement.Where)
	if err != nil {
		return nil, err
	}

	projected, err := engine.manager.Transform(table, positions, func(pos int, row core.Row) (core.Row, error) {
		out := make(core.Row, len(columns))
		for i, col := range columns {
			out[i] = row[col]
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	if len(statement.OrderBy) > 0 {
		// Sort keys come from the admitted source rows, not the
		// projection, so ORDER BY works on unselected columns too.
		keys := make([][]core.Value, len(positions))
		for i, pos := range positions {
			vals := make([]core.Value, len(orderCols))
			for k, col := range orderCols {
				vals[k] = table.Rows[pos][col]
			}
			keys[i] = vals
		}

		order := make([]int, len(projected))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return lessKeys(keys[order[a]], keys[order[b]], statement.OrderBy)
		})

		sorted := make([]core.Row, len(projected))
		for i, idx := range order {
			sorted[i] = projected[idx]
		}
		projected = sorted
	}

	return QueryResult{Columns: names, Rows: projected}, nil
}

// lessKeys orders two key tuples under the statement's ORDER BY.
// NULLs sort last regardless of direction; equal keys fall through to
// the next key, and fully equal tuples keep insertion order via the
// stable sort.
func lessKeys(a, b []core.Value, order []sql.OrderKey) bool {
	for i, key := range order {
		av, bv := a[i], b[i]
		switch {
		case av.IsNull() && bv.IsNull():
			continue
		case av.IsNull():
			return false
		case bv.IsNull():
			return true
		}
		cmp, _ := av.Compare(bv)
		if cmp == 0 {
			continue
		}
		if key.Descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}
