package db

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/helidb/helidb/core"
	"github.com/helidb/helidb/sql"
)

// RowFunc computes a derived row from one table row. It must not
// mutate the input.
type RowFunc func(pos int, row core.Row) (core.Row, error)

// RowManager performs the read-only row work of a single statement:
// WHERE evaluation and per-row computation (projection for SELECT,
// new-row construction for UPDATE). Implementations never mutate the
// table; the engine applies mutations in a single-threaded pass after
// all row work is merged.
type RowManager interface {
	// Filter returns the positions admitted by the WHERE clause, in
	// insertion order.
	Filter(table *core.Table, where sql.Expression) ([]int, error)

	// Transform computes fn over the given positions, returning the
	// results in matching order.
	Transform(table *core.Table, positions []int, fn RowFunc) ([]core.Row, error)
}

// SequentialManager evaluates rows in the calling goroutine.
type SequentialManager struct{}

func (SequentialManager) Filter(table *core.Table, where sql.Expression) ([]int, error) {
	positions := make([]int, 0, len(table.Rows))
	for pos, row := range table.Rows {
		ok, err := admits(table, row, where)
		if err != nil {
			return nil, err
		}
		if ok {
			positions = append(positions, pos)
		}
	}
	return positions, nil
}

func (SequentialManager) Transform(table *core.Table, positions []int, fn RowFunc) ([]core.Row, error) {
	out := make([]core.Row, len(positions))
	for i, pos := range positions {
		row, err := fn(pos, table.Rows[pos])
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

// ParallelManager partitions the row range into chunks and evaluates
// them on a bounded worker pool. The table is treated as an immutable
// snapshot for the duration of the statement; chunk results are
// merged back in position order, so output is identical to the
// sequential manager's.
type ParallelManager struct {
	// Workers bounds the pool; 0 means GOMAXPROCS.
	Workers int
}

func (m ParallelManager) workers() int {
	if m.Workers > 0 {
		return m.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// chunkBounds splits [0, n) into at most workers contiguous ranges.
func chunkBounds(n, workers int) [][2]int {
	if n == 0 {
		return nil
	}
	size := (n + workers - 1) / workers
	var bounds [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}

func (m ParallelManager) Filter(table *core.Table, where sql.Expression) ([]int, error) {
	bounds := chunkBounds(len(table.Rows), m.workers())
	admitted := make([][]int, len(bounds))

	var group errgroup.Group
	group.SetLimit(m.workers())
	for i, b := range bounds {
		group.Go(func() error {
			var chunk []int
			for pos := b[0]; pos < b[1]; pos++ {
				ok, err := admits(table, table.Rows[pos], where)
				if err != nil {
					return err
				}
				if ok {
					chunk = append(chunk, pos)
				}
			}
			admitted[i] = chunk
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	positions := make([]int, 0, len(table.Rows))
	for _, chunk := range admitted {
		positions = append(positions, chunk...)
	}
	return positions, nil
}

func (m ParallelManager) Transform(table *core.Table, positions []int, fn RowFunc) ([]core.Row, error) {
	out := make([]core.Row, len(positions))
	bounds := chunkBounds(len(positions), m.workers())

	var group errgroup.Group
	group.SetLimit(m.workers())
	for _, b := range bounds {
		group.Go(func() error {
			for i := b[0]; i < b[1]; i++ {
				pos := positions[i]
				row, err := fn(pos, table.Rows[pos])
				if err != nil {
					return err
				}
				out[i] = row
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
