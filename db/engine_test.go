package db

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/helidb/helidb/core"
)

func setupTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(core.NewDatabase(), SequentialManager{})
}

func mustExecute(t *testing.T, engine *Engine, sql string) string {
	t.Helper()
	output, err := engine.Execute(sql)
	if err != nil {
		t.Fatalf("execute %q: %v", sql, err)
	}
	return output
}

func tableOf(t *testing.T, engine *Engine, name string) *core.Table {
	t.Helper()
	table, ok := engine.Database().Table(name)
	if !ok {
		t.Fatalf("table %s not found", name)
	}
	return table
}

func TestEngineCreateInsertSelect(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(10))")
	mustExecute(t, engine, "INSERT INTO users VALUES (1, 'Alice'), (2, 'Bob')")

	output := mustExecute(t, engine, "SELECT * FROM users")
	expected := "" +
		"| id  | name  |\n" +
		"| --- | ----- |\n" +
		"| 1   | Alice |\n" +
		"| 2   | Bob   |\n"
	if output != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, output)
	}
}

func TestEngineDuplicatePrimaryKey(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE b (id INT PRIMARY KEY, n VARCHAR(10))")
	mustExecute(t, engine, "INSERT INTO b VALUES (1, 'a')")

	_, err := engine.Execute("INSERT INTO b VALUES (1, 'b')")
	if err == nil {
		t.Fatal("expected duplicate primary key error")
	}
	if kind, _ := core.KindOf(err); kind != core.ConstraintError {
		t.Errorf("expected Constraint error, got %v", err)
	}

	table := tableOf(t, engine, "b")
	if table.RowCount() != 1 {
		t.Fatalf("expected 1 row, got %d", table.RowCount())
	}
	if !table.Rows[0][1].Equal(core.NewVarchar("a")) {
		t.Errorf("expected surviving row (1, a), got %v", table.Rows[0])
	}
}

func TestEngineUpdateWithExpression(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (a INT, b INT)")
	mustExecute(t, engine, "INSERT INTO t VALUES (1, 2), (3, 4)")
	mustExecute(t, engine, "UPDATE t SET a = a + 1 WHERE a % 2 = 1")

	table := tableOf(t, engine, "t")
	expected := [][2]int32{{2, 2}, {4, 4}}
	for i, row := range expected {
		if table.Rows[i][0].Int != row[0] || table.Rows[i][1].Int != row[1] {
			t.Errorf("row %d: expected (%d, %d), got %v", i, row[0], row[1], table.Rows[i])
		}
	}
}

func TestEngineInsertAtomicity(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (id INT PRIMARY KEY)")
	mustExecute(t, engine, "INSERT INTO t VALUES (1)")

	// The second tuple collides: the whole INSERT must be rejected.
	_, err := engine.Execute("INSERT INTO t VALUES (2), (1), (3)")
	if err == nil {
		t.Fatal("expected constraint error")
	}
	if n := tableOf(t, engine, "t").RowCount(); n != 1 {
		t.Errorf("expected row count unchanged at 1, got %d", n)
	}

	// Two fresh tuples colliding with each other are also rejected.
	_, err = engine.Execute("INSERT INTO t VALUES (5), (5)")
	if err == nil {
		t.Fatal("expected constraint error for mutual collision")
	}
	if n := tableOf(t, engine, "t").RowCount(); n != 1 {
		t.Errorf("expected row count unchanged at 1, got %d", n)
	}
}

func TestEngineInsertNullFill(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE nn (id INT, name VARCHAR(10) NOT NULL, age INT NOT NULL)")

	// id is nullable, so an explicit NULL id is fine.
	mustExecute(t, engine, "INSERT INTO nn (id, name, age) VALUES (NULL, 'Bob', 25)")

	// age NOT NULL rejects the tuple; the table stays unchanged.
	_, err := engine.Execute("INSERT INTO nn (id, name, age) VALUES (3, 'Charlie', NULL)")
	if err == nil {
		t.Fatal("expected NOT NULL violation")
	}
	if kind, _ := core.KindOf(err); kind != core.ConstraintError {
		t.Errorf("expected Constraint error, got %v", err)
	}

	// Omitted NOT NULL columns fill with NULL and then fail the check.
	_, err = engine.Execute("INSERT INTO nn (id) VALUES (10)")
	if err == nil {
		t.Fatal("expected NOT NULL violation for omitted column")
	}

	table := tableOf(t, engine, "nn")
	if table.RowCount() != 1 {
		t.Fatalf("expected 1 row, got %d", table.RowCount())
	}
	if !table.Rows[0][0].IsNull() {
		t.Errorf("expected NULL id, got %v", table.Rows[0][0])
	}
}

func TestEngineUpdatePostImageCollision(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE r (id INT PRIMARY KEY)")
	mustExecute(t, engine, "INSERT INTO r VALUES (1), (2), (3)")

	// Shifting every key by one collides inside the post-image
	// ({2,3,4} vs the rows still holding 2 and 3 mid-scan), so the
	// whole UPDATE must roll back.
	_, err := engine.Execute("UPDATE r SET id = id + 1")
	if err == nil {
		t.Fatal("expected post-image primary key collision")
	}
	table := tableOf(t, engine, "r")
	for i, key := range []int32{1, 2, 3} {
		if table.Rows[i][0].Int != key {
			t.Errorf("row %d: expected rollback to %d, got %d", i, key, table.Rows[i][0].Int)
		}
	}

	mustExecute(t, engine, "UPDATE r SET id = id + 10")
	for i, key := range []int32{11, 12, 13} {
		if table.Rows[i][0].Int != key {
			t.Errorf("row %d: expected %d, got %d", i, key, table.Rows[i][0].Int)
		}
	}
	if _, ok := table.LookupKey(1); ok {
		t.Error("old key 1 still indexed after update")
	}
	if pos, ok := table.LookupKey(12); !ok || pos != 1 {
		t.Errorf("expected key 12 at position 1, got %d, %v", pos, ok)
	}
}

func TestEngineUpdateShiftCollision(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE r (id INT PRIMARY KEY)")
	mustExecute(t, engine, "INSERT INTO r VALUES (1), (2), (3)")

	// Only odd rows shift: 1->2 collides with the unmodified 2.
	_, err := engine.Execute("UPDATE r SET id = id + 1 WHERE id % 2 = 1")
	if err == nil {
		t.Fatal("expected collision with unmodified row")
	}
	table := tableOf(t, engine, "r")
	for i, key := range []int32{1, 2, 3} {
		if table.Rows[i][0].Int != key {
			t.Errorf("row %d: expected rollback to %d, got %d", i, key, table.Rows[i][0].Int)
		}
	}
}

func TestEngineDelete(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (id INT PRIMARY KEY, v INT)")
	mustExecute(t, engine, "INSERT INTO t VALUES (1, 10), (2, 20), (3, 30)")

	mustExecute(t, engine, "DELETE FROM t WHERE v > 15")
	table := tableOf(t, engine, "t")
	if table.RowCount() != 1 {
		t.Fatalf("expected 1 row, got %d", table.RowCount())
	}
	if pos, ok := table.LookupKey(1); !ok || pos != 0 {
		t.Errorf("expected key 1 at position 0 after compaction, got %d, %v", pos, ok)
	}

	// Deleting zero rows succeeds.
	mustExecute(t, engine, "DELETE FROM t WHERE v > 1000")
	if table.RowCount() != 1 {
		t.Errorf("expected 1 row, got %d", table.RowCount())
	}
}

func TestEngineSelectOrderBy(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE test (x INT, y INT, seq INT)")

	// 16-row truth table: x, y in {0,1}, each pair four times, with a
	// sequence column to observe stability.
	seq := 0
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			mustExecute(t, engine, fmt.Sprintf("INSERT INTO test VALUES (%d, %d, %d)", x%2, y%2, seq))
			seq++
		}
	}

	output := mustExecute(t, engine, "SELECT x, y, seq FROM test ORDER BY x DESC, y ASC")
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	if len(lines) != 18 { // header + separator + 16 rows
		t.Fatalf("expected 18 lines, got %d", len(lines))
	}

	type key struct{ x, y, seq int }
	var keys []key
	for _, line := range lines[2:] {
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == '|' || r == ' ' })
		if len(fields) != 3 {
			t.Fatalf("unexpected row line %q", line)
		}
		keys = append(keys, key{atoi(t, fields[0]), atoi(t, fields[1]), atoi(t, fields[2])})
	}

	for i := 1; i < len(keys); i++ {
		prev, cur := keys[i-1], keys[i]
		if prev.x < cur.x {
			t.Fatalf("row %d: x not descending: %v then %v", i, prev, cur)
		}
		if prev.x == cur.x {
			if prev.y > cur.y {
				t.Fatalf("row %d: y not ascending: %v then %v", i, prev, cur)
			}
			if prev.y == cur.y && prev.seq > cur.seq {
				t.Fatalf("row %d: tie not stable: %v then %v", i, prev, cur)
			}
		}
	}
}

func TestEngineSelectOrderByNullsLast(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (a INT)")
	mustExecute(t, engine, "INSERT INTO t VALUES (2), (NULL), (1)")

	for _, direction := range []string{"ASC", "DESC"} {
		output := mustExecute(t, engine, "SELECT a FROM t ORDER BY a "+direction)
		lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
		last := lines[len(lines)-1]
		if !strings.Contains(last, "NULL") {
			t.Errorf("ORDER BY a %s: expected NULL last, got %q", direction, last)
		}
	}
}

func TestEngineSelectIsNotNull(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE books (id INT, discription VARCHAR(20))")
	mustExecute(t, engine, "INSERT INTO books (id) VALUES (1)")
	mustExecute(t, engine, "INSERT INTO books (id, discription) VALUES (2, 'good')")

	output := mustExecute(t, engine, "SELECT id FROM books WHERE discription IS NOT NULL")
	if strings.Contains(output, "| 1  ") {
		t.Errorf("row with omitted description should be excluded:\n%s", output)
	}
	if !strings.Contains(output, "| 2  ") {
		t.Errorf("row with description should be included:\n%s", output)
	}
}

func TestEngineSelectEmptyOutput(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (a INT)")

	if output := mustExecute(t, engine, "SELECT * FROM t"); output != "" {
		t.Errorf("expected no output for empty result, got %q", output)
	}
	if output := mustExecute(t, engine, "INSERT INTO t VALUES (1)"); output != "" {
		t.Errorf("expected no output for INSERT, got %q", output)
	}
}

func TestEngineCreateTableValidation(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (a INT)")

	tests := []struct {
		sql  string
		kind core.ErrorKind
	}{
		{"CREATE TABLE t (a INT)", core.SchemaError},
		{"CREATE TABLE u (a INT, a INT)", core.SchemaError},
		{"CREATE TABLE u (a INT PRIMARY KEY, b INT PRIMARY KEY)", core.SchemaError},
		{"CREATE TABLE u (s VARCHAR(5) PRIMARY KEY)", core.SchemaError},
	}
	for _, tt := range tests {
		_, err := engine.Execute(tt.sql)
		if err == nil {
			t.Errorf("%s: expected error", tt.sql)
			continue
		}
		if kind, _ := core.KindOf(err); kind != tt.kind {
			t.Errorf("%s: expected %v error, got %v", tt.sql, tt.kind, err)
		}
	}

	// IF NOT EXISTS turns the duplicate into a no-op.
	mustExecute(t, engine, "CREATE TABLE IF NOT EXISTS t (a INT)")
}

func TestEngineDropValidatesAllNames(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE a (x INT)")
	mustExecute(t, engine, "CREATE TABLE b (x INT)")

	_, err := engine.Execute("DROP TABLE a, missing, b")
	if err == nil {
		t.Fatal("expected bind error")
	}
	if !engine.Database().HasTable("a") || !engine.Database().HasTable("b") {
		t.Error("no table may be dropped when any name is unknown")
	}

	mustExecute(t, engine, "DROP TABLE a, b")
	if engine.Database().HasTable("a") || engine.Database().HasTable("b") {
		t.Error("expected both tables dropped")
	}
}

func TestEngineVarcharOverflow(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (s VARCHAR(3))")

	_, err := engine.Execute("INSERT INTO t VALUES ('abcd')")
	if err == nil {
		t.Fatal("expected overflow error")
	}
	if kind, _ := core.KindOf(err); kind != core.TypeError {
		t.Errorf("expected Type error, got %v", err)
	}

	mustExecute(t, engine, "INSERT INTO t VALUES ('abc')")
}

func TestEngineBatchHaltsAtFirstError(t *testing.T) {
	engine := setupTestEngine(t)

	output, err := engine.Execute(
		"CREATE TABLE t (a INT); INSERT INTO t VALUES (1); SELECT * FROM nope; INSERT INTO t VALUES (2);")
	if err == nil {
		t.Fatal("expected error from statement 3")
	}
	if !strings.Contains(err.Error(), "statement 3") {
		t.Errorf("expected statement index in error, got %q", err.Error())
	}
	if output != "" {
		t.Errorf("expected no query output before failure, got %q", output)
	}

	// Effects of the statements before the failure persist.
	if n := tableOf(t, engine, "t").RowCount(); n != 1 {
		t.Errorf("expected 1 row from the successful INSERT, got %d", n)
	}
}

func TestEngineBindErrors(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (a INT)")

	tests := []string{
		"SELECT * FROM missing",
		"SELECT nope FROM t",
		"SELECT * FROM t ORDER BY nope",
		"UPDATE t SET nope = 1",
		"INSERT INTO t (nope) VALUES (1)",
		"DELETE FROM missing",
	}
	for _, sql := range tests {
		_, err := engine.Execute(sql)
		if err == nil {
			t.Errorf("%s: expected bind error", sql)
			continue
		}
		if kind, _ := core.KindOf(err); kind != core.BindError {
			t.Errorf("%s: expected Bind error, got %v", sql, err)
		}
	}
}

func TestEngineInsertArityMismatch(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "CREATE TABLE t (a INT, b INT)")

	for _, sql := range []string{
		"INSERT INTO t VALUES (1)",
		"INSERT INTO t (a) VALUES (1, 2)",
	} {
		if _, err := engine.Execute(sql); err == nil {
			t.Errorf("%s: expected arity error", sql)
		}
	}
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("not a number: %q", s)
	}
	return n
}
