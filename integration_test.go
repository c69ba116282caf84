package helidb

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSessionEndToEnd(t *testing.T) {
	session, err := NewConfig().Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	if _, err := session.ExecuteSQL(
		"CREATE TABLE products (id INT PRIMARY KEY, name VARCHAR(20) NOT NULL, price INT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := session.ExecuteSQL(
		"INSERT INTO products VALUES (1, 'Laptop', 999), (2, 'Mouse', 25), (3, 'Keyboard', NULL)"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	output, err := session.ExecuteSQL("SELECT name, price FROM products WHERE price IS NOT NULL ORDER BY price DESC")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	expected := "" +
		"| name   | price |\n" +
		"| ------ | ----- |\n" +
		"| Laptop | 999   |\n" +
		"| Mouse  | 25    |\n"
	if output != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, output)
	}
}

func TestSessionBatchOutputSeparation(t *testing.T) {
	session, err := NewConfig().Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	output, err := session.ExecuteSQL(
		"CREATE TABLE t (a INT); INSERT INTO t VALUES (1); SELECT * FROM t; SELECT * FROM t;")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	one := "| a   |\n| --- |\n| 1   |\n"
	if output != one+"\n"+one {
		t.Errorf("expected two tables separated by a blank line, got:\n%q", output)
	}
}

func TestSessionErrorReportsStatementIndex(t *testing.T) {
	session, err := NewConfig().Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	_, err = session.ExecuteSQL("CREATE TABLE t (a INT); INSERT INTO t VALUES ('x');")
	if err == nil {
		t.Fatal("expected type error")
	}
	if !strings.Contains(err.Error(), "statement 2") {
		t.Errorf("expected statement index, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "Type error") {
		t.Errorf("expected error kind tag, got %q", err.Error())
	}
}

func TestSessionPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	session, err := NewConfig().StoragePath(path).Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := session.ExecuteSQL(
		"CREATE TABLE t (id INT PRIMARY KEY, v VARCHAR(5)); INSERT INTO t VALUES (1, 'a'), (2, NULL);"); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewConfig().StoragePath(path).Connect()
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer reopened.Close()

	output, err := reopened.ExecuteSQL("SELECT * FROM t ORDER BY id")
	if err != nil {
		t.Fatalf("select after reload: %v", err)
	}
	if !strings.Contains(output, "NULL") || !strings.Contains(output, "a") {
		t.Errorf("restored catalog missing data:\n%s", output)
	}

	// The duplicate key is still rejected, so the index survived.
	if _, err := reopened.ExecuteSQL("INSERT INTO t VALUES (1, 'x')"); err == nil {
		t.Error("expected duplicate key after reload")
	}
}

func TestSessionReinit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	session, err := NewConfig().StoragePath(path).Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := session.ExecuteSQL("CREATE TABLE t (a INT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	fresh, err := NewConfig().StoragePath(path).Reinit(true).Connect()
	if err != nil {
		t.Fatalf("reconnect with reinit: %v", err)
	}
	defer fresh.Close()

	if len(fresh.Tables()) != 0 {
		t.Errorf("expected empty catalog with reinit, got %v", fresh.Tables())
	}
}

func TestSessionNoWriteBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	session, err := NewConfig().StoragePath(path).WriteBack(false).Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := session.ExecuteSQL("CREATE TABLE t (a INT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewConfig().StoragePath(path).Connect()
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer reopened.Close()

	if len(reopened.Tables()) != 0 {
		t.Errorf("expected nothing persisted, got %v", reopened.Tables())
	}
}

func TestSessionParallelEquivalence(t *testing.T) {
	statements := []string{
		"CREATE TABLE t (id INT PRIMARY KEY, v INT)",
		"INSERT INTO t VALUES (1, 5), (2, 9), (3, 2), (4, 9), (5, NULL)",
		"SELECT * FROM t WHERE v >= 5 ORDER BY v DESC",
		"UPDATE t SET v = v + 1 WHERE v < 9",
		"SELECT * FROM t ORDER BY id",
		"DELETE FROM t WHERE v IS NULL",
		"SELECT * FROM t",
	}

	sequential, err := NewConfig().Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer sequential.Close()
	parallel, err := NewConfig().Parallel(true).Connect()
	if err != nil {
		t.Fatalf("connect parallel: %v", err)
	}
	defer parallel.Close()

	for _, statement := range statements {
		seqOut, seqErr := sequential.ExecuteSQL(statement)
		parOut, parErr := parallel.ExecuteSQL(statement)
		if (seqErr == nil) != (parErr == nil) {
			t.Fatalf("%s: error mismatch: %v vs %v", statement, seqErr, parErr)
		}
		if seqOut != parOut {
			t.Fatalf("%s: output mismatch\nsequential:\n%s\nparallel:\n%s", statement, seqOut, parOut)
		}
	}
}

func TestSessionHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	session, err := NewConfig().StoragePath(path).History(true).Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := session.ExecuteSQL("CREATE TABLE t (a INT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewConfig().StoragePath(path).History(true).Connect()
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer reopened.Close()

	history := reopened.History()
	if history == nil {
		t.Fatal("expected a history")
	}
	revisions, err := history.Log()
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(revisions) != 1 {
		t.Fatalf("expected 1 revision, got %d", len(revisions))
	}
	if revisions[0].Session != session.ID() {
		t.Errorf("expected session %s in revision, got %s", session.ID(), revisions[0].Session)
	}
}

func TestSessionClosedRejectsWork(t *testing.T) {
	session, err := NewConfig().Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("second close should be a no-op: %v", err)
	}
	if _, err := session.ExecuteSQL("SELECT * FROM t"); err == nil {
		t.Error("expected error executing on a closed session")
	}
}
