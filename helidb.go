package helidb

import (
	"github.com/google/uuid"

	"github.com/helidb/helidb/core"
	"github.com/helidb/helidb/db"
	"github.com/helidb/helidb/ps"
)

// Config describes how a session opens: storage location, write-back
// behavior, and the parallelism policy. Options chain; the default
// Config from NewConfig is a pure in-memory session.
type Config struct {
	storagePath string
	reinit      bool
	writeBack   bool
	parallel    bool
	history     bool
}

func NewConfig() Config {
	return Config{writeBack: true}
}

// StoragePath sets the snapshot file location. Empty means pure
// in-memory with no persistence.
func (c Config) StoragePath(path string) Config {
	c.storagePath = path
	return c
}

// Reinit ignores any existing snapshot and starts from an empty
// catalog.
func (c Config) Reinit(reinit bool) Config {
	c.reinit = reinit
	return c
}

// WriteBack controls whether Close persists the catalog.
func (c Config) WriteBack(writeBack bool) Config {
	c.writeBack = writeBack
	return c
}

// Parallel enables parallel row evaluation inside single statements.
func (c Config) Parallel(parallel bool) Config {
	c.parallel = parallel
	return c
}

// History records every persisted snapshot as a git commit beside the
// storage file. Only meaningful with a storage path.
func (c Config) History(history bool) Config {
	c.history = history
	return c
}

// Connect opens a session: loads the snapshot when storage is
// configured (unless reinit), otherwise starts empty.
func (c Config) Connect() (*Session, error) {
	session := &Session{
		id:     uuid.NewString(),
		config: c,
	}

	if c.storagePath != "" {
		store, err := ps.NewFileStore(c.storagePath)
		if err != nil {
			return nil, err
		}
		if c.history {
			history, err := ps.NewFileHistory(c.storagePath + ".history")
			if err != nil {
				return nil, err
			}
			store = store.WithHistory(history)
		}
		session.store = store

		if c.reinit {
			session.database = core.NewDatabase()
		} else {
			database, err := store.Load()
			if err != nil {
				return nil, err
			}
			session.database = database
		}
	} else {
		session.database = core.NewDatabase()
	}

	var manager db.RowManager = db.SequentialManager{}
	if c.parallel {
		manager = db.ParallelManager{}
	}
	session.engine = db.NewEngine(session.database, manager)

	return session, nil
}

// Session owns the live catalog and is the public entry point for
// executing SQL. A session is single-threaded at the statement
// boundary; callers serialize access.
type Session struct {
	id       string
	config   Config
	database *core.Database
	engine   *db.Engine
	store    *ps.Store
	closed   bool
}

// ID returns the session identifier stamped into history commits.
func (s *Session) ID() string {
	return s.id
}

// Tables lists the catalog's table names in creation order.
func (s *Session) Tables() []string {
	return s.database.TableNames()
}

// History returns the snapshot history, or nil when not configured.
func (s *Session) History() *ps.History {
	if s.store == nil {
		return nil
	}
	return s.store.History()
}

// ExecuteSQL runs a batch of SQL statements and returns the combined
// formatted output. The batch halts at the first failing statement;
// output already produced is returned alongside the error.
func (s *Session) ExecuteSQL(text string) (string, error) {
	if s.closed {
		return "", core.Errorf(core.IOError, "session is closed")
	}
	return s.engine.Execute(text)
}

// Close persists the catalog when storage is configured and
// write-back is enabled. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.store != nil && s.config.writeBack {
		return s.store.Save(s.database, s.id)
	}
	return nil
}
