package ps

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"

	"github.com/helidb/helidb/core"
)

// Store persists a catalog snapshot to a single file on a billy
// filesystem. Saves are atomic: the snapshot is written to a
// temporary file and renamed over the target.
type Store struct {
	fs      billy.Filesystem
	name    string
	history *History
}

// NewMemoryStore keeps the snapshot on an in-memory filesystem,
// mainly for tests.
func NewMemoryStore() *Store {
	return &Store{fs: memfs.New(), name: "catalog.json"}
}

// NewFileStore persists the snapshot at the given path. The parent
// directory is created if needed.
func NewFileStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, core.Errorf(core.IOError, "failed to create storage directory: %v", err)
	}
	return &Store{fs: osfs.New(dir), name: filepath.Base(path)}, nil
}

// WithHistory attaches a snapshot history; every Save is also
// recorded as a commit.
func (store *Store) WithHistory(history *History) *Store {
	store.history = history
	return store
}

func (store *Store) History() *History {
	return store.history
}

// Load reads the stored catalog. A missing file yields an empty
// catalog, not an error.
func (store *Store) Load() (*core.Database, error) {
	file, err := store.fs.Open(store.name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.NewDatabase(), nil
		}
		return nil, core.Errorf(core.IOError, "failed to open storage file: %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, core.Errorf(core.IOError, "failed to read storage file: %v", err)
	}
	return DecodeSnapshot(data)
}

// Save writes the catalog snapshot, replacing the previous one
// atomically, then records the revision in the history when one is
// attached. The session id is stamped into the commit message.
func (store *Store) Save(database *core.Database, session string) error {
	data, err := EncodeSnapshot(database)
	if err != nil {
		return err
	}

	temp := store.name + ".tmp"
	file, err := store.fs.Create(temp)
	if err != nil {
		return core.Errorf(core.IOError, "failed to create temporary file: %v", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return core.Errorf(core.IOError, "failed to write snapshot: %v", err)
	}
	if err := file.Close(); err != nil {
		return core.Errorf(core.IOError, "failed to close snapshot: %v", err)
	}
	if err := store.fs.Rename(temp, store.name); err != nil {
		return core.Errorf(core.IOError, "failed to replace storage file: %v", err)
	}

	if store.history != nil {
		if _, err := store.history.Commit(store.name, data, session); err != nil {
			return err
		}
	}
	return nil
}
