package ps

import (
	"encoding/json"

	"github.com/helidb/helidb/core"
)

// snapshotFormat versions the on-disk layout; bump on incompatible
// changes.
const snapshotFormat = 1

type snapshot struct {
	Format int           `json:"format"`
	Tables []*core.Table `json:"tables"`
}

// EncodeSnapshot serializes the catalog: per table the schema
// (column name, type, nullability, primary-key flag) and the rows
// with tagged values, so NULLs survive the round trip. Tables appear
// in creation order.
func EncodeSnapshot(database *core.Database) ([]byte, error) {
	s := snapshot{Format: snapshotFormat}
	for _, name := range database.TableNames() {
		table, _ := database.Table(name)
		s.Tables = append(s.Tables, table)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, core.Errorf(core.IOError, "failed to encode catalog: %v", err)
	}
	return data, nil
}

// DecodeSnapshot restores a catalog from its serialized form,
// rebuilding each table's derived indexes.
func DecodeSnapshot(data []byte) (*core.Database, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, core.Errorf(core.IOError, "failed to decode catalog: %v", err)
	}
	if s.Format != snapshotFormat {
		return nil, core.Errorf(core.IOError, "unsupported snapshot format %d", s.Format)
	}

	database := core.NewDatabase()
	for _, table := range s.Tables {
		if database.HasTable(table.Name) {
			return nil, core.Errorf(core.IOError, "duplicate table %s in snapshot", table.Name)
		}
		table.Reindex()
		database.AddTable(table)
	}
	return database, nil
}
