package core

import "fmt"

type TypeKind int

const (
	IntType TypeKind = iota
	VarcharType
)

func (kind TypeKind) String() string {
	switch kind {
	case IntType:
		return "INT"
	case VarcharType:
		return "VARCHAR"
	default:
		return "Unknown"
	}
}

// ColumnType is a declared column type. For VARCHAR, Length is the
// maximum stored length; 0 means unbounded. For INT the declared
// display width is accepted in SQL and discarded, so Length is
// always 0.
type ColumnType struct {
	Kind   TypeKind `json:"kind"`
	Length int      `json:"length,omitempty"`
}

func (t ColumnType) String() string {
	if t.Kind == VarcharType && t.Length > 0 {
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	}
	return t.Kind.String()
}

type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	Nullable   bool       `json:"nullable"`
	PrimaryKey bool       `json:"primaryKey"`
}

// CheckValue validates a single cell against the column definition:
// NULL only when nullable, kind match otherwise, and the VARCHAR
// length cap when one is declared.
func (c Column) CheckValue(v Value) error {
	if v.IsNull() {
		if !c.Nullable {
			return Errorf(ConstraintError, "null value in NOT NULL column %s", c.Name)
		}
		return nil
	}
	switch c.Type.Kind {
	case IntType:
		if v.Kind != IntValue {
			return Errorf(TypeError, "column %s expects INT, got %s", c.Name, v.Kind)
		}
	case VarcharType:
		if v.Kind != VarcharValue {
			return Errorf(TypeError, "column %s expects VARCHAR, got %s", c.Name, v.Kind)
		}
		if c.Type.Length > 0 && len(v.Str) > c.Type.Length {
			return Errorf(TypeError, "value too long for column %s: %d > %d", c.Name, len(v.Str), c.Type.Length)
		}
	}
	return nil
}
