// Package sqltypes defines the relational type system: data types, tagged
// values, column and table metadata, and rows, plus the serialization those
// need to live inside Table(name) and Row(table, pk) entries. The tagged
// Value shape mirrors how the teacher's query layer carries a Type field
// alongside each scalar's payload rather than modeling a sum type with
// interfaces.
package sqltypes

import "govetachun/kvsql/internal/dberrors"

// DataType enumerates the four scalar types a column may hold.
type DataType int

const (
	Boolean DataType = iota
	Integer
	Float
	String
)

func (d DataType) String() string {
	switch d {
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// ValueKind tags which field of Value is populated. Kind Null carries no
// payload and reports no DataType.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
)

// Value is a tagged scalar: exactly one of Bool/Int/Float/Str is meaningful,
// selected by Kind.
type Value struct {
	Kind  ValueKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Null is the absence of a value.
var Null = Value{Kind: KindNull}

// NewBoolean wraps b as a Value.
func NewBoolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// NewInteger wraps i as a Value.
func NewInteger(i int64) Value { return Value{Kind: KindInteger, Int: i} }

// NewFloat wraps f as a Value.
func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// NewString wraps s as a Value.
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }

// DataType reports the DataType of v, or (_, false) if v is Null.
func (v Value) DataType() (DataType, bool) {
	switch v.Kind {
	case KindBoolean:
		return Boolean, true
	case KindInteger:
		return Integer, true
	case KindFloat:
		return Float, true
	case KindString:
		return String, true
	default:
		return 0, false
	}
}

// IsNull reports whether v is the Null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal compares two values by kind and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.Bool == other.Bool
	case KindInteger:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindString:
		return v.Str == other.Str
	default:
		return false
	}
}

// Column describes one position in a Table's row shape.
type Column struct {
	Name     string
	DataType DataType
	Nullable bool
	Default  *Value
}

// Table is catalog metadata: a name and an ordered column list. Column 0 is
// the de-facto primary key (see the design notes on primary-key handling).
type Table struct {
	Name    string
	Columns []Column
}

// PrimaryKeyIndex returns the index of the table's primary key column.
// Centralized here so a future declared-PRIMARY-KEY scheme only needs to
// change this one call site.
func (t Table) PrimaryKeyIndex() int {
	return 0
}

// Row is a table row: one Value per column, positional.
type Row []Value

// Validate checks row against I1: length matches the column count, and each
// value is either Null (only if the column is nullable) or matches the
// column's declared DataType.
func (t Table) Validate(row Row) error {
	if len(row) != len(t.Columns) {
		return dberrors.Internalf("row has %d values, table %q has %d columns", len(row), t.Name, len(t.Columns))
	}
	for i, col := range t.Columns {
		v := row[i]
		if v.IsNull() {
			if !col.Nullable {
				return dberrors.Internalf("column %q is not nullable", col.Name)
			}
			continue
		}
		dt, _ := v.DataType()
		if dt != col.DataType {
			return dberrors.Internalf("column %q expects %s, got %s", col.Name, col.DataType, dt)
		}
	}
	return nil
}
