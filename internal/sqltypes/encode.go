package sqltypes

import (
	"math"

	"govetachun/kvsql/internal/dberrors"
	"govetachun/kvsql/internal/encoding"
)

// EncodeValue serializes v for storage inside a Row or Column default, and
// also supplies the primary-key part of Row(table, pk) keys. The encoding is
// not order-preserving (negative integers sort after non-negative ones), so
// a table scan does not in general return rows in primary-key order.
func EncodeValue(v Value) []byte {
	switch v.Kind {
	case KindNull:
		return []byte{byte(KindNull)}
	case KindBoolean:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return []byte{byte(KindBoolean), b}
	case KindInteger:
		buf := []byte{byte(KindInteger)}
		return append(buf, encoding.EncodeUint64(uint64(v.Int))...)
	case KindFloat:
		buf := []byte{byte(KindFloat)}
		return append(buf, encoding.EncodeUint64(math.Float64bits(v.Float))...)
	case KindString:
		buf := []byte{byte(KindString)}
		return append(buf, encoding.EncodeBytes([]byte(v.Str))...)
	default:
		panic("sqltypes: unknown value kind")
	}
}

// DecodeValue reverses EncodeValue, returning the value and the remaining
// bytes.
func DecodeValue(buf []byte) (Value, []byte, error) {
	if len(buf) == 0 {
		return Value{}, nil, dberrors.Internalf("empty value buffer")
	}
	kind := ValueKind(buf[0])
	rest := buf[1:]
	switch kind {
	case KindNull:
		return Null, rest, nil
	case KindBoolean:
		if len(rest) < 1 {
			return Value{}, nil, dberrors.Internalf("truncated boolean value")
		}
		return NewBoolean(rest[0] != 0), rest[1:], nil
	case KindInteger:
		u, rest, err := encoding.DecodeUint64(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return NewInteger(int64(u)), rest, nil
	case KindFloat:
		u, rest, err := encoding.DecodeUint64(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return NewFloat(math.Float64frombits(u)), rest, nil
	case KindString:
		raw, rest, err := encoding.DecodeBytes(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return NewString(string(raw)), rest, nil
	default:
		return Value{}, nil, dberrors.Internalf("unknown value kind %d", kind)
	}
}

// EncodeRow serializes a full row as a count followed by each value's
// encoding in sequence.
func EncodeRow(row Row) []byte {
	buf := encoding.EncodeUint64(uint64(len(row)))
	for _, v := range row {
		buf = append(buf, EncodeValue(v)...)
	}
	return buf
}

// DecodeRow reverses EncodeRow.
func DecodeRow(buf []byte) (Row, error) {
	n, rest, err := encoding.DecodeUint64(buf)
	if err != nil {
		return nil, err
	}
	row := make(Row, 0, n)
	for i := uint64(0); i < n; i++ {
		var v Value
		v, rest, err = DecodeValue(rest)
		if err != nil {
			return nil, err
		}
		row = append(row, v)
	}
	return row, nil
}

// EncodeTable serializes table metadata for storage under Table(name).
func EncodeTable(t Table) []byte {
	buf := encoding.EncodeBytes([]byte(t.Name))
	buf = append(buf, encoding.EncodeUint64(uint64(len(t.Columns)))...)
	for _, col := range t.Columns {
		buf = append(buf, encoding.EncodeBytes([]byte(col.Name))...)
		buf = append(buf, byte(col.DataType))
		nullable := byte(0)
		if col.Nullable {
			nullable = 1
		}
		buf = append(buf, nullable)
		if col.Default == nil {
			buf = append(buf, 0)
		} else {
			buf = append(buf, 1)
			buf = append(buf, EncodeValue(*col.Default)...)
		}
	}
	return buf
}

// DecodeTable reverses EncodeTable.
func DecodeTable(buf []byte) (Table, error) {
	name, rest, err := encoding.DecodeBytes(buf)
	if err != nil {
		return Table{}, err
	}
	n, rest, err := encoding.DecodeUint64(rest)
	if err != nil {
		return Table{}, err
	}
	columns := make([]Column, 0, n)
	for i := uint64(0); i < n; i++ {
		var colName []byte
		colName, rest, err = encoding.DecodeBytes(rest)
		if err != nil {
			return Table{}, err
		}
		if len(rest) < 2 {
			return Table{}, dberrors.Internalf("truncated column metadata")
		}
		dt := DataType(rest[0])
		nullable := rest[1] != 0
		rest = rest[2:]
		if len(rest) < 1 {
			return Table{}, dberrors.Internalf("truncated column default tag")
		}
		hasDefault := rest[0] != 0
		rest = rest[1:]
		var def *Value
		if hasDefault {
			var v Value
			v, rest, err = DecodeValue(rest)
			if err != nil {
				return Table{}, err
			}
			def = &v
		}
		columns = append(columns, Column{
			Name:     string(colName),
			DataType: dt,
			Nullable: nullable,
			Default:  def,
		})
	}
	return Table{Name: string(name), Columns: columns}, nil
}
