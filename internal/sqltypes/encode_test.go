package sqltypes

import "testing"

func TestEncodeValueRoundTrip(t *testing.T) {
	cases := []Value{
		Null,
		NewBoolean(true),
		NewBoolean(false),
		NewInteger(42),
		NewInteger(-17),
		NewFloat(3.14159),
		NewString(""),
		NewString("hello world"),
	}
	for _, v := range cases {
		enc := EncodeValue(v)
		got, rest, err := DecodeValue(enc)
		if err != nil {
			t.Fatalf("DecodeValue(%v): %v", v, err)
		}
		if len(rest) != 0 {
			t.Fatalf("trailing bytes after decoding %v: %x", v, rest)
		}
		if !got.Equal(v) {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, v)
		}
	}
}

func TestEncodeRowRoundTrip(t *testing.T) {
	row := Row{NewInteger(1), NewString("a"), Null, NewBoolean(true)}
	enc := EncodeRow(row)
	got, err := DecodeRow(enc)
	if err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if len(got) != len(row) {
		t.Fatalf("row length mismatch: got %d want %d", len(got), len(row))
	}
	for i := range row {
		if !got[i].Equal(row[i]) {
			t.Fatalf("row[%d] mismatch: got %+v want %+v", i, got[i], row[i])
		}
	}
}

func TestEncodeTableRoundTrip(t *testing.T) {
	def := NewInteger(100)
	table := Table{
		Name: "t1",
		Columns: []Column{
			{Name: "a", DataType: Integer, Nullable: false},
			{Name: "b", DataType: String, Nullable: true, Default: &[]Value{NewString("vv")}[0]},
			{Name: "c", DataType: Integer, Nullable: true, Default: &def},
		},
	}
	enc := EncodeTable(table)
	got, err := DecodeTable(enc)
	if err != nil {
		t.Fatalf("DecodeTable: %v", err)
	}
	if got.Name != table.Name || len(got.Columns) != len(table.Columns) {
		t.Fatalf("table mismatch: got %+v want %+v", got, table)
	}
	for i, col := range table.Columns {
		gc := got.Columns[i]
		if gc.Name != col.Name || gc.DataType != col.DataType || gc.Nullable != col.Nullable {
			t.Fatalf("column %d mismatch: got %+v want %+v", i, gc, col)
		}
		if (gc.Default == nil) != (col.Default == nil) {
			t.Fatalf("column %d default presence mismatch", i)
		}
		if col.Default != nil && !gc.Default.Equal(*col.Default) {
			t.Fatalf("column %d default mismatch: got %+v want %+v", i, *gc.Default, *col.Default)
		}
	}
}

func TestTableValidate(t *testing.T) {
	table := Table{
		Name: "t",
		Columns: []Column{
			{Name: "a", DataType: Integer, Nullable: false},
			{Name: "b", DataType: String, Nullable: true},
		},
	}

	if err := table.Validate(Row{NewInteger(1), NewString("x")}); err != nil {
		t.Fatalf("expected valid row, got %v", err)
	}
	if err := table.Validate(Row{NewInteger(1), Null}); err != nil {
		t.Fatalf("expected nullable column to accept Null, got %v", err)
	}
	if err := table.Validate(Row{Null, NewString("x")}); err == nil {
		t.Fatalf("expected error for Null in non-nullable column")
	}
	if err := table.Validate(Row{NewString("x"), NewString("y")}); err == nil {
		t.Fatalf("expected error for wrong datatype")
	}
	if err := table.Validate(Row{NewInteger(1)}); err == nil {
		t.Fatalf("expected error for wrong row length")
	}
}
