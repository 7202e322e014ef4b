package sqlengine

import (
	"testing"

	"govetachun/kvsql/internal/dberrors"
	"govetachun/kvsql/internal/kv"
	"govetachun/kvsql/internal/mvcc"
	"govetachun/kvsql/internal/sqltypes"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(mvcc.New(kv.NewMemoryEngine()))
}

func testTable() sqltypes.Table {
	vv := sqltypes.NewString("vv")
	hundred := sqltypes.NewInteger(100)
	return sqltypes.Table{
		Name: "t1",
		Columns: []sqltypes.Column{
			{Name: "a", DataType: sqltypes.Integer, Nullable: false},
			{Name: "b", DataType: sqltypes.String, Nullable: true, Default: &vv},
			{Name: "c", DataType: sqltypes.Integer, Nullable: true, Default: &hundred},
		},
	}
}

func TestCreateAndScanTable(t *testing.T) {
	e := newEngine(t)
	txn, err := e.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := txn.CreateTable(testTable()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	rows := []sqltypes.Row{
		{sqltypes.NewInteger(1), sqltypes.NewString("a"), sqltypes.NewInteger(1)},
		{sqltypes.NewInteger(2), sqltypes.NewString("b"), sqltypes.NewInteger(100)},
		{sqltypes.NewInteger(3), sqltypes.Null, sqltypes.NewInteger(200)},
	}
	for _, r := range rows {
		if err := txn.CreateRow("t1", r); err != nil {
			t.Fatalf("CreateRow(%v): %v", r, err)
		}
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reader, err := e.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	got, err := reader.ScanTable("t1")
	if err != nil {
		t.Fatalf("ScanTable: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("ScanTable returned %d rows, want %d", len(got), len(rows))
	}
	seen := map[int64]bool{}
	for _, r := range got {
		seen[r[0].Int] = true
	}
	for _, want := range rows {
		if !seen[want[0].Int] {
			t.Fatalf("missing row with pk %d", want[0].Int)
		}
	}
}

func TestCreateTableRejectsEmptyColumns(t *testing.T) {
	e := newEngine(t)
	txn, _ := e.Begin()
	err := txn.CreateTable(sqltypes.Table{Name: "empty"})
	if !dberrors.IsKind(err, dberrors.KindInternal) {
		t.Fatalf("expected Internal error, got %v", err)
	}
}

func TestCreateTableRejectsDuplicate(t *testing.T) {
	e := newEngine(t)
	txn, _ := e.Begin()
	if err := txn.CreateTable(testTable()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	err := txn.CreateTable(testTable())
	if !dberrors.IsKind(err, dberrors.KindInternal) {
		t.Fatalf("expected Internal error on duplicate table, got %v", err)
	}
}

func TestMustGetTableMissing(t *testing.T) {
	e := newEngine(t)
	txn, _ := e.Begin()
	_, err := txn.MustGetTable("nope")
	if !dberrors.IsKind(err, dberrors.KindInternal) {
		t.Fatalf("expected Internal error, got %v", err)
	}
}

func TestCreateRowRejectsInvalidRow(t *testing.T) {
	e := newEngine(t)
	txn, _ := e.Begin()
	if err := txn.CreateTable(testTable()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	err := txn.CreateRow("t1", sqltypes.Row{sqltypes.NewString("wrong type"), sqltypes.Null, sqltypes.Null})
	if !dberrors.IsKind(err, dberrors.KindInternal) {
		t.Fatalf("expected Internal error for bad row, got %v", err)
	}
}
