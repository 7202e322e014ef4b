package planner

import (
	"testing"

	"govetachun/kvsql/internal/parser"
)

func TestBuildCreateTableDefaultsNullableTrue(t *testing.T) {
	stmt, err := parser.Parse(`create table t (a int, b text default 'vv');`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	node, err := Build(stmt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Kind != NodeCreateTable {
		t.Fatalf("expected NodeCreateTable, got %v", node.Kind)
	}
	table := node.CreateTable.Table
	colA := table.Columns[0]
	if !colA.Nullable {
		t.Fatalf("expected column a nullable by default")
	}
	if colA.Default == nil || !colA.Default.IsNull() {
		t.Fatalf("expected column a default to be Null, got %+v", colA.Default)
	}

	colB := table.Columns[1]
	if colB.Default == nil || colB.Default.Str != "vv" {
		t.Fatalf("expected column b default 'vv', got %+v", colB.Default)
	}
}

func TestBuildCreateTableNotNullNoDefault(t *testing.T) {
	stmt, err := parser.Parse(`create table t (a int not null);`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	node, err := Build(stmt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	col := node.CreateTable.Table.Columns[0]
	if col.Nullable {
		t.Fatalf("expected column a not nullable")
	}
	if col.Default != nil {
		t.Fatalf("expected no default for non-nullable column without DEFAULT, got %+v", col.Default)
	}
}

func TestBuildInsertAndScan(t *testing.T) {
	stmt, err := parser.Parse(`insert into t1 values(1, 'a');`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	node, err := Build(stmt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Kind != NodeInsert || node.Insert.TableName != "t1" {
		t.Fatalf("unexpected node: %+v", node)
	}

	stmt, err = parser.Parse(`select * from t1;`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	node, err = Build(stmt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Kind != NodeScan || node.Scan.TableName != "t1" {
		t.Fatalf("unexpected node: %+v", node)
	}
}
