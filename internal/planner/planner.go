// Package planner translates a parsed Statement into a Plan tree of Nodes,
// lowering column defaults from Expression to Value along the way (§6:
// nullable defaults to true when unspecified; an absent default on a
// nullable column becomes Null).
package planner

import (
	"govetachun/kvsql/internal/parser"
	"govetachun/kvsql/internal/sqltypes"
)

// NodeKind tags which of the three plan node shapes a Node holds.
type NodeKind int

const (
	NodeCreateTable NodeKind = iota
	NodeInsert
	NodeScan
)

// Node is one plan node, dispatched by Kind. Exactly the field matching
// Kind is populated.
type Node struct {
	Kind        NodeKind
	CreateTable CreateTableNode
	Insert      InsertNode
	Scan        ScanNode
}

// CreateTableNode carries the fully-lowered table schema to create.
type CreateTableNode struct {
	Table sqltypes.Table
}

// InsertNode carries the target table, the optional explicit column list
// (nil means positional), and the not-yet-lowered value expressions (the
// executor lowers them, since expression lowering is an executor-time
// concern per the data flow in §2).
type InsertNode struct {
	TableName string
	Columns   []string
	Values    [][]parser.Expression
}

// ScanNode carries the table to scan.
type ScanNode struct {
	TableName string
}

// Build lowers a parsed Statement into a Plan Node.
func Build(stmt parser.Statement) (Node, error) {
	switch {
	case stmt.CreateTable != nil:
		table, err := buildTable(*stmt.CreateTable)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: NodeCreateTable, CreateTable: CreateTableNode{Table: table}}, nil
	case stmt.Insert != nil:
		ins := stmt.Insert
		return Node{Kind: NodeInsert, Insert: InsertNode{
			TableName: ins.TableName,
			Columns:   ins.Columns,
			Values:    ins.Values,
		}}, nil
	case stmt.Select != nil:
		return Node{Kind: NodeScan, Scan: ScanNode{TableName: stmt.Select.TableName}}, nil
	default:
		panic("planner: empty statement")
	}
}

func buildTable(stmt parser.CreateTableStatement) (sqltypes.Table, error) {
	columns := make([]sqltypes.Column, 0, len(stmt.Columns))
	for _, spec := range stmt.Columns {
		nullable := true
		if spec.Nullable != nil {
			nullable = *spec.Nullable
		}

		var def *sqltypes.Value
		switch {
		case spec.Default != nil:
			v := spec.Default.ToValue()
			def = &v
		case nullable:
			v := sqltypes.Null
			def = &v
		}

		columns = append(columns, sqltypes.Column{
			Name:     spec.Name,
			DataType: spec.DataType,
			Nullable: nullable,
			Default:  def,
		})
	}
	return sqltypes.Table{Name: stmt.Name, Columns: columns}, nil
}
