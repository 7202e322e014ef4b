// Package executor turns a planner.Node into a runnable operation against a
// sqlengine.Transaction, producing a ResultSet. Each plan node kind maps to
// exactly one executor; dispatch is a plain switch over Node.Kind, one of
// the equivalent realizations the design notes call out (closed sum type,
// function table, or virtual dispatch are all the same at this level).
package executor

import (
	"govetachun/kvsql/internal/dberrors"
	"govetachun/kvsql/internal/planner"
	"govetachun/kvsql/internal/sqlengine"
	"govetachun/kvsql/internal/sqltypes"
)

// ResultSetKind tags which of the three ResultSet shapes is populated.
type ResultSetKind int

const (
	ResultCreateTable ResultSetKind = iota
	ResultInsert
	ResultScan
)

// ResultSet is the tagged outcome of running one executor.
type ResultSet struct {
	Kind ResultSetKind

	// ResultCreateTable
	TableName string

	// ResultInsert
	Count int

	// ResultScan
	Columns []string
	Rows    []sqltypes.Row
}

// Run dispatches node to the matching executor and runs it against txn.
func Run(node planner.Node, txn *sqlengine.Transaction) (ResultSet, error) {
	switch node.Kind {
	case planner.NodeCreateTable:
		return runCreateTable(node.CreateTable, txn)
	case planner.NodeInsert:
		return runInsert(node.Insert, txn)
	case planner.NodeScan:
		return runScan(node.Scan, txn)
	default:
		return ResultSet{}, dberrors.Internalf("unknown plan node kind %d", node.Kind)
	}
}

func runCreateTable(node planner.CreateTableNode, txn *sqlengine.Transaction) (ResultSet, error) {
	if err := txn.CreateTable(node.Table); err != nil {
		return ResultSet{}, err
	}
	return ResultSet{Kind: ResultCreateTable, TableName: node.Table.Name}, nil
}

func runInsert(node planner.InsertNode, txn *sqlengine.Transaction) (ResultSet, error) {
	table, err := txn.MustGetTable(node.TableName)
	if err != nil {
		return ResultSet{}, err
	}

	count := 0
	for _, tuple := range node.Values {
		values := make([]sqltypes.Value, len(tuple))
		for i, expr := range tuple {
			values[i] = expr.ToValue()
		}

		var row sqltypes.Row
		if len(node.Columns) == 0 {
			row, err = padRow(table, values)
		} else {
			row, err = makeRow(table, node.Columns, values)
		}
		if err != nil {
			return ResultSet{}, err
		}

		if err := txn.CreateRow(node.TableName, row); err != nil {
			return ResultSet{}, err
		}
		count++
	}
	return ResultSet{Kind: ResultInsert, Count: count}, nil
}

// padRow implements the positional insert path: the supplied values fill
// the leading columns; each trailing column takes its default, or fails
// Internal if it has none.
func padRow(table sqltypes.Table, values []sqltypes.Value) (sqltypes.Row, error) {
	if len(values) > len(table.Columns) {
		return nil, dberrors.Internalf("table %q has %d columns, got %d values", table.Name, len(table.Columns), len(values))
	}
	row := make(sqltypes.Row, len(table.Columns))
	copy(row, values)
	for i := len(values); i < len(table.Columns); i++ {
		col := table.Columns[i]
		if col.Default == nil {
			return nil, dberrors.Internalf("missing value for column %q with no default", col.Name)
		}
		row[i] = *col.Default
	}
	return row, nil
}

// makeRow implements the named-column insert path: build a name-to-value
// map from the supplied pairs, then emit each table column in declaration
// order from that map, falling back to the column's default, or failing
// Internal if it has neither.
func makeRow(table sqltypes.Table, columns []string, values []sqltypes.Value) (sqltypes.Row, error) {
	if len(columns) != len(values) {
		return nil, dberrors.Internalf("insert has %d columns but %d values", len(columns), len(values))
	}
	supplied := make(map[string]sqltypes.Value, len(columns))
	for i, name := range columns {
		supplied[name] = values[i]
	}

	row := make(sqltypes.Row, len(table.Columns))
	for i, col := range table.Columns {
		if v, ok := supplied[col.Name]; ok {
			row[i] = v
			continue
		}
		if col.Default == nil {
			return nil, dberrors.Internalf("missing value for column %q with no default", col.Name)
		}
		row[i] = *col.Default
	}
	return row, nil
}

func runScan(node planner.ScanNode, txn *sqlengine.Transaction) (ResultSet, error) {
	table, err := txn.MustGetTable(node.TableName)
	if err != nil {
		return ResultSet{}, err
	}
	rows, err := txn.ScanTable(node.TableName)
	if err != nil {
		return ResultSet{}, err
	}
	columns := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = col.Name
	}
	return ResultSet{Kind: ResultScan, Columns: columns, Rows: rows}, nil
}
