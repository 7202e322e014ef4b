// Package sqlengine maps the relational operations of §4.3 onto an MVCC
// transaction: table catalog entries and rows are just specially-shaped
// keys in the same ordered keyspace the MVCC layer already manages.
package sqlengine

import (
	"govetachun/kvsql/internal/dberrors"
	"govetachun/kvsql/internal/encoding"
	"govetachun/kvsql/internal/mvcc"
	"govetachun/kvsql/internal/sqltypes"
)

// Engine is the KV-backed SQL engine: a thin wrapper that starts MVCC
// transactions and hands back a Transaction with table/row operations
// layered on top.
type Engine struct {
	mvcc *mvcc.Mvcc
}

// New wraps an MVCC instance as a SQL engine.
func New(m *mvcc.Mvcc) *Engine {
	return &Engine{mvcc: m}
}

// Begin starts a new SQL transaction, delegating version allocation and
// snapshotting to the MVCC layer.
func (e *Engine) Begin() (*Transaction, error) {
	txn, err := e.mvcc.Begin()
	if err != nil {
		return nil, err
	}
	return &Transaction{txn: txn}, nil
}

// Transaction is the SQL-facing transaction: table catalog and row
// operations built on top of an *mvcc.Transaction.
type Transaction struct {
	txn *mvcc.Transaction
}

// Commit delegates to the MVCC layer.
func (t *Transaction) Commit() error {
	return t.txn.Commit()
}

// Rollback delegates to the MVCC layer.
func (t *Transaction) Rollback() error {
	return t.txn.Rollback()
}

// CreateTable registers a new table. It fails Internal if a table with the
// same name already exists, or if the table has no columns.
func (t *Transaction) CreateTable(table sqltypes.Table) error {
	if len(table.Columns) == 0 {
		return dberrors.Internalf("table %q must have at least one column", table.Name)
	}
	if existing, err := t.GetTable(table.Name); err != nil {
		return err
	} else if existing != nil {
		return dberrors.Internalf("table %q already exists", table.Name)
	}
	key := encoding.EncodeTable(table.Name)
	if err := t.txn.Set(key, sqltypes.EncodeTable(table)); err != nil {
		return err
	}
	return nil
}

// GetTable looks up a table by name, returning nil if absent.
func (t *Transaction) GetTable(name string) (*sqltypes.Table, error) {
	val, ok, err := t.txn.Get(encoding.EncodeTable(name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	table, err := sqltypes.DecodeTable(val)
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// MustGetTable is GetTable but fails Internal if the table does not exist.
func (t *Transaction) MustGetTable(name string) (sqltypes.Table, error) {
	table, err := t.GetTable(name)
	if err != nil {
		return sqltypes.Table{}, err
	}
	if table == nil {
		return sqltypes.Table{}, dberrors.Internalf("table %q does not exist", name)
	}
	return *table, nil
}

// CreateRow validates row against the table's schema and writes it keyed by
// its primary key (row[0]).
func (t *Transaction) CreateRow(tableName string, row sqltypes.Row) error {
	table, err := t.MustGetTable(tableName)
	if err != nil {
		return err
	}
	if err := table.Validate(row); err != nil {
		return err
	}
	pk := sqltypes.EncodeValue(row[table.PrimaryKeyIndex()])
	key := encoding.EncodeRow(tableName, pk)
	return t.txn.Set(key, sqltypes.EncodeRow(row))
}

// ScanTable returns every row currently visible in table name, in no
// particular order beyond what the underlying scan yields.
func (t *Transaction) ScanTable(name string) ([]sqltypes.Row, error) {
	results, err := t.txn.ScanPrefix(encoding.EncodeRowPrefix(name))
	if err != nil {
		return nil, err
	}
	rows := make([]sqltypes.Row, 0, len(results))
	for _, r := range results {
		row, err := sqltypes.DecodeRow(r.Value)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
