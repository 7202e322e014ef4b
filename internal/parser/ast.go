// Package parser implements the lexer and recursive-descent parser for the
// three accepted statement shapes (§6): CREATE TABLE, INSERT, SELECT. The
// AST node layout mirrors the teacher's QLNode family (a value-plus-kind
// shape per statement) generalized to this grammar's constant-only
// expressions.
package parser

import "govetachun/kvsql/internal/sqltypes"

// ExprKind tags which field of an Expression is meaningful.
type ExprKind int

const (
	ExprNull ExprKind = iota
	ExprBoolean
	ExprInteger
	ExprFloat
	ExprString
)

// Expression is a constant expression: the current grammar supports no
// operators, column references, or function calls.
type Expression struct {
	Kind  ExprKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// ToValue lowers a constant Expression to a sqltypes.Value.
func (e Expression) ToValue() sqltypes.Value {
	switch e.Kind {
	case ExprBoolean:
		return sqltypes.NewBoolean(e.Bool)
	case ExprInteger:
		return sqltypes.NewInteger(e.Int)
	case ExprFloat:
		return sqltypes.NewFloat(e.Float)
	case ExprString:
		return sqltypes.NewString(e.Str)
	default:
		return sqltypes.Null
	}
}

// ColumnSpec is one column clause inside CREATE TABLE.
type ColumnSpec struct {
	Name     string
	DataType sqltypes.DataType
	Nullable *bool
	Default  *Expression
}

// CreateTableStatement is `CREATE TABLE name (col type [NULL|NOT
// NULL|DEFAULT expr], ...)`.
type CreateTableStatement struct {
	Name    string
	Columns []ColumnSpec
}

// InsertStatement is `INSERT INTO name [(col, ...)] VALUES (expr, ...), ...`.
// Columns is nil when the statement omitted the column list.
type InsertStatement struct {
	TableName string
	Columns   []string
	Values    [][]Expression
}

// SelectStatement is `SELECT * FROM name`.
type SelectStatement struct {
	TableName string
}

// Statement is the parsed form of exactly one of the three accepted shapes.
// Exactly one field is non-nil.
type Statement struct {
	CreateTable *CreateTableStatement
	Insert      *InsertStatement
	Select      *SelectStatement
}
