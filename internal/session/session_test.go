package session

import (
	"testing"

	"govetachun/kvsql/internal/dberrors"
	"govetachun/kvsql/internal/executor"
	"govetachun/kvsql/internal/kv"
	"govetachun/kvsql/internal/mvcc"
	"govetachun/kvsql/internal/sqlengine"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	return New(sqlengine.New(mvcc.New(kv.NewMemoryEngine())))
}

func TestExecuteCreateInsertSelect(t *testing.T) {
	s := newSession(t)

	if _, err := s.Execute(`create table t1 (a int, b text default 'vv');`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	rs, err := s.Execute(`insert into t1 values(1, 'x');`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if rs.Kind != executor.ResultInsert || rs.Count != 1 {
		t.Fatalf("unexpected insert result: %+v", rs)
	}

	rs, err = s.Execute(`select * from t1;`)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rs.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rs.Rows))
	}
}

func TestExecuteRollsBackOnError(t *testing.T) {
	s := newSession(t)
	if _, err := s.Execute(`create table t (a int not null);`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	// This insert fails validation (wrong datatype) after the transaction
	// has begun; the session must roll it back rather than leave it
	// dangling as an active, uncommitted transaction.
	if _, err := s.Execute(`insert into t values('wrong type');`); err == nil {
		t.Fatalf("expected insert to fail")
	}

	rs, err := s.Execute(`select * from t;`)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rs.Rows) != 0 {
		t.Fatalf("expected no rows after rolled-back insert, got %d", len(rs.Rows))
	}
}

func TestExecuteParseErrorSurfacesUnchanged(t *testing.T) {
	s := newSession(t)
	_, err := s.Execute(`not valid sql`)
	if !dberrors.IsKind(err, dberrors.KindParse) {
		t.Fatalf("expected Parse error, got %v", err)
	}
}

func TestExecuteDuplicateTableFails(t *testing.T) {
	s := newSession(t)
	if _, err := s.Execute(`create table t (a int);`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	_, err := s.Execute(`create table t (a int);`)
	if !dberrors.IsKind(err, dberrors.KindInternal) {
		t.Fatalf("expected Internal error on duplicate table, got %v", err)
	}
}
