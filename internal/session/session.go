// Package session wraps one SQL statement in one MVCC transaction: parse,
// plan, begin, run, then commit on success or roll back on error (§4.5).
package session

import (
	"govetachun/kvsql/internal/executor"
	"govetachun/kvsql/internal/parser"
	"govetachun/kvsql/internal/planner"
	"govetachun/kvsql/internal/sqlengine"
)

// Session binds one sqlengine.Engine to repeated single-statement
// executions. It holds no transaction state between calls to Execute.
type Session struct {
	engine *sqlengine.Engine
}

// New opens a Session bound to engine. This is the Go realization of the
// design's `Engine.session()` operation.
func New(engine *sqlengine.Engine) *Session {
	return &Session{engine: engine}
}

// Execute parses sql, plans it, and runs it inside its own MVCC
// transaction. On success the transaction is committed and the ResultSet
// returned; on any error the transaction is rolled back and the error
// returned. A failure of commit or rollback itself is returned unchanged.
func (s *Session) Execute(sql string) (executor.ResultSet, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return executor.ResultSet{}, err
	}

	node, err := planner.Build(stmt)
	if err != nil {
		return executor.ResultSet{}, err
	}

	txn, err := s.engine.Begin()
	if err != nil {
		return executor.ResultSet{}, err
	}

	result, err := executor.Run(node, txn)
	if err != nil {
		if rbErr := txn.Rollback(); rbErr != nil {
			return executor.ResultSet{}, rbErr
		}
		return executor.ResultSet{}, err
	}

	if err := txn.Commit(); err != nil {
		return executor.ResultSet{}, err
	}
	return result, nil
}
