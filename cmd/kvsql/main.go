// Command kvsql is a small interactive-free demo that opens an in-memory
// engine, tags the run with a session id, and executes a fixed script of
// statements end to end: CREATE TABLE, INSERT, SELECT.
package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"govetachun/kvsql/internal/executor"
	"govetachun/kvsql/internal/kv"
	"govetachun/kvsql/internal/mvcc"
	"govetachun/kvsql/internal/session"
	"govetachun/kvsql/internal/sqlengine"
)

func main() {
	sessionID := uuid.New()
	log.Printf("starting kvsql session %s", sessionID)

	store := kv.NewMemoryEngine()
	engine := sqlengine.New(mvcc.New(store))
	sess := session.New(engine)

	script := []string{
		`create table t1 (a int, b text default 'vv', c integer default 100);`,
		`insert into t1 values(1, 'a', 1);`,
		`insert into t1 values(2, 'b');`,
		`insert into t1(c, a) values(200, 3);`,
		`select * from t1;`,
	}

	for _, stmt := range script {
		result, err := sess.Execute(stmt)
		if err != nil {
			log.Fatalf("session %s: executing %q: %v", sessionID, stmt, err)
		}
		printResult(stmt, result)
	}
}

func printResult(stmt string, rs executor.ResultSet) {
	fmt.Printf("> %s\n", stmt)
	switch rs.Kind {
	case executor.ResultCreateTable:
		fmt.Printf("  created table %s\n", rs.TableName)
	case executor.ResultInsert:
		fmt.Printf("  inserted %d row(s)\n", rs.Count)
	case executor.ResultScan:
		fmt.Printf("  columns: %v\n", rs.Columns)
		for _, row := range rs.Rows {
			fmt.Printf("  row: %v\n", row)
		}
	}
}
