package kv

import (
	"fmt"
	"testing"
)

func TestMemoryEngineGetSetDelete(t *testing.T) {
	e := NewMemoryEngine()

	if _, ok, err := e.Get([]byte("a")); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := e.Set([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := e.Get([]byte("a"))
	if err != nil || !ok || string(val) != "1" {
		t.Fatalf("Get after Set = %q, %v, %v", val, ok, err)
	}

	if err := e.Set([]byte("a"), []byte("2")); err != nil {
		t.Fatalf("overwrite Set: %v", err)
	}
	if val, _, _ := e.Get([]byte("a")); string(val) != "2" {
		t.Fatalf("expected overwritten value, got %q", val)
	}

	if err := e.Delete([]byte("a")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := e.Get([]byte("a")); ok {
		t.Fatalf("expected key gone after delete")
	}
}

func TestMemoryEngineScanOrdering(t *testing.T) {
	e := NewMemoryEngine()
	keys := []string{"b", "d", "a", "c", "e"}
	for _, k := range keys {
		if err := e.Set([]byte(k), []byte(k+"!")); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	pairs, err := e.Scan([]byte("b"), []byte("d"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"b", "c", "d"}
	if len(pairs) != len(want) {
		t.Fatalf("Scan returned %d pairs, want %d (%v)", len(pairs), len(want), pairs)
	}
	for i, p := range pairs {
		if string(p.Key) != want[i] {
			t.Fatalf("pairs[%d].Key = %q, want %q", i, p.Key, want[i])
		}
		if string(p.Value) != want[i]+"!" {
			t.Fatalf("pairs[%d].Value = %q", i, p.Value)
		}
	}

	rev, err := e.ScanReverse([]byte("b"), []byte("d"))
	if err != nil {
		t.Fatalf("ScanReverse: %v", err)
	}
	for i, p := range rev {
		if string(p.Key) != want[len(want)-1-i] {
			t.Fatalf("ScanReverse[%d] = %q", i, p.Key)
		}
	}
}

func TestMemoryEngineScanPrefix(t *testing.T) {
	e := NewMemoryEngine()
	for _, k := range []string{"row/1", "row/2", "row/3", "table/x"} {
		if err := e.Set([]byte(k), []byte("v")); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	pairs, err := e.ScanPrefix([]byte("row/"))
	if err != nil {
		t.Fatalf("ScanPrefix: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("ScanPrefix returned %d pairs, want 3: %v", len(pairs), pairs)
	}
	for _, p := range pairs {
		if len(p.Key) < 4 || string(p.Key[:4]) != "row/" {
			t.Fatalf("unexpected key in prefix scan: %q", p.Key)
		}
	}
}

func TestMemoryEngineManyKeys(t *testing.T) {
	e := NewMemoryEngine()
	const n = 500
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("key-%05d", i)
		if err := e.Set([]byte(k), []byte(k)); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	pairs, err := e.Scan([]byte("key-00000"), []byte("key-00499"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(pairs) != n {
		t.Fatalf("got %d pairs, want %d", len(pairs), n)
	}
	for i, p := range pairs {
		want := fmt.Sprintf("key-%05d", i)
		if string(p.Key) != want {
			t.Fatalf("pairs[%d] = %q, want %q", i, p.Key, want)
		}
	}
}
