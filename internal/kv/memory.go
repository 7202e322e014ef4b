package kv

import (
	"bytes"
	"sort"
	"sync"
)

// memoryEngine is the reference in-memory KV backend: entries held in a
// single key-sorted slice behind a mutex. The keyspace this module builds
// (§3.2/§3.3) only ever needs point get/set/delete and ordered range/prefix
// scans over an opaque byte-key store — nothing here depends on how that
// ordering is physically maintained, so a sorted slice with binary search
// is the simplest structure that satisfies the Engine contract.
type memoryEngine struct {
	mu      sync.Mutex
	entries []Pair // kept sorted by Key, ascending
}

// NewMemoryEngine constructs an empty ordered KV store.
func NewMemoryEngine() Engine {
	return &memoryEngine{}
}

// indexOf returns the position of key in entries, and whether it is
// present there. When absent, the position is where key would be inserted
// to keep entries sorted.
func (e *memoryEngine) indexOf(key []byte) (int, bool) {
	i := sort.Search(len(e.entries), func(i int) bool {
		return bytes.Compare(e.entries[i].Key, key) >= 0
	})
	return i, i < len(e.entries) && bytes.Equal(e.entries[i].Key, key)
}

func (e *memoryEngine) Get(key []byte) ([]byte, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.indexOf(key)
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(e.entries[i].Value), true, nil
}

func (e *memoryEngine) Set(key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry := Pair{Key: cloneBytes(key), Value: cloneBytes(value)}
	i, ok := e.indexOf(key)
	if ok {
		e.entries[i] = entry
		return nil
	}
	e.entries = append(e.entries, Pair{})
	copy(e.entries[i+1:], e.entries[i:])
	e.entries[i] = entry
	return nil
}

func (e *memoryEngine) Delete(key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.indexOf(key)
	if !ok {
		return nil
	}
	e.entries = append(e.entries[:i], e.entries[i+1:]...)
	return nil
}

// Scan returns every pair with lo <= key <= hi, in ascending key order. A
// nil hi means no upper bound. The result is a fresh slice of cloned pairs
// so callers may hold it past any future mutation of the engine.
func (e *memoryEngine) Scan(lo, hi []byte) ([]Pair, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	start, _ := e.indexOf(lo)
	var out []Pair
	for _, p := range e.entries[start:] {
		if hi != nil && bytes.Compare(p.Key, hi) > 0 {
			break
		}
		out = append(out, Pair{Key: cloneBytes(p.Key), Value: cloneBytes(p.Value)})
	}
	return out, nil
}

// ScanReverse is Scan in descending key order. The engine is a toy
// in-memory backend, so the simplest correct implementation reuses the
// forward walk rather than re-deriving it.
func (e *memoryEngine) ScanReverse(lo, hi []byte) ([]Pair, error) {
	pairs, err := e.Scan(lo, hi)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(pairs)-1; i < j; i, j = i+1, j-1 {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	}
	return pairs, nil
}

func (e *memoryEngine) ScanPrefix(prefix []byte) ([]Pair, error) {
	return e.Scan(prefix, PrefixUpperBound(prefix))
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
