// Package prefs is a small key-value preference store used for high scores and the
// last-used player name.
package prefs

import (
	"fmt"
	"strconv"
	"sync"
)

// Store holds string and integer values by key. Writes become durable on Save.
type Store interface {
	HasKey(key string) bool
	GetString(key, def string) string
	SetString(key, value string)
	GetInt(key string, def int) int
	SetInt(key string, value int)
	Save() error
	Close() error
}

// Open returns a store of the given kind. An empty kind means memory.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported prefs store: %s", kind)
	}
}

// values is the in-memory view shared by both backends.
type values struct {
	mu    sync.Mutex
	kv    map[string]string
	dirty map[string]struct{}
}

func (v *values) init() {
	v.kv = map[string]string{}
	v.dirty = map[string]struct{}{}
}

func (v *values) HasKey(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.kv[key]
	return ok
}

func (v *values) GetString(key, def string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.kv[key]; ok {
		return s
	}
	return def
}

func (v *values) SetString(key, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.kv[key] = value
	v.dirty[key] = struct{}{}
}

func (v *values) GetInt(key string, def int) int {
	s := v.GetString(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func (v *values) SetInt(key string, value int) { v.SetString(key, strconv.Itoa(value)) }

// pending returns the keys written since the last successful save with their values.
func (v *values) pending() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]string, len(v.dirty))
	for k := range v.dirty {
		out[k] = v.kv[k]
	}
	return out
}

// markSaved clears the dirty flag of keys whose value still equals what was written.
func (v *values) markSaved(written map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for k, val := range written {
		if v.kv[k] == val {
			delete(v.dirty, k)
		}
	}
}

// Memory keeps everything in process; Save is a no-op.
type Memory struct{ values }

func NewMemory() *Memory {
	m := &Memory{}
	m.init()
	return m
}

func (m *Memory) Save() error {
	m.markSaved(m.pending())
	return nil
}

func (m *Memory) Close() error { return nil }
