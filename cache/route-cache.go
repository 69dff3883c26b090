// Package cache stores per-route preload warm-up state.
package cache

import (
	"database/sql"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

// Phase is the warm-up phase of a route.
// It only ever advances for a given route within a process lifetime.
type Phase uint8

const (
	// PhaseOff means no preload header is known for the route.
	PhaseOff Phase = iota
	// PhaseLate means the header is known but attached only after the
	// response has been generated.
	PhaseLate
	// PhaseEarly means the header is flushed before generation begins.
	PhaseEarly
)

func (p Phase) String() string {
	switch p {
	case PhaseLate:
		return "late"
	case PhaseEarly:
		return "early"
	default:
		return "off"
	}
}

// Entry is the cached warm-up state for one route key.
type Entry struct {
	// Header is the complete preload header value computed from the
	// resources the route referenced on a previous request.
	Header string
	Phase  Phase
}

// Provider is a store for route cache entries.
//
// Implementations must be safe for concurrent use. Get must not block
// on a concurrent Put; a Get racing a Put for the same key may observe
// either entry. Concurrent Puts for the same key resolve to one of the
// written entries (last writer wins).
type Provider interface {
	// Get returns the entry for the given route key, if any.
	Get(key string) (Entry, bool)
	// Put atomically replaces the entry for the given route key.
	Put(key string, entry Entry) error
	// Purge removes the entry for the given key.
	// It is a utility method for callers imposing their own eviction;
	// the middleware never evicts.
	Purge(key string)
	// Keys calls the given callback for each stored route key.
	Keys(cb func(string))
}

// MemoryCache is the default Provider. State lives in process memory
// only and resets on restart, so every route starts its warm-up over.
type MemoryCache struct {
	m sync.Map
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(key string) (Entry, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

func (c *MemoryCache) Put(key string, entry Entry) error {
	c.m.Store(key, entry)
	return nil
}

func (c *MemoryCache) Purge(key string) {
	c.m.Delete(key)
}

func (c *MemoryCache) Keys(cb func(string)) {
	c.m.Range(func(k, _ any) bool {
		cb(k.(string))
		return true
	})
}

// SQLiteCache persists warm-up state across restarts, so warmed routes
// go early on the first request of a new process. Use only when that
// trade-off is wanted; the in-memory provider is the default.
type SQLiteCache struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteCache creates a new cache with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteCache(filename string) SQLiteCache {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS routes (
		key TEXT PRIMARY KEY,
		phase INTEGER,
		header TEXT
	)`)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		panic(err)
	}
	return SQLiteCache{
		db:         db,
		writeMutex: &sync.Mutex{},
	}
}

func (s SQLiteCache) Get(key string) (Entry, bool) {
	var entry Entry
	var phase int
	err := s.db.QueryRow("SELECT phase, header FROM routes WHERE key = ?", key).
		Scan(&phase, &entry.Header)
	if err != nil {
		return Entry{}, false
	}
	entry.Phase = Phase(phase)
	return entry, true
}

func (s SQLiteCache) Put(key string, entry Entry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("INSERT OR REPLACE INTO routes (key, phase, header) VALUES (?, ?, ?)",
		key, int(entry.Phase), entry.Header)
	return err
}

func (s SQLiteCache) Purge(key string) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	s.db.Exec("DELETE FROM routes WHERE key = ?", key)
}

func (s SQLiteCache) Keys(cb func(string)) {
	rows, err := s.db.Query("SELECT key FROM routes")
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return
		}
		cb(key)
	}
}
