// Package cache is a pluggable SQL-backed store for compiled bytecode
// units, content-addressed by a hash of their literal table and opcode
// bytes. It is the same four-driver multi-backend pattern as the
// teacher's internal/database/db_manager.go, narrowed from general SQL
// scripting to one fixed schema: a compiled-once-reused-many-times cache
// the way V8's code cache or the JVM's AppCDS work.
package cache

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/google/uuid"

	"ecmavm/internal/bytecode"
)

// Store is a content-addressed cache of marshaled bytecode units backed
// by a SQL table. One Store owns one *sql.DB connection.
type Store struct {
	db     *sql.DB
	driver string

	hits   uint64
	misses uint64
	puts   uint64
}

// driverFor maps the same family of DSN prefixes db_manager.go accepts
// to the sql.DB driver name registered by each blank import above.
func driverFor(kind string) (string, error) {
	switch kind {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "mssql", "sqlserver":
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("cache: unsupported backend %q", kind)
	}
}

// Open connects to the backend named by kind (sqlite/postgres/mysql/
// mssql) at dsn and ensures the cache table exists.
func Open(kind, dsn string) (*Store, error) {
	driver, err := driverFor(kind)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", kind, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", kind, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Placeholders below use the `?` style throughout, matching
// db_manager.go's own simplification of not adapting bind-parameter
// syntax per backend (lib/pq wants $1, mssqldb wants @p1); fine for the
// sqlite-first embedded use this cache targets.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS bytecode_cache (
	id          TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL UNIQUE,
	unit_name   TEXT NOT NULL,
	byte_size   INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	blob        BLOB NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("cache: schema: %w", err)
	}
	return nil
}

// Lookup returns the compiled unit stored under hash, if present.
func (s *Store) Lookup(hash string) (*bytecode.CompiledCodeUnit, bool, error) {
	row := s.db.QueryRow(`SELECT blob FROM bytecode_cache WHERE content_hash = ?`, hash)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			atomic.AddUint64(&s.misses, 1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: lookup: %w", err)
	}
	unit, err := bytecode.Unmarshal(blob)
	if err != nil {
		return nil, false, fmt.Errorf("cache: corrupt entry %s: %w", hash, err)
	}
	atomic.AddUint64(&s.hits, 1)
	return unit, true, nil
}

// Store persists unit under hash, replacing any prior entry for the same
// hash (a recompile of identical source is a no-op content-wise).
func (s *Store) Store(hash string, unit *bytecode.CompiledCodeUnit) error {
	blob := bytecode.Marshal(unit)
	id := uuid.NewString()
	_, err := s.db.Exec(`
DELETE FROM bytecode_cache WHERE content_hash = ?`, hash)
	if err != nil {
		return fmt.Errorf("cache: evict stale entry: %w", err)
	}
	_, err = s.db.Exec(`
INSERT INTO bytecode_cache (id, content_hash, unit_name, byte_size, created_at, blob)
VALUES (?, ?, ?, ?, ?, ?)`,
		id, hash, unit.Name, len(blob), time.Now(), blob)
	if err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	atomic.AddUint64(&s.puts, 1)
	return nil
}

// Stats is the hit/miss/byte-total snapshot cmd/ecmavm's "cache stats"
// subcommand prints.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Puts      uint64
	Entries   int64
	TotalSize int64
}

func (s *Store) Stats() (Stats, error) {
	st := Stats{
		Hits:   atomic.LoadUint64(&s.hits),
		Misses: atomic.LoadUint64(&s.misses),
		Puts:   atomic.LoadUint64(&s.puts),
	}
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(byte_size), 0) FROM bytecode_cache`)
	if err := row.Scan(&st.Entries, &st.TotalSize); err != nil {
		return st, fmt.Errorf("cache: stats: %w", err)
	}
	return st, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// guarded is a tiny helper embedding the connection-registry pattern of
// db_manager.go for embedders that juggle more than one named cache
// (e.g. one per loaded script root).
type guarded struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// Registry names multiple open Stores, mirroring db_manager.go's
// multi-connection DBManager for hosts that want one cache per module
// root instead of one process-wide cache.
type Registry struct{ g guarded }

func NewRegistry() *Registry { return &Registry{g: guarded{stores: make(map[string]*Store)}} }

func (r *Registry) Add(name string, s *Store) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	if _, exists := r.g.stores[name]; exists {
		return fmt.Errorf("cache: registry entry %q already exists", name)
	}
	r.g.stores[name] = s
	return nil
}

func (r *Registry) Get(name string) (*Store, bool) {
	r.g.mu.RLock()
	defer r.g.mu.RUnlock()
	s, ok := r.g.stores[name]
	return s, ok
}

func (r *Registry) CloseAll() error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	var first error
	for _, s := range r.g.stores {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
