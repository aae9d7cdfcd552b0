package stats

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store persists tracker snapshots to SQLite so usage survives restarts.
type Store struct {
	db *sql.DB
}

// OpenStore initializes the SQLite database at the given path.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recent_queries (
		position INTEGER PRIMARY KEY,
		query TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS popular_queries (
		query TEXT PRIMARY KEY,
		count INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Save replaces the persisted snapshot atomically.
func (s *Store) Save(snap Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM recent_queries`); err != nil {
		return fmt.Errorf("clear recent: %w", err)
	}
	for i, q := range snap.RecentQueries {
		if _, err := tx.Exec(`INSERT INTO recent_queries (position, query) VALUES (?, ?)`, i, q); err != nil {
			return fmt.Errorf("insert recent: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM popular_queries`); err != nil {
		return fmt.Errorf("clear popular: %w", err)
	}
	for q, n := range snap.PopularQueries {
		if _, err := tx.Exec(`INSERT INTO popular_queries (query, count) VALUES (?, ?)`, q, n); err != nil {
			return fmt.Errorf("insert popular: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES ('total_interactions', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		snap.TotalInteractions); err != nil {
		return fmt.Errorf("save total: %w", err)
	}

	return tx.Commit()
}

// Load reads the persisted snapshot. A fresh database yields a zero snapshot.
func (s *Store) Load() (Snapshot, error) {
	snap := Snapshot{PopularQueries: make(map[string]int)}

	rows, err := s.db.Query(`SELECT query FROM recent_queries ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("load recent: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return snap, fmt.Errorf("scan recent: %w", err)
		}
		snap.RecentQueries = append(snap.RecentQueries, q)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate recent: %w", err)
	}

	popRows, err := s.db.Query(`SELECT query, count FROM popular_queries`)
	if err != nil {
		return snap, fmt.Errorf("load popular: %w", err)
	}
	defer popRows.Close()
	for popRows.Next() {
		var q string
		var n int
		if err := popRows.Scan(&q, &n); err != nil {
			return snap, fmt.Errorf("scan popular: %w", err)
		}
		snap.PopularQueries[q] = n
	}
	if err := popRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate popular: %w", err)
	}

	err = s.db.QueryRow(`SELECT value FROM meta WHERE key = 'total_interactions'`).Scan(&snap.TotalInteractions)
	if err != nil && err != sql.ErrNoRows {
		return snap, fmt.Errorf("load total: %w", err)
	}

	return snap, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
