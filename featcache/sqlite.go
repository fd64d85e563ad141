package featcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	// SQLite driver using pure Go implementation
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is used when no cache path is configured.
const DefaultSQLitePath = "featurespace-cache.db"

// SQLite is a Store persisted in a SQLite database file.
type SQLite struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool

	selectStmt *sql.Stmt
	insertStmt *sql.Stmt
}

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = DefaultSQLitePath
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS feature_vectors (
			key TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLite) prepareStatements() error {
	var err error

	s.selectStmt, err = s.db.Prepare(`SELECT data FROM feature_vectors WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare select statement: %w", err)
	}

	s.insertStmt, err = s.db.Prepare(`
		INSERT OR REPLACE INTO feature_vectors (key, data, created_at)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	return nil
}

// Get returns the vector stored under key.
func (s *SQLite) Get(ctx context.Context, key string) (map[string]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, errors.New("cache is closed")
	}

	var data []byte
	err := s.selectStmt.QueryRowContext(ctx, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read feature vector: %w", err)
	}

	vector, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return vector, true, nil
}

// Put stores vector under key, replacing any previous entry.
func (s *SQLite) Put(ctx context.Context, key string, vector map[string]float64) error {
	data, err := encode(vector)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("cache is closed")
	}

	if _, err := s.insertStmt.ExecContext(ctx, key, data, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to write feature vector: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.selectStmt.Close()
	s.insertStmt.Close()
	return s.db.Close()
}
