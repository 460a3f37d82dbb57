package reportstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the main persistence organism that composes:
// - SQLite connection with WAL mode (molecule)
// - Migration runner (molecule)
// - Async writer for non-blocking writes (molecule)
//
// This is an organism-level component that manages the report database
// lifecycle including initialization, migration, and graceful shutdown.
//
// Usage:
//
//	store, err := NewStore("/path/to/paperpitch.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Access underlying connection for the repository
//	conn := store.DB()
type Store struct {
	db             *sql.DB
	path           string
	migrationsPath string
	mu             sync.RWMutex
}

// StoreConfig holds configuration for the Store organism.
type StoreConfig struct {
	// Path is the database file path
	Path string
	// MigrationsPath is the path to migrations directory (file:// URL format)
	// Default: "file://reportstore/migrations"
	MigrationsPath string
	// ConnectionConfig allows customizing the SQLite connection
	ConnectionConfig *ConnectionConfig
}

// DefaultStoreConfig returns sensible defaults for the store.
func DefaultStoreConfig(path string) StoreConfig {
	return StoreConfig{
		Path:             path,
		MigrationsPath:   "file://reportstore/migrations",
		ConnectionConfig: nil, // Use defaults
	}
}

// NewStore creates a new Store instance with default configuration.
// It initializes the database connection with WAL mode and foreign keys
// enabled. Call Migrate to bring the schema up to date.
//
// The database file and its parent directories are created if they don't exist.
//
// Example:
//
//	store, err := NewStore("paperpitch.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
func NewStore(path string) (*Store, error) {
	return NewStoreWithConfig(DefaultStoreConfig(path))
}

// NewStoreWithConfig creates a new Store instance with custom configuration.
//
// Example:
//
//	config := StoreConfig{
//	    Path:           "/path/to/paperpitch.db",
//	    MigrationsPath: "file://custom/migrations",
//	}
//	store, err := NewStoreWithConfig(config)
func NewStoreWithConfig(config StoreConfig) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// Ensure parent directory exists
	dir := filepath.Dir(config.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// Determine connection config
	var connConfig ConnectionConfig
	if config.ConnectionConfig != nil {
		connConfig = *config.ConnectionConfig
	} else {
		connConfig = DefaultConnectionConfig(config.Path)
	}

	// Create SQLite connection with WAL mode and foreign keys
	conn, err := NewSQLiteConnection(connConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	// Set migrations path default if not provided
	migrationsPath := config.MigrationsPath
	if migrationsPath == "" {
		migrationsPath = "file://reportstore/migrations"
	}

	store := &Store{
		db:             conn,
		path:           config.Path,
		migrationsPath: migrationsPath,
	}

	return store, nil
}

// Migrate runs all pending database migrations.
// This method is safe to call multiple times; it will only apply
// migrations that haven't been applied yet.
//
// Migrations are sourced from the configured migrations path
// (default: file://reportstore/migrations).
//
// Note: This method creates a separate connection for migrations
// to avoid connection ownership issues with golang-migrate.
//
// Example:
//
//	if err := store.Migrate(); err != nil {
//	    log.Fatal("Migration failed:", err)
//	}
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// golang-migrate takes ownership of the connection it's given,
	// so we use the path-based function which manages its own connection
	if err := MigrateUpFromPath(s.path, s.migrationsPath); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// MigrateWithPath runs migrations from a specific path.
// Use this when migrations are located in a non-default location.
//
// Example:
//
//	if err := store.MigrateWithPath("file://custom/migrations"); err != nil {
//	    log.Fatal(err)
//	}
func (s *Store) MigrateWithPath(migrationsPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := MigrateUpFromPath(s.path, migrationsPath); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// DB returns the underlying sql.DB connection for use by the repository.
// The returned connection should not be closed directly; use Store.Close() instead.
//
// Example:
//
//	conn := store.DB()
//	rows, err := conn.Query("SELECT * FROM report_runs")
func (s *Store) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close gracefully closes the database connection.
// This should be called when the application shuts down.
//
// After Close is called, the Store instance should not be used.
//
// Example:
//
//	defer store.Close()
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	// Close the database connection
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// Ping verifies the database connection is alive.
// This is useful for health checks.
//
// Example:
//
//	if err := store.Ping(); err != nil {
//	    log.Warn("Database connection unhealthy")
//	}
func (s *Store) Ping() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return fmt.Errorf("database connection is closed")
	}

	return s.db.Ping()
}

// Exec executes a query without returning any rows.
// This is a convenience wrapper around sql.DB.Exec.
func (s *Store) Exec(query string, args ...interface{}) (sql.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("database connection is closed")
	}

	return s.db.Exec(query, args...)
}

// Query executes a query that returns rows.
// This is a convenience wrapper around sql.DB.Query.
func (s *Store) Query(query string, args ...interface{}) (*sql.Rows, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, fmt.Errorf("database connection is closed")
	}

	return s.db.Query(query, args...)
}

// QueryRow executes a query that returns at most one row.
// This is a convenience wrapper around sql.DB.QueryRow.
func (s *Store) QueryRow(query string, args ...interface{}) *sql.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Note: QueryRow never returns an error, it defers error to Scan
	return s.db.QueryRow(query, args...)
}
