package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver.
	_ "github.com/lib/pq"              // PostgreSQL driver.
	_ "modernc.org/sqlite"             // SQLite driver.
)

// Dialect hides driver-specific SQL.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(opts Options) string
	RewriteQuery(query string) string
	Schema() []string
	UpsertProfileQuery() string
	Configure(db *sql.DB) error
}

// DialectFor resolves a driver name from configuration.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

const resultsIndex = `CREATE INDEX IF NOT EXISTS idx_results_user_submitted ON results(user_id, submitted_at);`

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) DSN(opts Options) string {
	return opts.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (sqliteDialect) RewriteQuery(query string) string { return query }

func (sqliteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			personal_bests TEXT NOT NULL,
			lb_personal_bests TEXT,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			mode2 TEXT NOT NULL,
			wpm REAL,
			payload TEXT NOT NULL,
			is_pb INTEGER NOT NULL,
			submitted_at TEXT NOT NULL
		);`,
		resultsIndex,
	}
}

func (sqliteDialect) UpsertProfileQuery() string {
	return `INSERT INTO profiles (user_id, personal_bests, lb_personal_bests, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			personal_bests = excluded.personal_bests,
			lb_personal_bests = COALESCE(excluded.lb_personal_bests, profiles.lb_personal_bests),
			updated_at = excluded.updated_at`
}

// Configure limits SQLite to one connection; writers would otherwise race
// for the file lock.
func (sqliteDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	return nil
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }
func (postgresDialect) DSN(opts Options) string {
	return opts.URL
}

func (postgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (postgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			personal_bests TEXT NOT NULL,
			lb_personal_bests TEXT,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			mode2 TEXT NOT NULL,
			wpm DOUBLE PRECISION,
			payload TEXT NOT NULL,
			is_pb INTEGER NOT NULL,
			submitted_at TEXT NOT NULL
		);`,
		resultsIndex,
	}
}

func (postgresDialect) UpsertProfileQuery() string {
	return sqliteDialect{}.UpsertProfileQuery()
}

func (postgresDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
	return nil
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }
func (mysqlDialect) DSN(opts Options) string {
	return opts.URL
}

func (mysqlDialect) RewriteQuery(query string) string { return query }

func (mysqlDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id VARCHAR(128) PRIMARY KEY,
			personal_bests LONGTEXT NOT NULL,
			lb_personal_bests LONGTEXT,
			updated_at VARCHAR(40) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			mode VARCHAR(32) NOT NULL,
			mode2 VARCHAR(32) NOT NULL,
			wpm DOUBLE,
			payload TEXT NOT NULL,
			is_pb INTEGER NOT NULL,
			submitted_at VARCHAR(40) NOT NULL,
			INDEX idx_results_user_submitted (user_id, submitted_at)
		);`,
	}
}

func (mysqlDialect) UpsertProfileQuery() string {
	return `INSERT INTO profiles (user_id, personal_bests, lb_personal_bests, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			personal_bests = VALUES(personal_bests),
			lb_personal_bests = COALESCE(VALUES(lb_personal_bests), lb_personal_bests),
			updated_at = VALUES(updated_at)`
}

func (mysqlDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
	return nil
}
