// Package storage persists usage journal events, report feedback, and
// assessment results in a local SQLite database.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for the usage journal,
// feedback, and assessment results.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "futureproof.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Usage journal ---

// RecordUsage appends one journal event. It satisfies the inference Journal
// interface, so it must never block a generation path on a storage error:
// failures are logged and dropped.
func (s *Store) RecordUsage(ts time.Time, model, outcome string) {
	_, err := s.db.Exec(`INSERT INTO usage_events (created_at, model, outcome) VALUES (?, ?, ?)`,
		ts.UTC().Format(time.RFC3339), model, outcome)
	if err != nil {
		slog.Warn("recording usage event failed", "model", model, "error", err)
	}
}

// UsageSummaries aggregates the journal per model and outcome.
func (s *Store) UsageSummaries() ([]UsageSummary, error) {
	rows, err := s.db.Query(`
		SELECT model, outcome, COUNT(*) FROM usage_events
		GROUP BY model, outcome ORDER BY model, outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []UsageSummary
	for rows.Next() {
		var u UsageSummary
		if err := rows.Scan(&u.Model, &u.Outcome, &u.Count); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// RecentUsage returns the newest journal events, newest first.
func (s *Store) RecentUsage(limit int) ([]UsageEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, model, outcome FROM usage_events
		ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []UsageEvent
	for rows.Next() {
		var e UsageEvent
		var createdAt string
		if err := rows.Scan(&e.ID, &createdAt, &e.Model, &e.Outcome); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		e.CreatedAt = t
		results = append(results, e)
	}
	return results, rows.Err()
}

// --- Feedback ---

func (s *Store) SaveFeedback(f Feedback) error {
	_, err := s.db.Exec(`
		INSERT INTO feedback (id, created_at, name, rating, education, skills, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.CreatedAt.UTC().Format(time.RFC3339), f.Name, f.Rating, f.Education, f.Skills, f.Comment,
	)
	return err
}

func (s *Store) GetFeedback(id string) (Feedback, error) {
	var f Feedback
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, created_at, name, rating, education, skills, comment
		FROM feedback WHERE id = ?`, id,
	).Scan(&f.ID, &createdAt, &f.Name, &f.Rating, &f.Education, &f.Skills, &f.Comment)
	if err == sql.ErrNoRows {
		return Feedback{}, ErrNotFound
	}
	if err != nil {
		return Feedback{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Feedback{}, fmt.Errorf("parsing created_at: %w", err)
	}
	f.CreatedAt = t
	return f, nil
}

// --- Assessment results ---

func (s *Store) SaveAssessmentResult(r AssessmentResult) error {
	_, err := s.db.Exec(`
		INSERT INTO assessment_results (id, created_at, name, skills, difficulty, correct, total, percentage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.Name, r.Skills, r.Difficulty,
		r.Correct, r.Total, r.Percentage,
	)
	return err
}

func (s *Store) GetAssessmentResult(id string) (AssessmentResult, error) {
	var r AssessmentResult
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, created_at, name, skills, difficulty, correct, total, percentage
		FROM assessment_results WHERE id = ?`, id,
	).Scan(&r.ID, &createdAt, &r.Name, &r.Skills, &r.Difficulty, &r.Correct, &r.Total, &r.Percentage)
	if err == sql.ErrNoRows {
		return AssessmentResult{}, ErrNotFound
	}
	if err != nil {
		return AssessmentResult{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return AssessmentResult{}, fmt.Errorf("parsing created_at: %w", err)
	}
	r.CreatedAt = t
	return r, nil
}

func (s *Store) RecentAssessmentResults(limit int) ([]AssessmentResult, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, name, skills, difficulty, correct, total, percentage
		FROM assessment_results ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []AssessmentResult
	for rows.Next() {
		var r AssessmentResult
		var createdAt string
		if err := rows.Scan(&r.ID, &createdAt, &r.Name, &r.Skills, &r.Difficulty, &r.Correct, &r.Total, &r.Percentage); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		r.CreatedAt = t
		results = append(results, r)
	}
	return results, rows.Err()
}
