/*
runner.go - Schema Migration Runner

PURPOSE:
  Brings a per-store SQLite database to its required schema version using
  an ordered, checksummed script list (spec.md §4.5). Fails fast on any
  gap, checksum mismatch, or unknown applied version; never silently
  skips a script; backs up the database file before applying the first
  pending script.

GROUNDED ON:
  store/sqlite/sqlite.go's migrate() ensures-table-then-applies shape and
  its db.Begin()/tx.Commit()/tx.Rollback() transaction handling -
  generalized here from the teacher's degenerate single-version
  CREATE-TABLE-IF-NOT-EXISTS case to a real ordered, checksummed,
  versioned script list (no example in the retrieved pack implements a
  checksummed migration runner; this package is new work in the teacher's
  idiom, not an adaptation of a specific teacher function).
*/
package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Script is one migration unit: a monotonic version, a name, and its SQL
// body. ChecksumOverride lets a caller pin an expected checksum (useful
// for tests asserting tamper detection) instead of trusting the
// recomputed SHA-256 of SQL.
type Script struct {
	Version          int
	Name             string
	SQL              string
	ChecksumOverride string
}

func (s Script) checksum() string {
	if s.ChecksumOverride != "" {
		return s.ChecksumOverride
	}
	sum := sha256.Sum256([]byte(s.SQL))
	return hex.EncodeToString(sum[:])
}

// Info is the migration-info contract a caller supplies: which store,
// what version it should end up at, and the ordered script list. Run
// reads only Scripts: it applies every pending script in the list, and
// neither StoreName nor TargetVersion is consulted.
type Info struct {
	StoreName     string
	TargetVersion int
	Scripts       []Script
}

// Runner applies a migration Info against one SQLite database file.
type Runner struct {
	DBPath string
}

// New returns a Runner bound to dbPath.
func New(dbPath string) *Runner {
	return &Runner{DBPath: dbPath}
}

const createSchemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version      INTEGER PRIMARY KEY,
	script_name  TEXT NOT NULL,
	applied_utc  TEXT NOT NULL,
	checksum     TEXT NOT NULL
)`

type appliedRow struct {
	version    int
	scriptName string
	checksum   string
}

// Run executes spec.md §4.5's 6-step algorithm.
func (r *Runner) Run(ctx context.Context, info Info) error {
	// Step 1: fail if the database file is absent.
	if _, err := os.Stat(r.DBPath); err != nil {
		return &SchemaIntegrityViolationError{Reason: fmt.Sprintf("database file %q is absent: %v", r.DBPath, err)}
	}

	db, err := sql.Open("sqlite3", r.DBPath+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("migration: open %q: %w", r.DBPath, err)
	}
	defer db.Close()

	// Step 2: ensure schema_version exists (also the legacy adoption path).
	if _, err := db.ExecContext(ctx, createSchemaVersionTable); err != nil {
		return fmt.Errorf("migration: ensure schema_version table: %w", err)
	}

	scripts := append([]Script(nil), info.Scripts...)
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Version < scripts[j].Version })

	if err := validateContiguity(scripts); err != nil {
		return err
	}

	applied, err := loadApplied(ctx, db)
	if err != nil {
		return err
	}

	highestCodeVersion := 0
	if len(scripts) > 0 {
		highestCodeVersion = scripts[len(scripts)-1].Version
	}
	byVersion := make(map[int]Script, len(scripts))
	for _, s := range scripts {
		byVersion[s.Version] = s
	}

	for _, a := range applied {
		// Step 3: applied versions higher than the highest code version
		// fail ("extension outdated").
		if a.version > highestCodeVersion {
			return &SchemaIntegrityViolationError{Reason: fmt.Sprintf("applied version %d exceeds highest known version %d: extension outdated", a.version, highestCodeVersion)}
		}
		script, ok := byVersion[a.version]
		if !ok {
			return &SchemaIntegrityViolationError{Reason: fmt.Sprintf("applied version %d has no corresponding script in code", a.version)}
		}
		if script.checksum() != a.checksum {
			return &SchemaIntegrityViolationError{Reason: fmt.Sprintf("checksum mismatch for version %d (%s): potential tampering", a.version, script.Name)}
		}
	}

	appliedVersions := make(map[int]bool, len(applied))
	for _, a := range applied {
		appliedVersions[a.version] = true
	}

	var pending []Script
	for _, s := range scripts {
		if !appliedVersions[s.Version] {
			pending = append(pending, s)
		}
	}

	// Step 4: if no pending scripts, return (idempotent).
	if len(pending) == 0 {
		return nil
	}

	// Step 5: backup before applying the first pending script.
	if err := backupFile(r.DBPath); err != nil {
		return fmt.Errorf("migration: backup before migrating: %w", err)
	}

	// Step 6: apply each pending script in its own transaction.
	for _, s := range pending {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("migration: cancelled before version %d: %w", s.Version, err)
		}
		if err := applyScript(ctx, db, s); err != nil {
			return err
		}
	}
	return nil
}

func validateContiguity(scripts []Script) error {
	for i, s := range scripts {
		expected := i + 1
		if s.Version != expected {
			return &SchemaIntegrityViolationError{Reason: fmt.Sprintf("script list is not contiguous starting at 1: expected version %d, found %d (%s)", expected, s.Version, s.Name)}
		}
	}
	return nil
}

func loadApplied(ctx context.Context, db *sql.DB) ([]appliedRow, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, script_name, checksum FROM schema_version ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("migration: load applied rows: %w", err)
	}
	defer rows.Close()

	var out []appliedRow
	for rows.Next() {
		var a appliedRow
		if err := rows.Scan(&a.version, &a.scriptName, &a.checksum); err != nil {
			return nil, fmt.Errorf("migration: scan applied row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func applyScript(ctx context.Context, db *sql.DB, s Script) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration: begin transaction for version %d: %w", s.Version, err)
	}

	if _, err := tx.ExecContext(ctx, s.SQL); err != nil {
		tx.Rollback()
		return &SchemaIntegrityViolationError{Reason: fmt.Sprintf("script %q (version %d) failed: %v", s.Name, s.Version, err)}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, script_name, applied_utc, checksum) VALUES (?, ?, ?, ?)`,
		s.Version, s.Name, time.Now().UTC().Format(time.RFC3339), s.checksum(),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("migration: record version %d: %w", s.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration: commit version %d: %w", s.Version, err)
	}
	return nil
}

func backupFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().UTC().Format("20060102T150405"))
	dst, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
