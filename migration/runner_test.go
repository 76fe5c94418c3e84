package migration_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/posware/kernel/migration"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "store.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, db.Ping()) // sql.Open is lazy; Ping creates the file
	require.NoError(t, db.Close())
	return path
}

func twoScripts() []migration.Script {
	return []migration.Script{
		{Version: 1, Name: "001_create_products", SQL: `CREATE TABLE products (sku TEXT PRIMARY KEY, name TEXT, description TEXT, category_id TEXT, base_price INTEGER, is_active INTEGER)`},
		{Version: 2, Name: "002_create_modification_groups", SQL: `CREATE TABLE modification_groups (code TEXT PRIMARY KEY, name TEXT, selection_type TEXT, is_required INTEGER)`},
	}
}

// Property 7: migration idempotence.
func TestRunner_IdempotentOnRerun(t *testing.T) {
	path := newTestDB(t)
	r := migration.New(path)
	info := migration.Info{StoreName: "test-store", TargetVersion: 2, Scripts: twoScripts()}

	require.NoError(t, r.Run(context.Background(), info))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var countAfterFirst int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&countAfterFirst))
	require.Equal(t, 2, countAfterFirst)

	// Re-running must make no further changes.
	require.NoError(t, r.Run(context.Background(), info))

	var countAfterSecond int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&countAfterSecond))
	require.Equal(t, countAfterFirst, countAfterSecond)
}

// Property 8: migration tamper detection.
func TestRunner_DetectsTamperedScript(t *testing.T) {
	path := newTestDB(t)
	r := migration.New(path)
	original := twoScripts()
	require.NoError(t, r.Run(context.Background(), migration.Info{StoreName: "test-store", TargetVersion: 2, Scripts: original}))

	tampered := twoScripts()
	tampered[0].SQL = `CREATE TABLE products_renamed (sku TEXT PRIMARY KEY)`

	err := r.Run(context.Background(), migration.Info{StoreName: "test-store", TargetVersion: 2, Scripts: tampered})
	require.Error(t, err)
	require.Contains(t, err.Error(), "potential tampering")
}

func TestRunner_FailsOnVersionGap(t *testing.T) {
	path := newTestDB(t)
	r := migration.New(path)

	scripts := []migration.Script{
		{Version: 1, Name: "001_init", SQL: `CREATE TABLE a (x INTEGER)`},
		{Version: 3, Name: "003_skip_two", SQL: `CREATE TABLE b (x INTEGER)`},
	}

	err := r.Run(context.Background(), migration.Info{StoreName: "test-store", TargetVersion: 3, Scripts: scripts})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not contiguous")
}

func TestRunner_FailsWhenDatabaseFileAbsent(t *testing.T) {
	r := migration.New(filepath.Join(t.TempDir(), "does-not-exist.db"))
	err := r.Run(context.Background(), migration.Info{StoreName: "test-store", TargetVersion: 1, Scripts: twoScripts()[:1]})
	require.Error(t, err)
	require.Contains(t, err.Error(), "absent")
}

func TestRunner_FailsWhenAppliedVersionExceedsCode(t *testing.T) {
	path := newTestDB(t)
	r := migration.New(path)
	require.NoError(t, r.Run(context.Background(), migration.Info{StoreName: "test-store", TargetVersion: 2, Scripts: twoScripts()}))

	err := r.Run(context.Background(), migration.Info{StoreName: "test-store", TargetVersion: 1, Scripts: twoScripts()[:1]})
	require.Error(t, err)
	require.Contains(t, err.Error(), "outdated")
}

func TestRunner_CreatesBackupBeforeApplying(t *testing.T) {
	path := newTestDB(t)
	r := migration.New(path)
	require.NoError(t, r.Run(context.Background(), migration.Info{StoreName: "test-store", TargetVersion: 1, Scripts: twoScripts()[:1]}))

	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var foundBackup bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".bak" {
			foundBackup = true
		}
	}
	require.True(t, foundBackup)
}
