package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoices table", "add_invoices_table"},
		{"Add-Receipt-Lines", "add_receipt_lines"},
		{"ADD__PO__HISTORY", "add_po_history"},
		{"  spaces  ", "spaces"},
		{"po#number!", "ponumber"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration is version 1", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "init schema", "Divisions, vendors and purchase orders")
		require.NoError(t, err)

		assert.Equal(t, uint(1), mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_init_schema.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_init_schema.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "-- init schema")
		assert.Contains(t, string(up), "Divisions, vendors and purchase orders")
		assert.Contains(t, string(up), "BEGIN;")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback of init schema")
	})

	t.Run("continues after the highest version", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "000001_init.up.sql", "000001_init.down.sql", "000007_add_invoices.up.sql")

		mf, err := CreateMigration(dir, "add-archive-flag", "")
		require.NoError(t, err)

		assert.Equal(t, uint(8), mf.Version)
		assert.Equal(t, "000008_add_archive_flag.up.sql", filepath.Base(mf.UpPath))
	})

	t.Run("creates a missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(dir, "init", "")
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects an unusable name", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("orders by version and pairs files", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir,
			"000002_add_invoices.up.sql",
			"000002_add_invoices.down.sql",
			"000010_add_history.up.sql",
			"000001_init_schema.up.sql",
			"000001_init_schema.down.sql",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 3)

		assert.Equal(t, "000001_init_schema", migrations[0].BaseName())
		assert.Equal(t, uint(2), migrations[1].Version)
		assert.Equal(t, uint(10), migrations[2].Version)
		assert.True(t, migrations[0].HasDown)
		assert.False(t, migrations[2].HasDown)
	})

	t.Run("ignores unrelated files and directories", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "000001_init.up.sql", "README.md", "notes.sql", "abc_init.up.sql", ".gitkeep")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000002_dir.up.sql"), 0o755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.Equal(t, "init", migrations[0].Name)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
