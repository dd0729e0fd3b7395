package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/fieldsales/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add upload audit", "add_upload_audit"},
		{"Index-Sale-Date", "index_sale_date"},
		{"ADD_MODEL__PRICE_BAND", "add_model_price_band"},
		{"targets v2", "targets_v2"},
		{"   spaces   ", "spaces"},
		{"drop sales.tmp!", "drop_sales_tmp"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add upload audit", "Track who uploaded each sales file")
	require.NoError(t, err)

	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, "000001_add_upload_audit.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, "000001_add_upload_audit.down.sql", filepath.Base(mf.DownPath))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- 000001 add upload audit\n")
	assert.Contains(t, string(up), "-- Track who uploaded each sales file")
	assert.NotContains(t, string(up), "rollback")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "-- 000001 add upload audit (rollback)")
}

func TestCreateMigration_NextSequence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_create_sales_tables.up.sql"), []byte("-- up"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_add_index.up.sql"), []byte("-- up"), 0o644))

	mf, err := CreateMigration(dir, "add upload audit", "")
	require.NoError(t, err)
	assert.Equal(t, "000008", mf.Version)

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_sales_tables", "000007_add_index", "000008_add_upload_audit"}, names)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db", "migrations")

	_, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_InvalidName(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "???", "")
	assert.ErrorIs(t, err, ErrInvalidName)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateMigration_KeepsExistingDownFile(t *testing.T) {
	dir := t.TempDir()
	stray := filepath.Join(dir, "000001_add_index.down.sql")
	require.NoError(t, os.WriteFile(stray, []byte("DROP INDEX idx_sales_records_date;"), 0o644))

	_, err := CreateMigration(dir, "add index", "")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "000001_add_index.up.sql"))
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
	kept, err := os.ReadFile(stray)
	require.NoError(t, err)
	assert.Equal(t, "DROP INDEX idx_sales_records_date;", string(kept))
}

func TestListMigrationsFS_Embedded(t *testing.T) {
	names, err := ListMigrationsFS(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "000001_create_sales_tables", names[0])

	up, err := fs.ReadFile(migrations.FS, names[0]+".up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "uq_sales_records_identity_hash")
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000002_add_targets.up.sql",
		"000002_add_targets.down.sql",
		"000001_create_sales_tables.up.sql",
		"000001_create_sales_tables.down.sql",
		"README.md",
		".gitkeep",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("--"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0o755))

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_sales_tables", "000002_add_targets"}, names)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, names)
}
