package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Migration files come in pairs named <version>_<name>.up.sql and
// <version>_<name>.down.sql, with a zero-padded sequence version.
const (
	upSuffix     = ".up.sql"
	downSuffix   = ".down.sql"
	versionWidth = 6
)

// ErrInvalidName is returned for a migration name without letters or digits
var ErrInvalidName = errors.New("migration name has no letters or digits")

var fileTemplate = template.Must(template.New("migration").Parse(
	`-- {{.Version}} {{.Name}}{{if .Down}} (rollback){{end}}
-- Created: {{.Created}}
{{- with .Description}}
-- {{.}}
{{- end}}
{{if .Down}}
-- Revert the up migration, last statement first.
{{else}}
-- Sales tables are large; add indexes CONCURRENTLY in a migration of their own.
{{end}}`))

// MigrationFile is a newly written up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Created     time.Time
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair into dir, numbered one past
// the highest version present. Existing files are never overwritten.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	version, err := nextVersion(dir)
	if err != nil {
		return nil, err
	}

	base := filepath.Join(dir, version+"_"+slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Created:     time.Now().UTC(),
		UpPath:      base + upSuffix,
		DownPath:    base + downSuffix,
	}
	if err := mf.write(mf.UpPath, false); err != nil {
		return nil, err
	}
	if err := mf.write(mf.DownPath, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func (mf *MigrationFile) write(path string, down bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	err = fileTemplate.Execute(f, map[string]any{
		"Version":     mf.Version,
		"Name":        mf.Name,
		"Description": mf.Description,
		"Created":     mf.Created.Format(time.RFC3339),
		"Down":        down,
	})
	return errors.Join(err, f.Close())
}

// sanitizeName lower-cases name and joins its runs of ASCII letters and
// digits with underscores
func sanitizeName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	return strings.Join(words, "_")
}

func nextVersion(dir string) (string, error) {
	latest, err := LatestVersion(os.DirFS(dir))
	if errors.Is(err, fs.ErrNotExist) {
		latest, err = 0, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", versionWidth, latest+1), nil
}

// versionOf parses the numeric prefix of a migration base name
func versionOf(name string) (uint, error) {
	prefix, _, _ := strings.Cut(name, "_")
	v, err := strconv.ParseUint(prefix, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("migration %q has no numeric version", name)
	}
	return uint(v), nil
}

// ListMigrations returns the sorted base names of the migrations in dir; a
// missing directory holds none
func ListMigrations(dir string) ([]string, error) {
	names, err := ListMigrationsFS(os.DirFS(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	return names, err
}

// ListMigrationsFS returns the sorted base names of the up migrations at the
// root of fsys
func ListMigrationsFS(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	names := make([]string, 0, len(entries)/2)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(e.Name(), upSuffix); ok && base != "" {
			names = append(names, base)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}
