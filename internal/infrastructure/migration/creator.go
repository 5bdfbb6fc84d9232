package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const upTemplate = `-- Migration: %s
-- Created: %s
-- Description: %s

-- Write your UP migration SQL here

`

const downTemplate = `-- Migration: %s (Rollback)
-- Created: %s
-- Description: Rollback for %s

-- Write your DOWN migration SQL here

`

// MigrationFile describes a generated up/down pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration scaffolds an up/down SQL pair named after the
// current timestamp, so lexical file order matches creation order.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")

	base := version + "_" + sanitizeName(name)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      filepath.Join(migrationsDir, base+".up.sql"),
		DownPath:    filepath.Join(migrationsDir, base+".down.sql"),
	}

	up := fmt.Sprintf(upTemplate, mf.Name, mf.Timestamp, mf.Description)
	if err := os.WriteFile(mf.UpPath, []byte(up), 0644); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}

	down := fmt.Sprintf(downTemplate, mf.Name, mf.Timestamp, mf.Description)
	if err := os.WriteFile(mf.DownPath, []byte(down), 0644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}

	return mf, nil
}

// sanitizeName lowercases a human name into a safe snake_case file
// segment, collapsing separator runs.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			b.WriteByte(c)
		case c == ' ' || c == '-' || c == '_':
			s := b.String()
			if len(s) > 0 && s[len(s)-1] != '_' {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base names of migrations in the
// directory, one entry per up/down pair, sorted by version.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	migrations := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		migrations = append(migrations, strings.TrimSuffix(entry.Name(), ".up.sql"))
	}
	sort.Strings(migrations)

	return migrations, nil
}
