package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- Migration: {{.Name}}
-- Description: {{.Description}}
-- Created: {{.Created}}

`

const downTemplate = `-- Migration: {{.Name}} (Rollback)

`

var migrationFileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// MigrationFile describes a created up/down pair
type MigrationFile struct {
	Version     uint
	Name        string
	Description string
	Created     string
	UpPath      string
	DownPath    string
}

// CreateMigration writes the next sequentially numbered up/down pair into dir
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var version uint = 1
	if n := len(existing); n > 0 {
		version = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", version, slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        slug,
		Description: description,
		Created:     time.Now().UTC().Format(time.RFC3339),
		UpPath:      filepath.Join(dir, base+".up.sql"),
		DownPath:    filepath.Join(dir, base+".down.sql"),
	}

	if err := writeTemplate(mf.UpPath, upTemplate, mf); err != nil {
		return nil, err
	}
	if err := writeTemplate(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeTemplate(path, text string, data *MigrationFile) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// sanitizeName lowercases name and joins its words with underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// MigrationEntry is one version found on disk
type MigrationEntry struct {
	Version uint
	Name    string
	HasDown bool
}

// ListMigrations returns the migrations in dir ordered by version.
// A missing directory yields an empty list.
func ListMigrations(dir string) ([]MigrationEntry, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []MigrationEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*MigrationEntry)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			continue
		}
		version := uint(v)
		e, ok := byVersion[version]
		if !ok {
			e = &MigrationEntry{Version: version, Name: match[2]}
			byVersion[version] = e
		}
		if match[3] == "down" {
			e.HasDown = true
		}
	}

	list := make([]MigrationEntry, 0, len(byVersion))
	for _, e := range byVersion {
		list = append(list, *e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Version < list[j].Version })
	return list, nil
}
