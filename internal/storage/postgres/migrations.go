package postgres

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const migrationsGlob = "sql/migrations/*.sql"

var (
	//go:embed sql/migrations/*.sql
	embeddedMigrations embed.FS

	// 001_subscriptions.up.sql -> version, name, direction.
	migrationFileName = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)
)

type migrationDirection string

const (
	migrationUp   migrationDirection = "up"
	migrationDown migrationDirection = "down"
)

type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

func (m migration) label() string {
	return fmt.Sprintf("%d_%s", m.Version, m.Name)
}

// body возвращает SQL для направления.
func (m migration) body(direction migrationDirection) string {
	if direction == migrationDown {
		return m.DownSQL
	}
	return m.UpSQL
}

// loadMigrationsFromFS читает пары up/down и возвращает их по возрастанию версии.
func loadMigrationsFromFS(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, migrationsGlob)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no migration files found")
	}

	byVersion := make(map[int64]*migration)
	for _, file := range files {
		if err := addMigrationFile(fsys, file, byVersion); err != nil {
			return nil, err
		}
	}

	result := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration %s must have both up and down files", m.label())
		}
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

func addMigrationFile(fsys fs.FS, file string, byVersion map[int64]*migration) error {
	base := path.Base(file)
	parts := migrationFileName.FindStringSubmatch(base)
	if len(parts) != 4 {
		return fmt.Errorf("invalid migration file name: %s", base)
	}

	version, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parse migration version from %s: %w", base, err)
	}
	name, direction := parts[2], migrationDirection(parts[3])

	raw, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", file, err)
	}
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return fmt.Errorf("migration file is empty: %s", base)
	}

	m, ok := byVersion[version]
	if !ok {
		m = &migration{Version: version, Name: name}
		byVersion[version] = m
	}
	if m.Name != name {
		return fmt.Errorf("migration name mismatch for version %d: %s vs %s", version, m.Name, name)
	}

	target := &m.UpSQL
	if direction == migrationDown {
		target = &m.DownSQL
	}
	if *target != "" {
		return fmt.Errorf("duplicate %s migration for version %d", direction, version)
	}
	*target = body
	return nil
}
