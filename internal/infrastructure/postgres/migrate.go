package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     TEXT PRIMARY KEY,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migration un par de scripts NNNN_nombre.up.sql / NNNN_nombre.down.sql.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// LoadMigrations lee los scripts del directorio, ordenados por versión.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}
	byVersion := make(map[string]*Migration)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		var version, dir string
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			version, dir = strings.TrimSuffix(name, ".up.sql"), "up"
		case strings.HasSuffix(name, ".down.sql"):
			version, dir = strings.TrimSuffix(name, ".down.sql"), "down"
		default:
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", name, err)
		}
		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		if dir == "up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}
	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migración %s sin script up", m.Version)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Pending devuelve las migraciones a ejecutar. up: las no aplicadas en orden ascendente;
// down: la última aplicada (una por vez).
func Pending(all []Migration, applied map[string]bool, up bool) []Migration {
	if up {
		var out []Migration
		for _, m := range all {
			if !applied[m.Version] {
				out = append(out, m)
			}
		}
		return out
	}
	for i := len(all) - 1; i >= 0; i-- {
		if applied[all[i].Version] {
			return []Migration{all[i]}
		}
	}
	return nil
}

// Migrate aplica (up) o revierte (down) migraciones; cada una en su propia transacción.
// Devuelve las versiones ejecutadas.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, up bool) ([]string, error) {
	all, err := LoadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("crear schema_migrations: %w", err)
	}
	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, m := range Pending(all, applied, up) {
		script, record := m.Up, `INSERT INTO schema_migrations (version) VALUES ($1)`
		if !up {
			if m.Down == "" {
				return done, fmt.Errorf("migración %s sin script down", m.Version)
			}
			script, record = m.Down, `DELETE FROM schema_migrations WHERE version = $1`
		}
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, script); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, record, m.Version)
			return err
		})
		if err != nil {
			return done, fmt.Errorf("migración %s: %w", m.Version, err)
		}
		done = append(done, m.Version)
	}
	return done, nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("leer schema_migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("leer schema_migrations: %w", err)
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}
