// migrate applies every NNN_name.sql file under the migrations directory
// that has not been recorded yet. Applied files are pinned by checksum.
//
// Usage: go run ./cmd/migrate [dir]
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"commerce-engine/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const migrateLockKey = 4417001

type migration struct {
	version  string
	filename string
	sql      []byte
	checksum string
}

func main() {
	_ = godotenv.Load()

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer pool.Close()

	if err := run(ctx, pool, dir); err != nil {
		pool.Close()
		log.Fatalf("%v", err)
	}
	log.Println("[DONE] migrations up to date")
}

func run(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("[LOCK] acquire connection: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrateLockKey).Scan(&locked); err != nil {
		return fmt.Errorf("[LOCK] %w", err)
	}
	if !locked {
		return errors.New("[LOCK] another migrator is running")
	}
	defer conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrateLockKey) //nolint:errcheck

	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	pending, err := discover(dir)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := apply(ctx, pool, m); err != nil {
			return err
		}
	}
	return nil
}

func discover(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("[DISCOVER] %w", err)
	}

	seen := map[string]string{}
	var out []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		version, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("[DISCOVER] %s: expected NNN_description.sql", e.Name())
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("[DISCOVER] version %s used by %s and %s", version, prev, e.Name())
		}
		seen[version] = e.Name()

		body, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("[DISCOVER] read %s: %w", e.Name(), err)
		}
		sum := sha256.Sum256(body)
		out = append(out, migration{version: version, filename: e.Name(), sql: body, checksum: hex.EncodeToString(sum[:])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].filename < out[j].filename })
	return out, nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, m migration) error {
	var recorded string
	err := pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", m.version).Scan(&recorded)
	switch {
	case err == nil && recorded == m.checksum:
		log.Printf("[SKIP] %s", m.filename)
		return nil
	case err == nil:
		return fmt.Errorf("[ERROR] %s changed after being applied (recorded %s, now %s)", m.filename, recorded, m.checksum)
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("[ERROR] lookup %s: %w", m.filename, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("[ERROR] begin %s: %w", m.filename, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, string(m.sql)); err != nil {
		return fmt.Errorf("[ERROR] execute %s: %w", m.filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		m.version, m.filename, m.checksum); err != nil {
		return fmt.Errorf("[ERROR] record %s: %w", m.filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("[ERROR] commit %s: %w", m.filename, err)
	}
	log.Printf("[APPLY] %s", m.filename)
	return nil
}
