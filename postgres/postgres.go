// Package postgres installs SQL helpers so the database can mint and pick
// apart version 7 UUIDs without a round trip through Go: a generator for
// column defaults, a timestamp extractor, and a boundary builder for
// time-range scans over uuid primary keys.
//
// Facade keys never reach the database. Encoding to and from the v4-shaped
// form happens in the application; tables only ever hold the v7 form.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/paraglidehq/uuid47"
)

// SchemaVersion identifies the generation of SQL helpers this package
// installs. Migrate refuses to run against a database holding a different
// version.
const SchemaVersion = 1

// Config controls where the helpers are installed.
type Config struct {
	Schema string
}

// DefaultConfig installs into the public schema.
func DefaultConfig() Config {
	return Config{Schema: "public"}
}

var ErrSchemaMismatch = errors.New("uuid47: database schema version does not match this package")

// Migrate installs the SQL helpers and records SchemaVersion in a
// single-row meta table. Safe to run at every startup: reruns are
// idempotent. If the database already holds a different version,
// returns ErrSchemaMismatch.
func Migrate(ctx context.Context, db *sql.DB, cfg Config) error {
	schema := pq.QuoteIdentifier(cfg.Schema)

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return fmt.Errorf("uuid47: create schema: %w", err)
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s._uuid47_meta (
			id int PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			schema_version int NOT NULL
		)
	`, schema))
	if err != nil {
		return fmt.Errorf("uuid47: create meta table: %w", err)
	}

	// Check existing version
	var stored int
	err = db.QueryRowContext(ctx, fmt.Sprintf(`SELECT schema_version FROM %s._uuid47_meta`, schema)).Scan(&stored)
	if err == nil {
		if stored != SchemaVersion {
			return fmt.Errorf("%w: db has version %d, package has version %d",
				ErrSchemaMismatch, stored, SchemaVersion)
		}
	} else if errors.Is(err, sql.ErrNoRows) {
		_, err = db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s._uuid47_meta (schema_version) VALUES ($1)`, schema), SchemaVersion)
		if err != nil {
			return fmt.Errorf("uuid47: insert meta row: %w", err)
		}
	} else {
		return fmt.Errorf("uuid47: read meta table: %w", err)
	}

	if _, err := db.ExecContext(ctx, generateSQL(cfg)); err != nil {
		return fmt.Errorf("uuid47: run migrations: %w", err)
	}

	return nil
}

// Generate returns a version 7 UUID minted by the database.
func Generate(ctx context.Context, db *sql.DB, cfg Config) (uuid47.UUID, error) {
	var u uuid47.UUID
	err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s.uuid_generate_v7()`, pq.QuoteIdentifier(cfg.Schema))).Scan(&u)
	return u, err
}

// GetSchemaVersion reads the installed helper version from the meta table.
func GetSchemaVersion(ctx context.Context, db *sql.DB, cfg Config) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT schema_version FROM %s._uuid47_meta`, pq.QuoteIdentifier(cfg.Schema))).Scan(&v)
	return v, err
}

func generateSQL(cfg Config) string {
	return fmt.Sprintf(`
-- Generate a version 7 UUID: 48-bit unix millisecond timestamp,
-- version and variant markers, 74 random bits
CREATE OR REPLACE FUNCTION %[1]s.uuid_generate_v7()
  RETURNS uuid
  LANGUAGE sql
  VOLATILE PARALLEL SAFE
  AS $$
  SELECT encode(
    set_bit(
      set_bit(
        overlay(uuid_send(gen_random_uuid())
                placing substring(int8send(floor(extract(epoch FROM clock_timestamp()) * 1000)::bigint) FROM 3)
                FROM 1 FOR 6),
        52, 1),
      53, 1),
    'hex')::uuid;
$$;

-- Extract the millisecond timestamp from a version 7 UUID
CREATE OR REPLACE FUNCTION %[1]s.uuid_v7_time(id uuid)
  RETURNS timestamptz
  LANGUAGE sql
  IMMUTABLE PARALLEL SAFE STRICT
  AS $$
  SELECT to_timestamp((('x' || substring(replace(id::text, '-', '') FROM 1 FOR 12))::bit(48)::bigint)::numeric / 1000);
$$;

-- Smallest version 7 UUID for ts's millisecond, for use as a
-- half-open range-scan bound over uuid columns. ts must not
-- precede the Unix epoch.
CREATE OR REPLACE FUNCTION %[1]s.uuid_v7_boundary(ts timestamptz)
  RETURNS uuid
  LANGUAGE sql
  IMMUTABLE PARALLEL SAFE STRICT
  AS $$
  SELECT (lpad(to_hex(floor(extract(epoch FROM ts) * 1000)::bigint), 12, '0') || '70008000000000000000')::uuid;
$$;
`, pq.QuoteIdentifier(cfg.Schema))
}
