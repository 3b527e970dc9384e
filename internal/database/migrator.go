package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// The binary carries its own schema, nothing is read from disk at runtime.
//
//go:embed migrations/*.sql
var migrations embed.FS

// MigrateDSN applies every embedded migration with jackc/tern, recording the
// version in the schema_version table.
func MigrateDSN(ctx context.Context, logger *zerolog.Logger, dsn string) error {
	return MigrateTo(ctx, logger, dsn, Latest)
}

// Latest asks MigrateTo for the newest embedded migration.
const Latest int32 = -1

// MigrateTo moves the schema up or down to version. Version 0 drops
// everything the migrations created.
func MigrateTo(ctx context.Context, logger *zerolog.Logger, dsn string, version int32) error {
	// A single connection is enough for a one-shot migration run.
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	target := version
	if target == Latest {
		target = int32(len(m.Migrations))
	}
	if target < 0 || target > int32(len(m.Migrations)) {
		return fmt.Errorf("unknown migration version %d, have 0 to %d", target, len(m.Migrations))
	}

	if err := m.MigrateTo(ctx, target); err != nil {
		return err
	}

	if from == target {
		logger.Info().Msgf("database schema up to date, version %d", target)
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, target)
	}
	return nil
}
