package db

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/naija-emoji/apiserver/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Direction selects which way migrations are applied.
type Direction int

const (
	Up Direction = iota
	Down
)

// Migrate applies the embedded migrations for the configured driver. It
// opens a dedicated connection because closing the migrator closes the
// database handle it was given.
func Migrate(ctx context.Context, cfg config.Config, direction Direction) error {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return err
	}

	migrator, err := newMigrator(conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	switch direction {
	case Up:
		err = migrator.Up()
	case Down:
		err = migrator.Down()
	default:
		return fmt.Errorf("unknown migration direction %d", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate failed: %w", err)
	}
	return nil
}

func newMigrator(conn *sqlx.DB) (*migrate.Migrate, error) {
	driverName := conn.DriverName()

	source, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch driverName {
	case config.DriverPostgres:
		driver, err = migratepostgres.WithInstance(conn.DB, &migratepostgres.Config{})
	case config.DriverSQLite:
		driver, err = migratesqlite.WithInstance(conn.DB, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("no migrations for driver %q", driverName)
	}
	if err != nil {
		_ = source.Close()
		return nil, err
	}

	return migrate.NewWithInstance("iofs", source, driverName, driver)
}
