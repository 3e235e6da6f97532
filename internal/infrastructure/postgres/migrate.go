package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica las migraciones embebidas con golang-migrate. La versión aplicada queda
// en schema_migrations, así cada script corre una sola vez.
type Migrator struct {
	m   *migrate.Migrate
	log zerolog.Logger
}

// NewMigrator prepara golang-migrate sobre el pool. Cerrar el Migrator no cierra el pool.
func NewMigrator(pool *pgxpool.Pool, log zerolog.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migraciones embebidas: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("driver pgx de migraciones: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Up aplica las migraciones pendientes. Sin pendientes no es error.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	version, dirty, err := mg.m.Version()
	if err != nil {
		return fmt.Errorf("versión de migraciones: %w", err)
	}
	mg.log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Version devuelve la última migración aplicada.
func (mg *Migrator) Version() (uint, bool, error) {
	return mg.m.Version()
}

// Close libera la fuente y la conexión de golang-migrate.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// RunMigrations aplica las migraciones pendientes y cierra el migrador.
func RunMigrations(pool *pgxpool.Pool, log zerolog.Logger) error {
	mg, err := NewMigrator(pool, log)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}
