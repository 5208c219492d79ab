package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"lovmeds/internal/logging"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// migrateLogger routes golang-migrate output through logrus at debug level.
type migrateLogger struct {
	log *logrus.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Debugf("migrate: "+strings.TrimSuffix(format, "\n"), v...)
}

func (l migrateLogger) Verbose() bool {
	return l.log.IsLevelEnabled(logrus.DebugLevel)
}

// Apply runs all embedded migrations up.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *logrus.Logger) error {
	logger = logging.OrDiscard(logger)
	return run(ctx, pool, logger, func(m *migrate.Migrate) error {
		from := version(m)
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("migrate up: %w (hint: every migration version needs both .up.sql and .down.sql, and the binary must be rebuilt since migrations are embedded)", err)
			}
			return fmt.Errorf("migrate up: %w", err)
		}
		logger.WithFields(logrus.Fields{"from": from, "to": version(m)}).Info("schema up to date")
		return nil
	})
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, pool *pgxpool.Pool, logger *logrus.Logger) error {
	logger = logging.OrDiscard(logger)
	return run(ctx, pool, logger, func(m *migrate.Migrate) error {
		from := version(m)
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		logger.WithFields(logrus.Fields{"from": from, "to": version(m)}).Info("rolled back one migration")
		return nil
	})
}

func run(ctx context.Context, pool *pgxpool.Pool, logger *logrus.Logger, fn func(*migrate.Migrate) error) error {
	srcDriver, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		return fmt.Errorf("init iofs: %w", err)
	}

	sqlDB, err := sql.Open("pgx", pool.Config().ConnString())
	if err != nil {
		return fmt.Errorf("open sql db: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sql db: %w", err)
	}

	dbDriver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "pgx", dbDriver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{log: logger}

	if _, dirty, err := m.Version(); err == nil && dirty {
		return errors.New("schema is dirty: a previous migration failed half way, fix it by hand and force the version")
	}
	return fn(m)
}

// version reports the applied schema version, 0 when none.
func version(m *migrate.Migrate) uint {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return v
}
