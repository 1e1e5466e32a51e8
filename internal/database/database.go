package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DB is the lifecycle-scoped storage handle passed to every service.
type DB struct {
	*sqlx.DB
	Dialect Dialect
	log     *zap.Logger
}

// Options configures the connection pool.
type Options struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Querier is satisfied by both *DB and *sqlx.Tx, so read helpers can be
// used in or out of a transaction.
type Querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Open creates and verifies a connection pool for driver ("mysql" or "sqlite").
func Open(ctx context.Context, driver, dsn string, opts Options, log *zap.Logger) (*DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	// 1. Open a new connection pool.
	db, err := sqlx.Open(dialect.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	// 2. Configure the connection pool settings.
	maxOpen := opts.MaxOpenConns
	if dialect.singleWriter || maxOpen <= 0 {
		// sqlite has one writer per database file; a single pooled
		// connection turns that into ordinary pool queueing instead of SQLITE_BUSY.
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	// 3. Ping the database to verify the connection.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	log.Info("database connection pool established",
		zap.String("driver", driver),
		zap.Int("max_open_conns", maxOpen))
	return &DB{DB: db, Dialect: dialect, log: log}, nil
}
