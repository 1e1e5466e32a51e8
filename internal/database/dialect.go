package database

import (
	"database/sql"
	"fmt"
)

// Dialect captures the SQL differences between the supported engines.
type Dialect struct {
	Name         string
	driverName   string
	lockSuffix   string
	onDuplicate  string
	singleWriter bool
	txOptions    *sql.TxOptions
	schema       []string
}

var (
	// MySQL (InnoDB) locks individual rows with SELECT ... FOR UPDATE.
	MySQL = Dialect{
		Name:         "mysql",
		driverName:   "mysql",
		lockSuffix:   " FOR UPDATE",
		onDuplicate:  " ON DUPLICATE KEY UPDATE id = id",
		txOptions:    &sql.TxOptions{Isolation: sql.LevelSerializable},
		schema:       mysqlSchema,
	}

	// SQLite has no row locks; a write transaction holds the database
	// lock, which is a superset of the per-product lock.
	SQLite = Dialect{
		Name:         "sqlite",
		driverName:   "sqlite",
		onDuplicate:  " ON CONFLICT DO NOTHING",
		singleWriter: true,
		schema:       sqliteSchema,
	}
)

// DialectFor returns the dialect for a DB_DRIVER value.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case MySQL.Name:
		return MySQL, nil
	case SQLite.Name:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// ForUpdate appends the exclusive row-lock clause to a SELECT.
func (d Dialect) ForUpdate(query string) string {
	return query + d.lockSuffix
}

// SkipDuplicate appends the clause that turns a unique-key collision into a
// no-op. Foreign key, NOT NULL and CHECK violations still fail the insert.
func (d Dialect) SkipDuplicate(insert string) string {
	return insert + d.onDuplicate
}
