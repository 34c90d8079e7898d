package config

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// NewDatabase opens the journal database for the configured driver.
func NewDatabase(cfg *Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrapf(err, "%s open", cfg.Store.Driver)
	}

	if cfg.Store.Driver == "sqlite" {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, eris.Wrap(err, "sqlite enable WAL")
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrapf(err, "%s ping", cfg.Store.Driver)
	}
	return db, nil
}
