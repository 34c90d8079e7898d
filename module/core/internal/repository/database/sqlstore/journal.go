package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"

	"github.com/nandanugg/linewatch/module/core/domain"
	"github.com/nandanugg/linewatch/module/core/internal/repository/database"
)

var _ database.JournalRepository = (*JournalRepo)(nil)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// The schema sticks to types both sqlite and postgres accept, and timestamps
// are stored as unix milliseconds for the same reason.
const createJournalTable = `CREATE TABLE IF NOT EXISTS geofence_journal (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	detail      TEXT NOT NULL,
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL DEFAULT '',
	recorded_at BIGINT NOT NULL
)`

const createJournalIndex = `CREATE INDEX IF NOT EXISTS idx_geofence_journal_recorded_at ON geofence_journal (recorded_at)`

type JournalRepo struct {
	db *sql.DB
}

func NewJournalRepo(db *sql.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Migrate creates the journal table if it does not exist.
func (r *JournalRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createJournalTable); err != nil {
		return eris.Wrap(err, "sqlstore: create journal table")
	}
	if _, err := r.db.ExecContext(ctx, createJournalIndex); err != nil {
		return eris.Wrap(err, "sqlstore: create journal index")
	}
	return nil
}

func (r *JournalRepo) Insert(ctx context.Context, e *domain.JournalEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO geofence_journal (id, kind, detail, latitude, longitude, title, message, recorded_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, string(e.Kind), e.Detail, e.Lat, e.Lon, e.Title, e.Message, e.RecordedAt.UnixMilli(),
	)
	if err != nil {
		return eris.Wrap(err, "sqlstore: insert journal entry")
	}
	return nil
}

// List returns the newest entries first.
func (r *JournalRepo) List(ctx context.Context, query *domain.JournalQuery) ([]domain.JournalEntry, error) {
	limit := defaultListLimit
	if query != nil && query.Limit > 0 {
		limit = min(query.Limit, maxListLimit)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, detail, latitude, longitude, title, message, recorded_at FROM geofence_journal ORDER BY recorded_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlstore: list journal")
	}
	defer func() { _ = rows.Close() }()

	var results []domain.JournalEntry
	for rows.Next() {
		var (
			e        domain.JournalEntry
			kind     string
			recorded int64
		)
		if err := rows.Scan(&e.ID, &kind, &e.Detail, &e.Lat, &e.Lon, &e.Title, &e.Message, &recorded); err != nil {
			return nil, eris.Wrap(err, "sqlstore: scan journal entry")
		}
		e.Kind = domain.JournalKind(kind)
		e.RecordedAt = time.UnixMilli(recorded).UTC()
		results = append(results, e)
	}
	return results, rows.Err()
}
