package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nandanugg/linewatch/module/core/domain"
)

func TestMigrate_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS geofence_journal`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_geofence_journal_recorded_at`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewJournalRepo(db).Migrate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMigrate_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS geofence_journal`).WillReturnError(sqlmock.ErrCancelled)

	if err := NewJournalRepo(db).Migrate(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestInsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.UnixMilli(1715003456123)
	mock.ExpectExec(`INSERT INTO geofence_journal`).
		WithArgs("a1", "alert", "deferred", 0.0, 0.0006, "You are getting out of limit", "Please come back", int64(1715003456123)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewJournalRepo(db)
	err = repo.Insert(context.Background(), &domain.JournalEntry{
		ID:         "a1",
		Kind:       domain.JournalAlert,
		Detail:     "deferred",
		Lat:        0,
		Lon:        0.0006,
		Title:      "You are getting out of limit",
		Message:    "Please come back",
		RecordedAt: ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestInsert_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO geofence_journal`).WillReturnError(sqlmock.ErrCancelled)

	err = NewJournalRepo(db).Insert(context.Background(), &domain.JournalEntry{ID: "a1", Kind: domain.JournalTransition})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestList_DefaultLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"id", "kind", "detail", "latitude", "longitude", "title", "message", "recorded_at"}).
		AddRow("t2", "transition", "cleared_breach", 0.0, 0.0001, "", "", int64(1715003460000)).
		AddRow("t1", "transition", "entered_breach", 0.0, 0.0006, "", "", int64(1715003456000))

	mock.ExpectQuery(`SELECT id, kind, detail, latitude, longitude, title, message, recorded_at FROM geofence_journal ORDER BY recorded_at DESC LIMIT (.+)`).
		WithArgs(defaultListLimit).
		WillReturnRows(rows)

	entries, err := NewJournalRepo(db).List(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != domain.JournalTransition || entries[0].Detail != "cleared_breach" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if !entries[1].RecordedAt.Equal(time.Unix(1715003456, 0)) {
		t.Errorf("expected recorded_at 1715003456, got %v", entries[1].RecordedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestList_ClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT (.+) FROM geofence_journal`).
		WithArgs(maxListLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "detail", "latitude", "longitude", "title", "message", "recorded_at"}))

	entries, err := NewJournalRepo(db).List(context.Background(), &domain.JournalQuery{Limit: 10000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(entries))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestList_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT (.+) FROM geofence_journal`).WillReturnError(sqlmock.ErrCancelled)

	if _, err := NewJournalRepo(db).List(context.Background(), &domain.JournalQuery{Limit: 5}); err == nil {
		t.Fatal("expected error")
	}
}
