package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ecoviewer/internal/models"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var eventColumns = []string{"id", "occurred_at", "owner_id", "type", "channel_id", "session_id", "message", "meta"}

func TestAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	repo := NewEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(),
			3,
			models.EventConnect,
			"12397",
			nil,
			"connected",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.ConnectionEvent{
		OwnerID:     3,
		Type:        "  connect ",
		ChannelID:   "12397",
		Description: "connected",
		Metadata:    map[string]any{"private": false},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	repo := NewEventSQLite(db)

	mock.ExpectExec("INSERT INTO connection_events").
		WillReturnError(errors.New("down"))

	err := repo.Append(ctx(t), models.ConnectionEvent{
		Type:        models.EventPollError,
		Description: "x",
		Metadata:    map[string]string{"k": "v"},
	})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_NoFilters_And_MetadataParsing(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	repo := NewEventSQLite(db)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"a": "b"})

	rows := sqlmock.NewRows(eventColumns).
		AddRow("1", now, 3, "CONNECT", "12397", nil, "m1", string(js)).
		AddRow("2", now.Add(time.Hour), 3, "MOUNT", "12397", "s-1", "m2", nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL + ` WHERE owner_id = ? ORDER BY occurred_at ASC`)).
		WithArgs(3).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), EventQuery{OwnerID: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if got[0].EventID != "1" || got[1].EventID != "2" {
		t.Fatalf("unexpected ids: %v, %v", got[0].EventID, got[1].EventID)
	}
	if got[0].OwnerID != 3 {
		t.Fatalf("unexpected owner: %d", got[0].OwnerID)
	}
	if got[0].SessionID != "" || got[1].SessionID != "s-1" {
		t.Fatalf("unexpected sessions: %q, %q", got[0].SessionID, got[1].SessionID)
	}
	b1, _ := json.Marshal(got[0].Metadata)
	if string(b1) != string(js) {
		t.Fatalf("metadata mismatch: %s vs %s", string(b1), string(js))
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil meta, got %#v", got[1].Metadata)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	repo := NewEventSQLite(db)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := selectEventsSQL + ` WHERE owner_id = ? AND occurred_at >= ? AND occurred_at <= ? AND type = ? AND channel_id = ? ORDER BY occurred_at ASC`

	rows := sqlmock.NewRows(eventColumns).
		AddRow("2", from, 5, "POLL_ERROR", "42", "s-1", "b", nil).
		AddRow("3", to, 5, "POLL_ERROR", "42", "s-1", "c", nil)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(5, "2025-01-01 11:00:00", "2025-01-01 12:00:00", "POLL_ERROR", "42").
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), EventQuery{OwnerID: 5, From: from, To: to, Type: " poll_error ", ChannelID: " 42 "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "2" || got[1].EventID != "3" {
		t.Fatalf("unexpected results: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_ScanError(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	repo := NewEventSQLite(db)

	rows := sqlmock.NewRows(eventColumns).
		// occurred_at of the wrong type
		AddRow("x", 123, 1, "CONNECT", nil, nil, "msg", nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL + ` WHERE owner_id = ? ORDER BY occurred_at ASC`)).
		WithArgs(1).
		WillReturnRows(rows)

	if _, err := repo.List(ctx(t), EventQuery{OwnerID: 1}); err == nil {
		t.Fatalf("expected scan error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
