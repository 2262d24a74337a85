package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecoviewer/internal/models"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	insertEventSQL = `
		INSERT INTO connection_events (id, occurred_at, owner_id, type, channel_id, session_id, message, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	selectEventsSQL = `SELECT id, occurred_at, owner_id, type, channel_id, session_id, message, meta FROM connection_events`

	// SQLite TIMESTAMP text layout
	sqliteTimeLayout = "2006-01-02 15:04:05"
)

// Append inserts a new event. Missing EventID and OccurredAt are filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.ConnectionEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.Format(sqliteTimeLayout),
		e.OwnerID,
		strings.ToUpper(strings.TrimSpace(e.Type)),
		nullIfEmpty(e.ChannelID),
		nullIfEmpty(e.SessionID),
		e.Description,
		metaPtr,
	)
	return err
}

// List returns the events of q.OwnerID filtered by [From, To] (inclusive), type and channel,
// oldest first.
func (r *EventSQLite) List(ctx context.Context, q EventQuery) ([]models.ConnectionEvent, error) {
	conds := []string{"owner_id = ?"}
	args := []any{q.OwnerID}

	if !q.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, q.From.UTC().Format(sqliteTimeLayout))
	}
	if !q.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, q.To.UTC().Format(sqliteTimeLayout))
	}
	if typ := strings.ToUpper(strings.TrimSpace(q.Type)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if channelID := strings.TrimSpace(q.ChannelID); channelID != "" {
		conds = append(conds, "channel_id = ?")
		args = append(args, channelID)
	}

	query := selectEventsSQL + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ConnectionEvent, 0, 64)
	for rows.Next() {
		var (
			ev      models.ConnectionEvent
			channel sql.NullString
			session sql.NullString
			metaStr sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.OwnerID, &ev.Type, &channel, &session, &ev.Description, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.ChannelID = channel.String
		ev.SessionID = session.String

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
