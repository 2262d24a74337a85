package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecoviewer/internal/models"
)

type SampleSQLite struct {
	db *sql.DB
}

func NewSampleSQLite(db *sql.DB) *SampleSQLite {
	return &SampleSQLite{db: db}
}

const (
	defaultRecentLimit = 100
	maxRecentLimit     = 1000

	insertSampleSQL = `
		INSERT INTO samples (owner_id, session_id, channel_id, voltage, current, battery_charge, velocity, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectRecentSamplesSQL = `
		SELECT id, owner_id, session_id, channel_id, voltage, current, battery_charge, velocity, recorded_at
		FROM samples WHERE owner_id = ? AND channel_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`
)

// Append stores one sample. A zero RecordedAt is replaced by the current time; the stored
// time is always UTC.
func (r *SampleSQLite) Append(ctx context.Context, rec models.SampleRecord) error {
	ts := rec.RecordedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertSampleSQL,
		rec.OwnerID,
		rec.SessionID,
		rec.ChannelID,
		rec.Sample.Voltage,
		rec.Sample.Current,
		rec.Sample.BatteryChargePercent,
		rec.Sample.Velocity,
		ts,
	)
	if err != nil {
		return fmt.Errorf("insert sample for channel %q: %w", rec.ChannelID, err)
	}
	return nil
}

// Recent returns up to limit samples of a channel recorded by ownerID's dashboards, newest
// first.
func (r *SampleSQLite) Recent(ctx context.Context, ownerID int, channelID string, limit int) ([]models.SampleRecord, error) {
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx, selectRecentSamplesSQL, ownerID, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("select samples for channel %q: %w", channelID, err)
	}
	defer rows.Close()

	out := make([]models.SampleRecord, 0, limit)
	for rows.Next() {
		var rec models.SampleRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&rec.SessionID,
			&rec.ChannelID,
			&rec.Sample.Voltage,
			&rec.Sample.Current,
			&rec.Sample.BatteryChargePercent,
			&rec.Sample.Velocity,
			&rec.RecordedAt,
		); err != nil {
			return nil, err
		}
		rec.RecordedAt = rec.RecordedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultRecentLimit
	case limit > maxRecentLimit:
		return maxRecentLimit
	default:
		return limit
	}
}
