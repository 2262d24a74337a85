package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ecoviewer/internal/models"
	"ecoviewer/internal/repository"
)

// LogFilter narrows the connection log. Zero values mean no bound.
type LogFilter struct {
	From      time.Time // inclusive
	To        time.Time // inclusive
	Type      string    // CONNECT, CONNECT_FAILED, VALIDATION_FAILED, MOUNT, UNMOUNT, POLL_ERROR
	ChannelID string
}

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var errInvalidTimeRange = errors.New("invalid time range: from must be <= to")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (LogFilter, error) {
	out := LogFilter{
		From:      normalizeToUTC(f.From),
		To:        normalizeToUTC(f.To),
		Type:      normalizeEventType(f.Type),
		ChannelID: strings.TrimSpace(f.ChannelID),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, errInvalidTimeRange
	}
	return out, nil
}

// List returns the connection events recorded for ownerID.
func (s *EventLogService) List(ctx context.Context, ownerID int, f LogFilter) ([]models.ConnectionEvent, error) {
	nf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, repository.EventQuery{
		OwnerID:   ownerID,
		From:      nf.From,
		To:        nf.To,
		Type:      nf.Type,
		ChannelID: nf.ChannelID,
	})
}
