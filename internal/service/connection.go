package service

import (
	"context"
	"errors"
	"strings"

	"ecoviewer/internal/logger"
	"ecoviewer/internal/models"
	"ecoviewer/internal/thingspeak"
)

const msgConnectionTypeInvalid = "Connection type must be Public or Private."

// SubmitParams is what the user typed into the connection form.
type SubmitParams struct {
	ChannelID      string
	ConnectionType string
	AccessKey      string
}

// ConnectionService validates channel credentials against the feed API before a dashboard
// is opened for them.
type ConnectionService struct {
	feeds  FeedFetcher
	events EventRecorder
	log    *logger.Logger
}

func NewConnectionService(feeds FeedFetcher, events EventRecorder, log *logger.Logger) *ConnectionService {
	return &ConnectionService{feeds: feeds, events: events, log: logger.OrNop(log)}
}

// Submit validates p, fetches the channel feed once and on success returns the handoff for
// the dashboard. Errors are *ValidationError or *ConnectivityError. Every outcome is logged
// for ownerID.
func (s *ConnectionService) Submit(ctx context.Context, ownerID int, p SubmitParams) (models.Handoff, error) {
	creds, verr := validateSubmit(p)
	if verr != nil {
		s.record(ctx, models.ConnectionEvent{
			OwnerID:     ownerID,
			Type:        models.EventValidationFailed,
			ChannelID:   strings.TrimSpace(p.ChannelID),
			Description: verr.Message,
			Metadata:    map[string]any{"field": verr.Field},
		})
		return models.Handoff{}, verr
	}

	res, err := s.feeds.FetchFeeds(ctx, creds)
	if err != nil {
		cerr := toConnectivityError(err)
		s.log.Warnw("channel_connect_failed",
			"owner_id", ownerID,
			"channel_id", creds.ChannelID,
			"private", creds.Private(),
			"status", cerr.Status,
			"error", err,
		)
		s.record(ctx, models.ConnectionEvent{
			OwnerID:     ownerID,
			Type:        models.EventConnectFailed,
			ChannelID:   creds.ChannelID,
			Description: cerr.Message,
			Metadata:    map[string]any{"status": cerr.Status, "private": creds.Private()},
		})
		return models.Handoff{}, cerr
	}

	s.log.Infow("channel_connected", "owner_id", ownerID, "channel_id", creds.ChannelID, "private", creds.Private())
	s.record(ctx, models.ConnectionEvent{
		OwnerID:     ownerID,
		Type:        models.EventConnect,
		ChannelID:   creds.ChannelID,
		Description: "channel connected",
		Metadata:    map[string]any{"private": creds.Private(), "feeds": len(res.Payload.Feeds)},
	})

	return models.Handoff{Credentials: creds, Payload: res.Raw}, nil
}

// OnEnter asks for portrait orientation; the form has nothing to start.
func (s *ConnectionService) OnEnter(context.Context) models.ScreenOrientation {
	return models.OrientationPortrait
}

func (s *ConnectionService) OnExit() {}

func validateSubmit(p SubmitParams) (models.ChannelCredentials, *ValidationError) {
	id := strings.TrimSpace(p.ChannelID)
	if id == "" {
		return models.ChannelCredentials{}, &ValidationError{Field: "channel_id", Message: MsgChannelIDRequired}
	}
	typ, ok := models.ParseConnectionType(p.ConnectionType)
	if !ok {
		return models.ChannelCredentials{}, &ValidationError{Field: "connection_type", Message: msgConnectionTypeInvalid}
	}
	if typ == models.ConnectionPublic {
		return models.ChannelCredentials{ChannelID: id}, nil
	}
	key := strings.TrimSpace(p.AccessKey)
	if key == "" {
		return models.ChannelCredentials{}, &ValidationError{Field: "access_key", Message: MsgAccessKeyRequired}
	}
	return models.ChannelCredentials{ChannelID: id, AccessKey: key}, nil
}

func toConnectivityError(err error) *ConnectivityError {
	var se *thingspeak.StatusError
	switch {
	case errors.As(err, &se):
		msg := se.Message
		if msg == "" {
			msg = MsgConnectionFailed
		}
		return &ConnectivityError{Message: msg, Status: se.Code, Err: err}
	case errors.Is(err, thingspeak.ErrDecode):
		return &ConnectivityError{Message: MsgConnectionFailed, Err: err}
	default:
		return &ConnectivityError{Message: MsgNetworkError, Err: err}
	}
}

func (s *ConnectionService) record(ctx context.Context, ev models.ConnectionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, ev); err != nil {
		s.log.Errorw("event_append_failed", "type", ev.Type, "error", err)
	}
}
