package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecoviewer/internal/logger"
	"ecoviewer/internal/models"
)

const DefaultMaxSessions = 64

// DashboardConfig tunes every dashboard the registry mounts.
type DashboardConfig struct {
	Interval     time.Duration
	HistoryLimit int
	MaxSessions  int
}

// DashboardDeps are the collaborators shared by all dashboards. Samples and Views may be nil.
type DashboardDeps struct {
	Feeds   FeedFetcher
	Events  EventRecorder
	Samples SampleRecorder
	Views   ViewPublisher
	Logger  *logger.Logger
}

// SessionInfo describes a mounted dashboard.
type SessionInfo struct {
	ID          string                   `json:"id"`
	ChannelID   string                   `json:"channel_id"`
	Private     bool                     `json:"private"`
	Seeded      bool                     `json:"seeded"`
	Orientation models.ScreenOrientation `json:"orientation"`
	MountedAt   time.Time                `json:"mounted_at"`
}

type session struct {
	info SessionInfo
	dash *Dashboard
}

// DashboardService keeps the mounted dashboards of all users. Each dashboard polls on a
// context owned by the service, so it keeps running after the request that mounted it.
type DashboardService struct {
	deps DashboardDeps
	cfg  DashboardConfig
	log  *logger.Logger
	now  func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*session
	// slots taken by mounts still seeding
	reserved int
}

func NewDashboardService(deps DashboardDeps, cfg DashboardConfig) *DashboardService {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.HistoryLimit < 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DashboardService{
		deps:     deps,
		cfg:      cfg,
		log:      logger.OrNop(deps.Logger),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
}

// Mount opens a dashboard for h, seeds it from the handoff payload and starts polling.
func (s *DashboardService) Mount(ctx context.Context, ownerID int, h models.Handoff) (SessionInfo, error) {
	if h.Credentials.ChannelID == "" {
		return SessionInfo{}, &ValidationError{Field: "channel_id", Message: MsgChannelIDRequired}
	}

	if !s.reserve() {
		return SessionInfo{}, ErrTooManySessions
	}

	id := uuid.NewString()
	d := NewDashboard(id, h.Credentials, s.deps.Feeds, s.dashboardOptions(ownerID)...)

	seeded, err := d.Initialize(ctx, h.Payload)
	if err != nil {
		// a bad payload only costs the seed; the first poll runs immediately instead
		s.log.Warnw("dashboard_seed_failed", "session_id", id, "channel_id", h.Credentials.ChannelID, "error", err)
	}

	info := SessionInfo{
		ID:        id,
		ChannelID: h.Credentials.ChannelID,
		Private:   h.Credentials.Private(),
		Seeded:    seeded,
		MountedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.reserved--
	info.Orientation = d.OnEnter(s.ctx)
	s.sessions[id] = &session{info: info, dash: d}
	s.mu.Unlock()

	s.log.Infow("dashboard_mounted", "owner_id", ownerID, "session_id", id, "channel_id", info.ChannelID, "seeded", seeded)
	s.record(ctx, models.ConnectionEvent{
		OwnerID:     ownerID,
		Type:        models.EventMount,
		ChannelID:   info.ChannelID,
		SessionID:   id,
		Description: "dashboard mounted",
		Metadata:    map[string]any{"seeded": seeded, "private": info.Private},
	})
	return info, nil
}

func (s *DashboardService) State(ownerID int, id string) (models.DashboardState, error) {
	d, err := s.get(ownerID, id)
	if err != nil {
		return models.DashboardState{}, err
	}
	return d.Snapshot(), nil
}

func (s *DashboardService) View(ownerID int, id string) (models.DashboardView, error) {
	d, err := s.get(ownerID, id)
	if err != nil {
		return models.DashboardView{}, err
	}
	return d.View(), nil
}

// Sessions lists the dashboards of ownerID, oldest first.
func (s *DashboardService) Sessions(ownerID int) []SessionInfo {
	s.mu.RLock()
	out := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.dash.Owner() == ownerID {
			out = append(out, sess.info)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].MountedAt.Equal(out[j].MountedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].MountedAt.Before(out[j].MountedAt)
	})
	return out
}

// Unmount stops and forgets a dashboard.
func (s *DashboardService) Unmount(ctx context.Context, ownerID int, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok || sess.dash.Owner() != ownerID {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	sess.dash.OnExit()

	s.log.Infow("dashboard_unmounted", "session_id", id, "channel_id", sess.info.ChannelID)
	s.record(ctx, models.ConnectionEvent{
		OwnerID:     ownerID,
		Type:        models.EventUnmount,
		ChannelID:   sess.info.ChannelID,
		SessionID:   id,
		Description: "dashboard unmounted",
	})
	return nil
}

// Shutdown unmounts every dashboard and waits for outstanding polls.
func (s *DashboardService) Shutdown() {
	s.cancel()

	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.dash.Unmount()
		sess.dash.Wait()
	}
	s.log.Infow("dashboards_shutdown", "count", len(all))
}

func (s *DashboardService) get(ownerID int, id string) (*Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || sess.dash.Owner() != ownerID {
		return nil, ErrSessionNotFound
	}
	return sess.dash, nil
}

// reserve takes a session slot before the dashboard is seeded, so a mount over the limit
// records nothing.
func (s *DashboardService) reserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions)+s.reserved >= s.cfg.MaxSessions {
		return false
	}
	s.reserved++
	return true
}

func (s *DashboardService) dashboardOptions(ownerID int) []DashboardOption {
	opts := []DashboardOption{
		WithOwner(ownerID),
		WithInterval(s.cfg.Interval),
		WithHistoryLimit(s.cfg.HistoryLimit),
		WithLogger(s.log),
	}
	if s.deps.Events != nil {
		opts = append(opts, WithEventRecorder(s.deps.Events))
	}
	if s.deps.Samples != nil {
		opts = append(opts, WithSampleRecorder(s.deps.Samples))
	}
	if s.deps.Views != nil {
		opts = append(opts, WithViewPublisher(s.deps.Views))
	}
	return opts
}

func (s *DashboardService) record(ctx context.Context, ev models.ConnectionEvent) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.Append(ctx, ev); err != nil {
		s.log.Errorw("event_append_failed", "type", ev.Type, "error", err)
	}
}
