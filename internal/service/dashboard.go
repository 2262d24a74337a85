package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ecoviewer/internal/logger"
	"ecoviewer/internal/models"
	"ecoviewer/internal/thingspeak"
)

const (
	DefaultPollInterval = time.Second
	DefaultHistoryLimit = 300

	// en-US toLocaleTimeString
	timeLabelLayout = "3:04:05 PM"

	sinkTimeout = 2 * time.Second
)

// FeedFetcher reads the feed of one channel.
type FeedFetcher interface {
	FetchFeeds(ctx context.Context, creds models.ChannelCredentials) (thingspeak.FeedResult, error)
}

// Dashboard is one mounted telemetry dashboard. It owns the current sample, the values
// derived from it and the chart history, and keeps them fresh by polling the feed.
type Dashboard struct {
	id    string
	owner int
	creds models.ChannelCredentials
	feeds FeedFetcher

	log          *logger.Logger
	now          func() time.Time
	interval     time.Duration
	historyLimit int
	recorder     SampleRecorder
	publisher    ViewPublisher
	events       EventRecorder

	mu        sync.Mutex
	state     models.DashboardState
	seeded    bool
	failing   bool
	unmounted bool
	cancel    context.CancelFunc
	loopDone  chan struct{}

	inFlight atomic.Bool
	polls    sync.WaitGroup

	// serializes PublishView against the ClearView of Unmount
	pubMu sync.Mutex
}

type DashboardOption func(*Dashboard)

// WithClock replaces time.Now for history labels and timestamps.
func WithClock(now func() time.Time) DashboardOption {
	return func(d *Dashboard) { d.now = now }
}

// WithOwner sets the user whose samples and events the dashboard records.
func WithOwner(ownerID int) DashboardOption {
	return func(d *Dashboard) { d.owner = ownerID }
}

// WithHistoryLimit bounds the chart history; 0 keeps everything.
func WithHistoryLimit(n int) DashboardOption {
	return func(d *Dashboard) {
		if n >= 0 {
			d.historyLimit = n
		}
	}
}

func WithInterval(iv time.Duration) DashboardOption {
	return func(d *Dashboard) {
		if iv > 0 {
			d.interval = iv
		}
	}
}

func WithLogger(l *logger.Logger) DashboardOption {
	return func(d *Dashboard) { d.log = logger.OrNop(l) }
}

func WithSampleRecorder(r SampleRecorder) DashboardOption {
	return func(d *Dashboard) { d.recorder = r }
}

func WithViewPublisher(p ViewPublisher) DashboardOption {
	return func(d *Dashboard) { d.publisher = p }
}

func WithEventRecorder(r EventRecorder) DashboardOption {
	return func(d *Dashboard) { d.events = r }
}

func NewDashboard(id string, creds models.ChannelCredentials, feeds FeedFetcher, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{
		id:           id,
		creds:        creds,
		feeds:        feeds,
		log:          logger.Nop(),
		now:          time.Now,
		interval:     DefaultPollInterval,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.state = models.DashboardState{
		SessionID: id,
		ChannelID: creds.ChannelID,
		Derived:   models.DeriveState(models.TelemetrySample{}, models.TelemetrySample{}),
		History:   models.NewHistorySeries(),
		Mounted:   true,
	}
	return d
}

func (d *Dashboard) ID() string { return d.id }

func (d *Dashboard) Owner() int { return d.owner }

func (d *Dashboard) Credentials() models.ChannelCredentials { return d.creds }

// Initialize seeds the dashboard from the payload fetched by the connection form, without
// a network call. It reports whether a sample was applied. An empty payload or one without
// feeds leaves the state untouched.
func (d *Dashboard) Initialize(ctx context.Context, payload json.RawMessage) (bool, error) {
	if len(payload) == 0 {
		return false, nil
	}
	p, err := thingspeak.Decode(payload)
	if err != nil {
		return false, fmt.Errorf("seed dashboard %s: %w", d.id, err)
	}
	sample, ok := thingspeak.LatestSample(p)
	if !ok {
		return false, nil
	}
	if err := d.apply(ctx, sample); err != nil {
		return false, err
	}

	d.mu.Lock()
	d.seeded = true
	d.mu.Unlock()
	return true, nil
}

// PollOnce fetches the feed and applies its newest entry. A failed request leaves the state
// as it was; an empty feed is not an error.
func (d *Dashboard) PollOnce(ctx context.Context) error {
	res, err := d.feeds.FetchFeeds(ctx, d.creds)
	if err != nil {
		d.fail(ctx, err)
		return err
	}
	sample, ok := thingspeak.LatestSample(res.Payload)
	if !ok {
		return nil
	}
	return d.apply(ctx, sample)
}

// apply is the single place where a new sample enters the state. The battery flag is
// computed from the sample being replaced.
func (d *Dashboard) apply(ctx context.Context, sample models.TelemetrySample) error {
	d.mu.Lock()
	if d.unmounted {
		d.mu.Unlock()
		return ErrNotMounted
	}
	now := d.now()
	d.state.Derived = models.DeriveState(d.state.Sample, sample)
	d.state.Sample = sample
	d.state.History.Append(now.Format(timeLabelLayout), sample.Velocity, sample.Current, d.historyLimit)
	d.state.Polls++
	d.state.LastError = ""
	d.state.UpdatedAt = now
	d.failing = false
	snap := d.snapshotLocked()
	d.mu.Unlock()

	d.emit(ctx, snap)
	return nil
}

func (d *Dashboard) fail(ctx context.Context, err error) {
	d.mu.Lock()
	if d.unmounted {
		d.mu.Unlock()
		return
	}
	d.state.Failures++
	d.state.LastError = err.Error()
	first := !d.failing
	d.failing = true
	d.mu.Unlock()

	d.log.Warnw("dashboard_poll_failed",
		"session_id", d.id,
		"channel_id", d.creds.ChannelID,
		"error", err,
	)

	if !first || d.events == nil {
		return
	}
	meta := map[string]any{}
	var se *thingspeak.StatusError
	if errors.As(err, &se) {
		meta["status"] = se.Code
	}
	ev := models.ConnectionEvent{
		OwnerID:     d.owner,
		Type:        models.EventPollError,
		ChannelID:   d.creds.ChannelID,
		SessionID:   d.id,
		Description: err.Error(),
		Metadata:    meta,
	}
	if aerr := d.events.Append(ctx, ev); aerr != nil {
		d.log.Errorw("event_append_failed", "type", ev.Type, "error", aerr)
	}
}

// emit hands an applied state to the optional sinks. Sink failures are logged only.
func (d *Dashboard) emit(ctx context.Context, st models.DashboardState) {
	if d.recorder == nil && d.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	if d.recorder != nil {
		rec := models.SampleRecord{
			OwnerID:    d.owner,
			SessionID:  d.id,
			ChannelID:  d.creds.ChannelID,
			Sample:     st.Sample,
			RecordedAt: st.UpdatedAt,
		}
		if err := d.recorder.Append(ctx, rec); err != nil {
			d.log.Warnw("sample_record_failed", "session_id", d.id, "error", err)
		}
	}
	if d.publisher != nil {
		d.publish(ctx, st)
	}
}

// publish hands the view to the publisher unless the dashboard was unmounted meanwhile, so
// a view never lands after Unmount cleared it.
func (d *Dashboard) publish(ctx context.Context, st models.DashboardState) {
	d.pubMu.Lock()
	defer d.pubMu.Unlock()

	d.mu.Lock()
	gone := d.unmounted
	d.mu.Unlock()
	if gone {
		return
	}
	if err := d.publisher.PublishView(ctx, Render(st)); err != nil {
		d.log.Warnw("view_publish_failed", "session_id", d.id, "error", err)
	}
}

// Run polls every interval until ctx is canceled. Unless the dashboard was seeded, the
// first poll happens right away.
func (d *Dashboard) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	d.mu.Lock()
	seeded := d.seeded
	d.mu.Unlock()
	if !seeded {
		d.tick(ctx)
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.tick(ctx)
		}
	}
}

// tick starts one poll unless the previous one is still running, in which case the tick
// is dropped. The poll outlives ctx; its result is discarded if the dashboard is unmounted
// by the time it lands.
func (d *Dashboard) tick(ctx context.Context) {
	if !d.inFlight.CompareAndSwap(false, true) {
		d.mu.Lock()
		d.state.Skipped++
		d.mu.Unlock()
		return
	}
	d.polls.Add(1)
	go func() {
		defer d.polls.Done()
		defer d.inFlight.Store(false)
		_ = d.PollOnce(context.WithoutCancel(ctx))
	}()
}

// OnEnter starts the polling loop on ctx and asks for landscape orientation.
func (d *Dashboard) OnEnter(ctx context.Context) models.ScreenOrientation {
	d.mu.Lock()
	if d.unmounted || d.cancel != nil {
		d.mu.Unlock()
		return models.OrientationLandscape
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.cancel = cancel
	d.loopDone = done
	interval := d.interval
	d.mu.Unlock()

	go func() {
		defer close(done)
		d.Run(loopCtx, interval)
	}()
	return models.OrientationLandscape
}

// OnExit unmounts the dashboard.
func (d *Dashboard) OnExit() { d.Unmount() }

// Unmount stops the polling loop. A request already on the wire is left to finish but its
// result is dropped. It reports whether this call did the unmount.
func (d *Dashboard) Unmount() bool {
	d.mu.Lock()
	if d.unmounted {
		d.mu.Unlock()
		return false
	}
	d.unmounted = true
	d.state.Mounted = false
	cancel, done := d.cancel, d.loopDone
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if d.publisher != nil {
		d.pubMu.Lock()
		defer d.pubMu.Unlock()
		ctx, cancelClear := context.WithTimeout(context.Background(), sinkTimeout)
		defer cancelClear()
		if err := d.publisher.ClearView(ctx, d.id); err != nil {
			d.log.Warnw("view_clear_failed", "session_id", d.id, "error", err)
		}
	}
	return true
}

// Wait blocks until polls already started have returned.
func (d *Dashboard) Wait() { d.polls.Wait() }

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() models.DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// View renders the current state.
func (d *Dashboard) View() models.DashboardView {
	return Render(d.Snapshot())
}

func (d *Dashboard) snapshotLocked() models.DashboardState {
	st := d.state
	st.History = d.state.History.Clone()
	return st
}
