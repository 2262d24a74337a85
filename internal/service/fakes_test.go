package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"ecoviewer/internal/models"
	"ecoviewer/internal/thingspeak"
)

type fetchStep struct {
	res thingspeak.FeedResult
	err error
}

// fakeFeeds replays steps in order and repeats the last one. When gate is set every call
// blocks until the gate is closed.
type fakeFeeds struct {
	mu       sync.Mutex
	steps    []fetchStep
	calls    int
	gotCreds []models.ChannelCredentials

	gate    chan struct{}
	entered chan struct{}
}

func newFakeFeeds(steps ...fetchStep) *fakeFeeds {
	return &fakeFeeds{steps: steps, entered: make(chan struct{}, 64)}
}

func (f *fakeFeeds) FetchFeeds(_ context.Context, creds models.ChannelCredentials) (thingspeak.FeedResult, error) {
	f.mu.Lock()
	f.calls++
	f.gotCreds = append(f.gotCreds, creds)
	var st fetchStep
	if len(f.steps) > 0 {
		st = f.steps[0]
		if len(f.steps) > 1 {
			f.steps = f.steps[1:]
		}
	}
	gate := f.gate
	f.mu.Unlock()

	select {
	case f.entered <- struct{}{}:
	default:
	}
	if gate != nil {
		<-gate
	}
	return st.res, st.err
}

func (f *fakeFeeds) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okStep(samples ...models.TelemetrySample) fetchStep {
	return fetchStep{res: feedOf(samples...)}
}

func failStep(err error) fetchStep {
	return fetchStep{err: err}
}

// feedOf builds a feed result whose entries carry the samples as strings, the way the
// feed API sends them.
func feedOf(samples ...models.TelemetrySample) thingspeak.FeedResult {
	p := thingspeak.FeedPayload{Channel: map[string]any{"id": 12397}, Feeds: []thingspeak.Feed{}}
	for i, s := range samples {
		p.Feeds = append(p.Feeds, thingspeak.Feed{
			"entry_id": i + 1,
			"field1":   fmtFloat(s.Voltage),
			"field2":   fmtFloat(s.Current),
			"field3":   fmtFloat(s.BatteryChargePercent),
			"field4":   fmtFloat(s.Velocity),
		})
	}
	raw, _ := json.Marshal(p)
	return thingspeak.FeedResult{Payload: p, Raw: raw}
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []models.SampleRecord
}

func (r *fakeRecorder) Append(_ context.Context, rec models.SampleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	views   []models.DashboardView
	cleared []string
}

func (p *fakePublisher) PublishView(_ context.Context, v models.DashboardView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
	return nil
}

func (p *fakePublisher) ClearView(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared = append(p.cleared, id)
	return nil
}
