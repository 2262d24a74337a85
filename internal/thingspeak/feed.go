package thingspeak

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"ecoviewer/internal/models"
)

// Positions of the dashboard readings in a feed entry.
const (
	fieldVoltage       = 1
	fieldCurrent       = 2
	fieldBatteryCharge = 3
	fieldVelocity      = 4
)

// FeedPayload is the body of feeds.json.
type FeedPayload struct {
	Channel map[string]any `json:"channel,omitempty"`
	Feeds   []Feed         `json:"feeds"`
}

// Feed is one entry. Field values arrive as strings, numbers or null.
type Feed map[string]any

// Field returns fieldN, or nil when absent.
func (f Feed) Field(n int) any {
	return f["field"+strconv.Itoa(n)]
}

// UnmarshalJSON accepts any JSON value. An entry that is not an object decodes as an empty
// feed, so its fields read as absent instead of failing the whole payload.
func (f *Feed) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		*f = Feed{}
		return nil
	}
	*f = Feed(m)
	return nil
}

// CreatedAt returns the entry timestamp as sent by the server.
func (f Feed) CreatedAt() string {
	return cast.ToString(f["created_at"])
}

// Decode parses a feed payload.
func Decode(body []byte) (FeedPayload, error) {
	var p FeedPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return FeedPayload{}, fmt.Errorf("%w: %s", ErrDecode, err.Error())
	}
	return p, nil
}

// LatestSample extracts the reading from the last feed entry. It reports false when the
// payload has no entries.
func LatestSample(p FeedPayload) (models.TelemetrySample, bool) {
	if len(p.Feeds) == 0 {
		return models.TelemetrySample{}, false
	}
	return SampleFromFeed(p.Feeds[len(p.Feeds)-1]), true
}

// SampleFromFeed maps field1..field4 onto a sample, each one coerced on its own.
func SampleFromFeed(f Feed) models.TelemetrySample {
	return models.TelemetrySample{
		Voltage:              Coerce(f.Field(fieldVoltage)),
		Current:              Coerce(f.Field(fieldCurrent)),
		BatteryChargePercent: Coerce(f.Field(fieldBatteryCharge)),
		Velocity:             Coerce(f.Field(fieldVelocity)),
	}
}

var numericPrefix = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Coerce turns a field value into a number. Strings parse up to their longest numeric
// prefix ("12.5V" is 12.5). Anything that does not yield a finite number is 0.
func Coerce(v any) float64 {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case nil, bool:
		return 0
	case string:
		m := numericPrefix.FindString(t)
		if m == "" {
			return 0
		}
		f, err = cast.ToFloat64E(strings.TrimSpace(m))
	default:
		f, err = cast.ToFloat64E(t)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
