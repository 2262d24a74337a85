package models

import "time"

// Velocity band (inclusive) that lights the lamp green.
const (
	NominalVelocityMin = 40.0
	NominalVelocityMax = 70.0
)

// TelemetrySample is the latest parsed reading. It is replaced wholesale on every update.
type TelemetrySample struct {
	Voltage              float64 `json:"voltage"`
	Current              float64 `json:"current"`
	BatteryChargePercent float64 `json:"battery_charge_percent"`
	Velocity             float64 `json:"velocity"`
}

// IndicatorZone classifies velocity against the nominal band.
type IndicatorZone string

const (
	ZoneNominal IndicatorZone = "nominal"
	ZoneOver    IndicatorZone = "over"
	ZoneUnder   IndicatorZone = "under"
)

// ZoneFor returns the zone of v relative to [NominalVelocityMin, NominalVelocityMax].
func ZoneFor(v float64) IndicatorZone {
	switch {
	case v > NominalVelocityMax:
		return ZoneOver
	case v < NominalVelocityMin:
		return ZoneUnder
	default:
		return ZoneNominal
	}
}

// DerivedState holds the values computed from a sample.
type DerivedState struct {
	PowerWatts    float64       `json:"power_watts"`
	BatteryOn     bool          `json:"battery_on"`
	IndicatorZone IndicatorZone `json:"indicator_zone"`
}

// DeriveState computes the derived values for next. BatteryOn looks at the voltage of prev,
// the sample that was current before this update, so the flag trails the readings by one tick.
func DeriveState(prev, next TelemetrySample) DerivedState {
	return DerivedState{
		PowerWatts:    next.Voltage * next.Current,
		BatteryOn:     prev.Voltage != 0,
		IndicatorZone: ZoneFor(next.Velocity),
	}
}

// HistorySeries is the chart history. All three slices always have the same length.
type HistorySeries struct {
	TimeLabels      []string  `json:"time_labels"`
	VelocityHistory []float64 `json:"velocity_history"`
	CurrentHistory  []float64 `json:"current_history"`
}

// NewHistorySeries returns an empty, non-nil series.
func NewHistorySeries() HistorySeries {
	return HistorySeries{
		TimeLabels:      []string{},
		VelocityHistory: []float64{},
		CurrentHistory:  []float64{},
	}
}

// Len returns the number of entries.
func (h HistorySeries) Len() int {
	return len(h.TimeLabels)
}

// Append adds one entry to all three sequences. When limit > 0 the oldest entries are
// dropped so that at most limit remain.
func (h *HistorySeries) Append(label string, velocity, current float64, limit int) {
	h.TimeLabels = append(h.TimeLabels, label)
	h.VelocityHistory = append(h.VelocityHistory, velocity)
	h.CurrentHistory = append(h.CurrentHistory, current)

	if limit > 0 && len(h.TimeLabels) > limit {
		drop := len(h.TimeLabels) - limit
		h.TimeLabels = append([]string(nil), h.TimeLabels[drop:]...)
		h.VelocityHistory = append([]float64(nil), h.VelocityHistory[drop:]...)
		h.CurrentHistory = append([]float64(nil), h.CurrentHistory[drop:]...)
	}
}

// Clone returns a deep copy safe to hand out of a lock.
func (h HistorySeries) Clone() HistorySeries {
	return HistorySeries{
		TimeLabels:      append([]string{}, h.TimeLabels...),
		VelocityHistory: append([]float64{}, h.VelocityHistory...),
		CurrentHistory:  append([]float64{}, h.CurrentHistory...),
	}
}

// DashboardState is a point-in-time copy of one mounted dashboard.
type DashboardState struct {
	SessionID string          `json:"session_id"`
	ChannelID string          `json:"channel_id"`
	Sample    TelemetrySample `json:"sample"`
	Derived   DerivedState    `json:"derived"`
	History   HistorySeries   `json:"history"`
	Polls     int             `json:"polls"`    // successful updates, seed included
	Skipped   int             `json:"skipped"`  // ticks dropped by the in-flight guard
	Failures  int             `json:"failures"` // failed polls
	LastError string          `json:"last_error,omitempty"`
	Mounted   bool            `json:"mounted"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SampleRecord is a sample as stored by the sample history. OwnerID is the user whose
// dashboard recorded it.
type SampleRecord struct {
	ID         int64           `json:"id"`
	OwnerID    int             `json:"owner_id"`
	SessionID  string          `json:"session_id"`
	ChannelID  string          `json:"channel_id"`
	Sample     TelemetrySample `json:"sample"`
	RecordedAt time.Time       `json:"recorded_at"`
}
