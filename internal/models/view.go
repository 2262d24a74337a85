package models

// Colours used by the dashboard widgets.
const (
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorOrange = "orange"

	ColorVelocitySeries = "#ff4500"
	ColorCurrentSeries  = "#ff6347"
)

// Readout is a labelled numeric value with its display text.
type Readout struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

type BatteryBadge struct {
	On    bool   `json:"on"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

type Gauge struct {
	Velocity      float64 `json:"velocity"`
	ChargePercent float64 `json:"charge_percent"`
	VelocityText  string  `json:"velocity_text"`
	ChargeText    string  `json:"charge_text"`
}

type Lamp struct {
	Zone  IndicatorZone `json:"zone"`
	Color string        `json:"color"`
}

type ChartSeries struct {
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	StrokeWidth int       `json:"stroke_width"`
	Data        []float64 `json:"data"`
}

type Chart struct {
	Title  string        `json:"title"`
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// DashboardView is everything a client needs to draw the dashboard screen.
type DashboardView struct {
	SessionID   string            `json:"session_id"`
	ChannelID   string            `json:"channel_id"`
	Orientation ScreenOrientation `json:"orientation"`
	Power       Readout           `json:"power"`
	Current     Readout           `json:"current"`
	Battery     BatteryBadge      `json:"battery"`
	Gauge       Gauge             `json:"gauge"`
	Lamp        Lamp              `json:"lamp"`
	Chart       Chart             `json:"chart"`
}
