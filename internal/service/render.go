package service

import (
	"fmt"
	"strconv"

	"ecoviewer/internal/models"
)

const (
	chartTitle       = "Velocity & Current"
	chartStrokeWidth = 2
)

// Render maps a dashboard state to its view model. It has no side effects.
func Render(st models.DashboardState) models.DashboardView {
	battery := models.BatteryBadge{On: st.Derived.BatteryOn, Text: "Battery OFF", Color: models.ColorRed}
	if st.Derived.BatteryOn {
		battery.Text = "Battery ON"
		battery.Color = models.ColorGreen
	}

	zone := st.Derived.IndicatorZone
	if zone == "" {
		zone = models.ZoneFor(st.Sample.Velocity)
	}

	h := st.History.Clone()

	return models.DashboardView{
		SessionID:   st.SessionID,
		ChannelID:   st.ChannelID,
		Orientation: models.OrientationLandscape,
		Power: models.Readout{
			Label: "P",
			Value: st.Derived.PowerWatts,
			Text:  fmt.Sprintf("%.2f W", st.Derived.PowerWatts),
		},
		Current: models.Readout{
			Label: "I",
			Value: st.Sample.Current,
			Text:  fmt.Sprintf("%.2f A", st.Sample.Current),
		},
		Battery: battery,
		Gauge: models.Gauge{
			Velocity:      st.Sample.Velocity,
			ChargePercent: st.Sample.BatteryChargePercent,
			VelocityText:  shortNumber(st.Sample.Velocity) + " km/h",
			ChargeText:    "Charge: " + shortNumber(st.Sample.BatteryChargePercent) + "%",
		},
		Lamp: models.Lamp{Zone: zone, Color: lampColor(zone)},
		Chart: models.Chart{
			Title:  chartTitle,
			Labels: h.TimeLabels,
			Series: []models.ChartSeries{
				{Name: "velocity", Color: models.ColorVelocitySeries, StrokeWidth: chartStrokeWidth, Data: h.VelocityHistory},
				{Name: "current", Color: models.ColorCurrentSeries, StrokeWidth: chartStrokeWidth, Data: h.CurrentHistory},
			},
		},
	}
}

func lampColor(z models.IndicatorZone) string {
	switch z {
	case models.ZoneOver:
		return models.ColorRed
	case models.ZoneUnder:
		return models.ColorOrange
	default:
		return models.ColorGreen
	}
}

// shortNumber prints v the way a JS template literal would: 55 -> "55", 55.5 -> "55.5".
func shortNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
