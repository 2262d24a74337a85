package service

import (
	"context"
	"testing"

	"ecoviewer/internal/models"
)

func TestRender_ScenarioFromFirstPoll(t *testing.T) {
	s := models.TelemetrySample{Voltage: 12.0, Current: 2.0, BatteryChargePercent: 80, Velocity: 55}
	d := NewDashboard("s-1", testCreds, newFakeFeeds(okStep(s)), WithClock(stepClock(t0)))
	if err := d.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	v := d.View()

	if v.Power.Text != "24.00 W" || v.Power.Value != 24 {
		t.Errorf("power = %+v", v.Power)
	}
	if v.Current.Text != "2.00 A" {
		t.Errorf("current = %+v", v.Current)
	}
	if v.Battery.On || v.Battery.Text != "Battery OFF" || v.Battery.Color != models.ColorRed {
		t.Errorf("battery = %+v", v.Battery)
	}
	if v.Gauge.VelocityText != "55 km/h" || v.Gauge.ChargeText != "Charge: 80%" {
		t.Errorf("gauge = %+v", v.Gauge)
	}
	if v.Lamp.Zone != models.ZoneNominal || v.Lamp.Color != models.ColorGreen {
		t.Errorf("lamp = %+v", v.Lamp)
	}
	if v.Orientation != models.OrientationLandscape {
		t.Errorf("orientation = %q", v.Orientation)
	}
	if len(v.Chart.Labels) != 1 || v.Chart.Labels[0] != "3:04:05 PM" {
		t.Errorf("labels = %v", v.Chart.Labels)
	}
}

func TestRender_LampZones(t *testing.T) {
	tests := []struct {
		velocity float64
		zone     models.IndicatorZone
		color    string
	}{
		{39.9, models.ZoneUnder, models.ColorOrange},
		{40, models.ZoneNominal, models.ColorGreen},
		{70, models.ZoneNominal, models.ColorGreen},
		{70.1, models.ZoneOver, models.ColorRed},
		{0, models.ZoneUnder, models.ColorOrange},
	}
	for _, tt := range tests {
		st := models.DashboardState{
			Sample:  models.TelemetrySample{Velocity: tt.velocity},
			Derived: models.DeriveState(models.TelemetrySample{}, models.TelemetrySample{Velocity: tt.velocity}),
		}
		lamp := Render(st).Lamp
		if lamp.Zone != tt.zone || lamp.Color != tt.color {
			t.Errorf("velocity %v: lamp = %+v, want %s/%s", tt.velocity, lamp, tt.zone, tt.color)
		}
	}
}

func TestRender_BatteryOnAndChart(t *testing.T) {
	h := models.NewHistorySeries()
	h.Append("1:00:00 PM", 50.5, 1.25, 0)
	h.Append("1:00:01 PM", 51, 1.5, 0)

	v := Render(models.DashboardState{
		Sample:  models.TelemetrySample{Velocity: 51, Current: 1.5, BatteryChargePercent: 72.5},
		Derived: models.DerivedState{BatteryOn: true, IndicatorZone: models.ZoneNominal},
		History: h,
	})

	if !v.Battery.On || v.Battery.Text != "Battery ON" || v.Battery.Color != models.ColorGreen {
		t.Errorf("battery = %+v", v.Battery)
	}
	if v.Gauge.ChargeText != "Charge: 72.5%" {
		t.Errorf("charge text = %q", v.Gauge.ChargeText)
	}
	if v.Chart.Title != "Velocity & Current" || len(v.Chart.Series) != 2 {
		t.Fatalf("chart = %+v", v.Chart)
	}
	vel, cur := v.Chart.Series[0], v.Chart.Series[1]
	if vel.Color != "#ff4500" || cur.Color != "#ff6347" {
		t.Errorf("series colours = %s, %s", vel.Color, cur.Color)
	}
	if len(vel.Data) != 2 || vel.Data[0] != 50.5 || cur.Data[1] != 1.5 {
		t.Errorf("series data = %v, %v", vel.Data, cur.Data)
	}

	// the view must not alias the state's history
	v.Chart.Labels[0] = "changed"
	if h.TimeLabels[0] != "1:00:00 PM" {
		t.Fatal("render leaked history slice")
	}
}
