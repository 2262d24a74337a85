package models

import "testing"

func TestZoneFor_Boundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want IndicatorZone
	}{
		{39.99, ZoneUnder},
		{40, ZoneNominal},
		{55, ZoneNominal},
		{70, ZoneNominal},
		{70.01, ZoneOver},
		{0, ZoneUnder},
		{-5, ZoneUnder},
	}
	for _, tc := range cases {
		if got := ZoneFor(tc.v); got != tc.want {
			t.Errorf("ZoneFor(%v)=%q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestDeriveState_PowerAndLaggedBattery(t *testing.T) {
	prev := TelemetrySample{Voltage: 0}
	next := TelemetrySample{Voltage: 12, Current: 2, Velocity: 55}

	d := DeriveState(prev, next)
	if d.PowerWatts != 24 {
		t.Fatalf("power: got %v, want 24", d.PowerWatts)
	}
	if d.BatteryOn {
		t.Fatalf("battery must follow previous voltage (0), got on")
	}
	if d.IndicatorZone != ZoneNominal {
		t.Fatalf("zone: got %q", d.IndicatorZone)
	}

	d = DeriveState(next, TelemetrySample{})
	if !d.BatteryOn {
		t.Fatalf("battery must be on when previous voltage was 12")
	}
}

func TestHistorySeries_AppendKeepsLockstep(t *testing.T) {
	h := NewHistorySeries()
	for i := 0; i < 5; i++ {
		h.Append("t", float64(i), float64(i*10), 0)
	}
	if h.Len() != 5 || len(h.VelocityHistory) != 5 || len(h.CurrentHistory) != 5 {
		t.Fatalf("lengths out of step: %d %d %d", len(h.TimeLabels), len(h.VelocityHistory), len(h.CurrentHistory))
	}
}

func TestHistorySeries_AppendEvictsOldest(t *testing.T) {
	h := NewHistorySeries()
	labels := []string{"a", "b", "c", "d"}
	for i, l := range labels {
		h.Append(l, float64(i), float64(i), 3)
	}
	if h.Len() != 3 {
		t.Fatalf("len: got %d, want 3", h.Len())
	}
	if h.TimeLabels[0] != "b" || h.VelocityHistory[0] != 1 || h.CurrentHistory[2] != 3 {
		t.Fatalf("unexpected window: %+v", h)
	}
}

func TestHistorySeries_CloneIsIndependent(t *testing.T) {
	h := NewHistorySeries()
	h.Append("a", 1, 2, 0)
	c := h.Clone()
	c.VelocityHistory[0] = 99
	if h.VelocityHistory[0] != 1 {
		t.Fatalf("clone shares backing array")
	}
}

func TestParseConnectionType(t *testing.T) {
	cases := map[string]ConnectionType{
		"":         ConnectionPublic,
		"Public":   ConnectionPublic,
		"PRIVATE ": ConnectionPrivate,
	}
	for in, want := range cases {
		got, ok := ParseConnectionType(in)
		if !ok || got != want {
			t.Errorf("ParseConnectionType(%q)=%q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseConnectionType("secret"); ok {
		t.Errorf("unknown type must be rejected")
	}
}
