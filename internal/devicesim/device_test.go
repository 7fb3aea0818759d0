package devicesim

import (
	"encoding/json"
	"testing"
	"time"

	"thermo_dashboard/internal/models"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDevice(cfg Config) (*Device, *clock) {
	c := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cfg.Now = c.now
	return New(cfg), c
}

func body(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad test body: %v", err)
	}
	return m
}

func TestPatch_PartialUpdate(t *testing.T) {
	t.Parallel()
	d, _ := newTestDevice(Config{})
	before := d.Settings()

	saved, problems := d.Patch(body(t, `{"fan_4_speed_percent": 85, "ac_timer_on": "06:15"}`))
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %+v", problems)
	}
	if *saved.Fan4SpeedPercent != 85 || *saved.ACTimerOn != "06:15:00" {
		t.Fatalf("patch not applied: %+v", saved)
	}
	if *saved.Fan2SpeedPercent != *before.Fan2SpeedPercent || *saved.TemperatureSetpoint != *before.TemperatureSetpoint {
		t.Fatalf("untouched fields changed")
	}
}

func TestPatch_NullClearsOptionalFields(t *testing.T) {
	t.Parallel()
	d, _ := newTestDevice(Config{})
	saved, problems := d.Patch(body(t, `{"ac_timer_off": null, "temperature_setpoint": null}`))
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %+v", problems)
	}
	if saved.ACTimerOff != nil || saved.TemperatureSetpoint != nil {
		t.Fatalf("fields not cleared: %+v", saved)
	}
}

func TestPatch_RejectsInvalidAndAppliesNothing(t *testing.T) {
	t.Parallel()
	d, _ := newTestDevice(Config{})
	before := d.Settings()

	_, problems := d.Patch(body(t, `{"fan_2_speed_percent": 150, "temperature_setpoint": 21, "fan_1_speed_percent": 10}`))
	if len(problems) != 2 {
		t.Fatalf("want 2 problems, got %+v", problems)
	}
	if problems[0].Loc[1] != "fan_1_speed_percent" || problems[1].Loc[1] != "fan_2_speed_percent" {
		t.Fatalf("unexpected order: %+v", problems)
	}
	if *d.Settings().TemperatureSetpoint != *before.TemperatureSetpoint {
		t.Fatalf("invalid patch must not be applied partially")
	}
}

func TestStartEmpty(t *testing.T) {
	t.Parallel()
	d, _ := newTestDevice(Config{StartEmpty: true})
	if d.Settings() != nil {
		t.Fatalf("expected no settings")
	}
	if _, problems := d.Patch(body(t, `{"fan_2_speed_percent": 10}`)); len(problems) != 0 {
		t.Fatalf("unexpected problems: %+v", problems)
	}
	if s := d.Settings(); s == nil || *s.Fan2SpeedPercent != 10 {
		t.Fatalf("settings row not created: %+v", s)
	}
}

func TestStep_RecordsHistoryAndStatus(t *testing.T) {
	t.Parallel()
	d, c := newTestDevice(Config{MaxHistory: 10})
	for i := 0; i < 5; i++ {
		d.Step()
		c.advance(time.Second)
	}
	if n := d.HistoryLen(); n != 10 {
		t.Fatalf("history capped at 10, got %d", n)
	}

	st := d.Status()
	if len(st.Temperatures) != len(DefaultSensors()) {
		t.Fatalf("want one reading per sensor, got %d", len(st.Temperatures))
	}
	if st.SolarData == nil || st.CurrentSettings == nil {
		t.Fatalf("snapshot incomplete: %+v", st)
	}
	if st.CurrentSettings.Fan1Status == nil {
		t.Fatalf("status flags not derived")
	}
}

func TestHistory_Filters(t *testing.T) {
	t.Parallel()
	d, c := newTestDevice(Config{})
	start := c.t
	for i := 0; i < 10; i++ {
		d.Step()
		c.advance(time.Minute)
	}

	got := d.History(models.HistoryQuery{Limit: 3, SensorName: "Block 1"})
	if len(got) != 3 {
		t.Fatalf("want 3, got %d", len(got))
	}
	for _, raw := range got {
		rd, err := raw.Decode()
		if err != nil || rd.SensorName != "Block 1" {
			t.Fatalf("unexpected reading %s (%v)", raw, err)
		}
	}

	since := start.Add(8 * time.Minute)
	got = d.History(models.HistoryQuery{Limit: 1000, StartTime: &since})
	if len(got) != 2*len(DefaultSensors()) {
		t.Fatalf("want readings of the last 2 steps, got %d", len(got))
	}
}
