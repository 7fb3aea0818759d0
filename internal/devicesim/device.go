// Package devicesim is a fake device backend: simulated sensors, a solar
// charge controller and the actuator settings row, served over the same
// HTTP API the dashboard consumes.
package devicesim

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"
)

// Simulation constants.
const (
	AmbientC         = 24.0 // ambient temperature °C
	CoolCPerSec      = 0.05 // Peltier cooling rate at full fan speed
	DriftCPerSec     = 0.02 // drift toward ambient
	SetpointBandC    = 0.5  // hysteresis around the setpoint
	BatteryDrainStep = 0.0005
	DefaultHistory   = 20000
)

// Sensor is one simulated temperature probe.
type Sensor struct {
	ID      string
	Name    string
	Type    string
	TempC   float64
	Battery *float64 // nil for wired probes
}

type record struct {
	at      time.Time
	sensor  Sensor
	skipped bool // the probe did not report this tick
}

// Config seeds a Device.
type Config struct {
	Sensors    []Sensor
	StartEmpty bool // no settings row until the first PATCH
	MaxHistory int
	Seed       int64
	Now        func() time.Time
}

// Device holds the simulated state. Safe for concurrent use.
type Device struct {
	mu       sync.Mutex
	sensors  []Sensor
	settings *models.ActuatorSettings
	solar    *models.SolarTelemetry
	history  []record
	maxHist  int
	rng      *rand.Rand
	now      func() time.Time
	last     time.Time
}

// DefaultSensors mixes wired and battery probes.
func DefaultSensors() []Sensor {
	b1, b2 := 0.92, 0.41
	return []Sensor{
		{ID: "28-0001", Name: "Block 1", Type: "DS18B20", TempC: 26},
		{ID: "28-0002", Name: "Block 2", Type: "DS18B20", TempC: 27},
		{ID: "ble-01", Name: "Living Room", Type: "BLE", TempC: 22, Battery: &b1},
		{ID: "ble-02", Name: "Attic", Type: "BLE", TempC: 31, Battery: &b2},
	}
}

// New builds a device from cfg.
func New(cfg Config) *Device {
	sensors := cfg.Sensors
	if len(sensors) == 0 {
		sensors = DefaultSensors()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	maxHist := cfg.MaxHistory
	if maxHist <= 0 {
		maxHist = DefaultHistory
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	d := &Device{
		sensors: append([]Sensor(nil), sensors...),
		maxHist: maxHist,
		rng:     rand.New(rand.NewSource(seed)),
		now:     now,
	}
	if !cfg.StartEmpty {
		d.settings = defaultSettings(now())
	}
	return d
}

func defaultSettings(now time.Time) *models.ActuatorSettings {
	sp := 22.0
	on, off := "07:00:00", "22:30:00"
	f2, f4 := 40, 60
	return &models.ActuatorSettings{
		TemperatureSetpoint: &sp,
		ACTimerOn:           &on,
		ACTimerOff:          &off,
		Fan2SpeedPercent:    &f2,
		Fan4SpeedPercent:    &f4,
		UpdatedAt:           now.UTC().Format(time.RFC3339),
	}
}

// Run steps the simulation every tick until ctx is canceled.
func (d *Device) Run(ctx context.Context, tick time.Duration, log *logger.Logger) {
	log = log.Named("devicesim")
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.Step()
			log.Debugw("device_stepped", "history", d.HistoryLen())
		}
	}
}

// Step advances the simulation to d.now() and records one reading per sensor.
func (d *Device) Step() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now().UTC()
	elapsed := 1.0
	if !d.last.IsZero() {
		elapsed = now.Sub(d.last).Seconds()
	}
	if elapsed <= 0 {
		return
	}
	d.last = now

	cooling := d.updateActuators()
	for i := range d.sensors {
		s := &d.sensors[i]
		s.TempC += (AmbientC - s.TempC) * math.Min(1, DriftCPerSec*elapsed)
		if cooling > 0 && s.Type != "BLE" {
			s.TempC -= CoolCPerSec * cooling * elapsed
		}
		s.TempC += (d.rng.Float64() - 0.5) * 0.1
		if s.Battery != nil {
			b := math.Max(0, *s.Battery-BatteryDrainStep)
			s.Battery = &b
		}
		// battery probes miss the odd report
		skipped := s.Battery != nil && d.rng.Intn(20) == 0
		d.append(record{at: now, sensor: *s, skipped: skipped})
	}
	d.solar = solarAt(now, d.rng)
}

// updateActuators derives device-reported status from the settings and the
// hottest wired probe. It returns the cooling effort in [0,1].
func (d *Device) updateActuators() float64 {
	s := d.settings
	if s == nil || s.TemperatureSetpoint == nil {
		return 0
	}
	hottest := math.Inf(-1)
	for _, sn := range d.sensors {
		if sn.Type != "BLE" && sn.TempC > hottest {
			hottest = sn.TempC
		}
	}
	on := hottest > *s.TemperatureSetpoint+SetpointBandC
	if !on && s.Peltier1Status != nil && *s.Peltier1Status {
		// hysteresis: keep cooling until below the band
		on = hottest > *s.TemperatureSetpoint-SetpointBandC
	}

	speed := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	f2, f4 := speed(s.Fan2SpeedPercent), speed(s.Fan4SpeedPercent)
	f1, f3 := 0, 0
	if on {
		f1, f3 = 100, 80
	}
	s.Fan1SpeedPercent, s.Fan3SpeedPercent = &f1, &f3
	s.Fan1Status, s.Fan2Status = boolPtr(f1 > 0), boolPtr(f2 > 0)
	s.Fan3Status, s.Fan4Status = boolPtr(f3 > 0), boolPtr(f4 > 0)
	s.Pump1Status, s.Pump2Status = boolPtr(on), boolPtr(on)
	s.Peltier1Status, s.Peltier2Status = boolPtr(on), boolPtr(on)
	if !on {
		return 0
	}
	return float64(f2+f4) / 200
}

func (d *Device) append(r record) {
	d.history = append(d.history, r)
	if over := len(d.history) - d.maxHist; over > 0 {
		d.history = append(d.history[:0], d.history[over:]...)
	}
}

func solarAt(now time.Time, rng *rand.Rand) *models.SolarTelemetry {
	hour := float64(now.Hour()) + float64(now.Minute())/60
	sun := math.Max(0, math.Sin((hour-6)/12*math.Pi)) * 1000
	panelV := 12 + sun/100 + rng.Float64()*0.2
	panelC := sun / 250
	loadV := 12.6 + rng.Float64()*0.1
	loadC := 0.8 + rng.Float64()*0.2
	loadP := loadV * loadC
	battV := 12.4 + sun/2000
	battC := panelC - loadC
	return &models.SolarTelemetry{
		PanelVoltage:      &panelV,
		PanelCurrent:      &panelC,
		LoadVoltage:       &loadV,
		LoadCurrent:       &loadC,
		LoadPower:         &loadP,
		BatteryVoltage:    &battV,
		BatteryCurrent:    &battC,
		SunlightIntensity: &sun,
		Timestamp:         now.Format(time.RFC3339),
	}
}

func boolPtr(b bool) *bool { return &b }

// HistoryLen reports the number of stored readings.
func (d *Device) HistoryLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}

func (r record) reading() models.RawReading {
	var temp *float64
	if !r.skipped {
		t := math.Round(r.sensor.TempC*100) / 100
		temp = &t
	}
	b, _ := json.Marshal(models.TemperatureReading{
		SensorID:     models.FlexString(r.sensor.ID),
		SensorName:   r.sensor.Name,
		Temperature:  temp,
		SensorType:   r.sensor.Type,
		BatteryLevel: r.sensor.Battery,
		Timestamp:    r.at.Format(time.RFC3339Nano),
	})
	return models.RawReading(b)
}

// Status returns the combined snapshot: the latest reading per sensor.
func (d *Device) Status() models.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	latest := map[string]record{}
	for _, r := range d.history {
		latest[r.sensor.ID] = r
	}
	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	st := models.Status{Temperatures: make([]models.RawReading, 0, len(ids))}
	for _, id := range ids {
		st.Temperatures = append(st.Temperatures, latest[id].reading())
	}
	if d.solar != nil {
		s := *d.solar
		st.SolarData = &s
	}
	if d.settings != nil {
		s := *d.settings
		st.CurrentSettings = &s
	}
	return st
}

// Settings returns a copy of the settings row, nil if none exists yet.
func (d *Device) Settings() *models.ActuatorSettings {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settings == nil {
		return nil
	}
	s := *d.settings
	return &s
}

// History returns up to q.Limit readings, newest first.
func (d *Device) History(q models.HistoryQuery) []models.RawReading {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.RawReading, 0, q.Limit)
	for i := len(d.history) - 1; i >= 0 && len(out) < q.Limit; i-- {
		r := d.history[i]
		if q.SensorName != "" && r.sensor.Name != q.SensorName {
			continue
		}
		if q.StartTime != nil && r.at.Before(*q.StartTime) {
			break
		}
		out = append(out, r.reading())
	}
	return out
}
