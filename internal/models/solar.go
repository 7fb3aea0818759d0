package models

// SolarTelemetry is the most recent charge-controller snapshot.
type SolarTelemetry struct {
	PanelVoltage      *float64 `json:"panel_voltage"`
	PanelCurrent      *float64 `json:"panel_current"`
	LoadVoltage       *float64 `json:"load_voltage"`
	LoadCurrent       *float64 `json:"load_current"`
	LoadPower         *float64 `json:"load_power"`
	BatteryVoltage    *float64 `json:"battery_voltage"`
	BatteryCurrent    *float64 `json:"battery_current"`
	SunlightIntensity *float64 `json:"sunlight_intensity"`
	Timestamp         string   `json:"timestamp"`
}
