package models

import "time"

// Status is the combined snapshot served by GET /status.
type Status struct {
	Temperatures    []RawReading      `json:"temperatures"`
	SolarData       *SolarTelemetry   `json:"solar_data"`
	CurrentSettings *ActuatorSettings `json:"current_settings"`
}

// HistoryQuery selects readings from GET /api/temperature_history.
type HistoryQuery struct {
	Limit      int
	SensorName string     // empty means all sensors
	StartTime  *time.Time // nil means no lower bound
}
