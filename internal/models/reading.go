package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TemperatureReading is a single sensor snapshot reported by the backend.
type TemperatureReading struct {
	SensorID     FlexString `json:"sensor_id"`
	SensorName   string     `json:"sensor_name"`
	Temperature  *float64   `json:"temperature"`   // °C, null when the sensor did not report
	SensorType   string     `json:"sensor_type"`   // e.g. DS18B20, BLE
	BatteryLevel *float64   `json:"battery_level"` // ratio in [0,1], null for wired sensors
	Timestamp    string     `json:"timestamp"`     // ISO-8601
}

// RawReading keeps a reading undecoded so one malformed entry cannot
// spoil the whole array.
type RawReading json.RawMessage

// MarshalJSON returns the raw bytes.
func (r RawReading) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// UnmarshalJSON stores a copy of the raw bytes.
func (r *RawReading) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

// Decode parses the reading. A JSON null or non-object is an error.
func (r RawReading) Decode() (TemperatureReading, error) {
	var out TemperatureReading
	trimmed := bytes.TrimSpace(r)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out, fmt.Errorf("reading is not an object: %s", string(trimmed))
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("decode reading: %w", err)
	}
	return out, nil
}

// FlexString accepts a JSON string or number; device ids come as either.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, string(b) == "null":
		*f = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("sensor id must be string or number: %w", err)
		}
		if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
			return err
		}
		*f = FlexString(n.String())
		return nil
	}
}
