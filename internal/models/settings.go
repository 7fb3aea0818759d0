package models

import "sort"

// ActuatorSettings is the persisted settings row plus device-reported status.
//
// Fan 1 and fan 3 speeds are reported by the device; fan 2 and fan 4 are
// operator-controlled. Status flags are always device-reported.
type ActuatorSettings struct {
	TemperatureSetpoint *float64 `json:"temperature_setpoint"`
	ACTimerOn           *string  `json:"ac_timer_on"`  // "07:00:00"
	ACTimerOff          *string  `json:"ac_timer_off"` // "22:30:00"

	Fan1SpeedPercent *int `json:"fan_1_speed_percent"`
	Fan2SpeedPercent *int `json:"fan_2_speed_percent"`
	Fan3SpeedPercent *int `json:"fan_3_speed_percent"`
	Fan4SpeedPercent *int `json:"fan_4_speed_percent"`

	Fan1Status     *bool `json:"fan_1_status"`
	Fan2Status     *bool `json:"fan_2_status"`
	Fan3Status     *bool `json:"fan_3_status"`
	Fan4Status     *bool `json:"fan_4_status"`
	Pump1Status    *bool `json:"pump_1_status"`
	Pump2Status    *bool `json:"pump_2_status"`
	Peltier1Status *bool `json:"peltier_1_status"`
	Peltier2Status *bool `json:"peltier_2_status"`

	UpdatedAt string `json:"updated_at"`
}

// Writable field names accepted by PATCH /api/settings.
const (
	FieldTemperatureSetpoint = "temperature_setpoint"
	FieldACTimerOn           = "ac_timer_on"
	FieldACTimerOff          = "ac_timer_off"
	FieldFan2Speed           = "fan_2_speed_percent"
	FieldFan4Speed           = "fan_4_speed_percent"
)

// SettingsPatch is a partial update body. Keys that are absent stay
// unchanged on the backend.
type SettingsPatch map[string]any

// Fields returns the patch keys in sorted order.
func (p SettingsPatch) Fields() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
