package devicesim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	"thermo_dashboard/internal/models"
)

// Detail is one FastAPI-style validation entry.
type Detail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(:([0-5]\d))?$`)

func detail(field, msg, typ string) Detail {
	return Detail{Loc: []any{"body", field}, Msg: msg, Type: typ}
}

// Patch applies a partial update. Absent keys are left alone; null clears
// the setpoint and timers. Nothing is applied when any entry is invalid.
func (d *Device) Patch(body map[string]json.RawMessage) (*models.ActuatorSettings, []Detail) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := models.ActuatorSettings{}
	if d.settings != nil {
		next = *d.settings
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var problems []Detail
	for _, k := range keys {
		raw := bytes.TrimSpace(body[k])
		isNull := string(raw) == "null"
		switch k {
		case models.FieldTemperatureSetpoint:
			if isNull {
				next.TemperatureSetpoint = nil
				continue
			}
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				problems = append(problems, detail(k, "value is not a valid float", "type_error.float"))
				continue
			}
			if v < -50 || v > 150 {
				problems = append(problems, detail(k, "ensure this value is between -50 and 150", "value_error.number"))
				continue
			}
			next.TemperatureSetpoint = &v
		case models.FieldACTimerOn, models.FieldACTimerOff:
			var target **string
			if k == models.FieldACTimerOn {
				target = &next.ACTimerOn
			} else {
				target = &next.ACTimerOff
			}
			if isNull {
				*target = nil
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				problems = append(problems, detail(k, "invalid time format", "value_error.time"))
				continue
			}
			norm, ok := normalizeTime(s)
			if !ok {
				problems = append(problems, detail(k, "invalid time format", "value_error.time"))
				continue
			}
			*target = &norm
		case models.FieldFan2Speed, models.FieldFan4Speed:
			var v int
			if isNull || json.Unmarshal(raw, &v) != nil {
				problems = append(problems, detail(k, "value is not a valid integer", "type_error.integer"))
				continue
			}
			if v < 0 || v > 100 {
				problems = append(problems, detail(k, "ensure this value is between 0 and 100", "value_error.number"))
				continue
			}
			if k == models.FieldFan2Speed {
				next.Fan2SpeedPercent = &v
			} else {
				next.Fan4SpeedPercent = &v
			}
		default:
			problems = append(problems, detail(k, "extra fields not permitted", "value_error.extra"))
		}
	}
	if len(problems) > 0 {
		return nil, problems
	}
	next.UpdatedAt = d.now().UTC().Format(time.RFC3339)
	d.settings = &next
	out := next
	return &out, nil
}

func normalizeTime(s string) (string, bool) {
	m := timeOfDay.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	sec := m[4]
	if sec == "" {
		sec = "00"
	}
	return fmt.Sprintf("%s:%s:%s", m[1], m[2], sec), true
}
