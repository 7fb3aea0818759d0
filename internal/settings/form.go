package settings

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"thermo_dashboard/internal/models"
)

// Setpoint bounds in °C.
const (
	SetpointMin = -50
	SetpointMax = 150
)

// DefaultSpeed fills a controllable speed the backend left empty.
const DefaultSpeed = 50

type fieldKind int

const (
	kindSetpoint fieldKind = iota
	kindSpeed
	kindTimer
)

type field struct {
	key     string
	input   string
	display string // value readout next to a slider
	kind    fieldKind
	problem string
}

// formFields is in validation message order.
var formFields = []field{
	{models.FieldTemperatureSetpoint, IDSetpoint, "", kindSetpoint, "Valid temperature setpoint (-50 to 150)."},
	{models.FieldFan4Speed, IDFan4Speed, IDFan4Value, kindSpeed, "Valid Fan 4 speed (0-100%)."},
	{models.FieldFan2Speed, IDFan2Speed, IDFan2Value, kindSpeed, "Valid Fan 2 speed (0-100%)."},
	{models.FieldACTimerOn, IDTimerOn, "", kindTimer, "Valid AC timer on time (HH:MM or HH:MM:SS)."},
	{models.FieldACTimerOff, IDTimerOff, "", kindTimer, "Valid AC timer off time (HH:MM or HH:MM:SS)."},
}

func fieldByInput(id string) (field, bool) {
	for _, f := range formFields {
		if f.input == id {
			return f, true
		}
	}
	return field{}, false
}

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// Form is the editable state: raw input values keyed by field name and the
// set of fields the operator touched since the last load or save.
type Form struct {
	Values map[string]string
	Dirty  map[string]bool
}

// BuildPatch validates the dirty fields and turns them into a partial update.
// Untouched fields are omitted, and so is a touched setpoint or timer left
// blank: empty is never submitted. Controllable speeds follow the same rule
// and are sent only once the slider moved. Problems are returned in display
// order; when there are any, the patch is nil.
func BuildPatch(f Form) (models.SettingsPatch, []string) {
	patch := models.SettingsPatch{}
	var problems []string
	for _, fd := range formFields {
		if !f.Dirty[fd.key] {
			continue
		}
		raw := strings.TrimSpace(f.Values[fd.key])
		v, ok := parseField(fd.kind, raw)
		if !ok {
			problems = append(problems, fd.problem)
			continue
		}
		if v == nil {
			continue
		}
		patch[fd.key] = v
	}
	if len(problems) > 0 {
		return nil, problems
	}
	return patch, nil
}

// parseField returns a nil value for a blank optional field.
func parseField(kind fieldKind, raw string) (any, bool) {
	switch kind {
	case kindSetpoint:
		if raw == "" {
			return nil, true
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || v < SetpointMin || v > SetpointMax {
			return nil, false
		}
		return v, true
	case kindSpeed:
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 100 {
			return nil, false
		}
		return v, true
	case kindTimer:
		if raw == "" {
			return nil, true
		}
		if !timeOfDay.MatchString(raw) {
			return nil, false
		}
		return raw, true
	}
	return nil, false
}

// ProblemMessage is the save status text for client-side validation failures.
func ProblemMessage(problems []string) string {
	return "Please fix the following: " + strings.Join(problems, ", ")
}
