// Package render maps backend snapshots onto document elements.
package render

import (
	"fmt"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"
)

// Table messages.
const (
	MsgNoTemperatures = "No temperature data available."
	MsgRowError       = "Error displaying data for one reading."
	tableColumns      = 6
)

// TemperatureColumns are the header labels of the readings table.
var TemperatureColumns = []string{"Sensor ID", "Name", "Temperature", "Type", "Battery", "Last Update"}

// TemperatureRows maps readings to rows in array order. A reading that
// cannot be rendered becomes one error row; the others are unaffected.
// The second result counts such rows.
func TemperatureRows(readings []models.RawReading, f format.Formatter) ([]dom.Row, int) {
	if len(readings) == 0 {
		return []dom.Row{messageRow(MsgNoTemperatures, "")}, 0
	}
	rows := make([]dom.Row, 0, len(readings))
	failed := 0
	for _, raw := range readings {
		row, err := temperatureRow(raw, f)
		if err != nil {
			failed++
			rows = append(rows, messageRow(MsgRowError, "error"))
			continue
		}
		rows = append(rows, row)
	}
	return rows, failed
}

func temperatureRow(raw models.RawReading, f format.Formatter) (row dom.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render reading: %v", r)
		}
	}()
	rd, err := raw.Decode()
	if err != nil {
		return dom.Row{}, err
	}
	temp := format.Fixed(rd.Temperature, 2)
	if temp != format.Placeholder {
		temp += "°C"
	}
	return dom.Row{Cells: []dom.Cell{
		{Text: format.Text(string(rd.SensorID))},
		{Text: format.Text(rd.SensorName)},
		{Text: temp},
		{Text: format.Text(rd.SensorType)},
		{Text: format.Percent(rd.BatteryLevel)},
		{Text: f.Timestamp(rd.Timestamp)},
	}}, nil
}

func messageRow(text, class string) dom.Row {
	return dom.Row{Cells: []dom.Cell{{Text: text, ColSpan: tableColumns, Class: class}}}
}

// Table renders the temperatures array of each status snapshot.
type Table struct {
	Doc       *dom.Document
	Container string
	Body      string
	Fmt       format.Formatter
	Log       *logger.Logger
}

// Loading marks the container busy.
func (t *Table) Loading() {
	t.Doc.Update(t.Container, func(e *dom.Element) { e.AddClass("loading") })
}

// Render replaces the table body with the snapshot's readings.
func (t *Table) Render(st models.Status) {
	rows, failed := TemperatureRows(st.Temperatures, t.Fmt)
	if failed > 0 && t.Log != nil {
		t.Log.Warnw("temperature_rows_failed", "failed", failed, "total", len(st.Temperatures))
	}
	t.Doc.Update(t.Body, func(e *dom.Element) { e.Rows = rows })
	t.Doc.Update(t.Container, func(e *dom.Element) { e.RemoveClass("loading", "error") })
}

// Fail shows err as the only table row.
func (t *Table) Fail(err error) {
	t.Doc.Update(t.Body, func(e *dom.Element) {
		e.Rows = []dom.Row{messageRow("Error loading data: "+err.Error(), "error")}
	})
	t.Doc.Update(t.Container, func(e *dom.Element) {
		e.RemoveClass("loading")
		e.AddClass("error")
	})
}
