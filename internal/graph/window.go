// Package graph renders temperature history as a single live line chart.
package graph

import (
	"time"

	"thermo_dashboard/internal/models"
)

// Time range selector values.
const (
	RangeHour     = "1h"
	RangeSixHours = "6h"
	RangeDay      = "1d"
	RangeWeek     = "7d"
	RangeAll      = "all"
)

// DefaultLimit applies to unknown ranges.
const DefaultLimit = 1000

// SensorListLimit bounds the fetch used to discover sensor names.
const SensorListLimit = 1000

type window struct {
	limit int
	span  time.Duration // zero means unbounded
}

var windows = map[string]window{
	RangeHour:     {500, time.Hour},
	RangeSixHours: {1000, 6 * time.Hour},
	RangeDay:      {2000, 24 * time.Hour},
	RangeWeek:     {5000, 7 * 24 * time.Hour},
	RangeAll:      {10000, 0},
}

// Ranges lists the selector options in display order.
var Ranges = []struct{ Value, Label string }{
	{RangeHour, "Last Hour"},
	{RangeSixHours, "Last 6 Hours"},
	{RangeDay, "Last 24 Hours"},
	{RangeWeek, "Last 7 Days"},
	{RangeAll, "All Data"},
}

// Window computes the history query for a sensor filter and range at now.
func Window(sensor, rng string, now time.Time) models.HistoryQuery {
	q := models.HistoryQuery{Limit: DefaultLimit, SensorName: sensor}
	w, ok := windows[rng]
	if !ok {
		return q
	}
	q.Limit = w.limit
	if w.span > 0 {
		start := now.Add(-w.span).UTC()
		q.StartTime = &start
	}
	return q
}
