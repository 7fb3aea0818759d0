package graph

import (
	"encoding/json"
	"sort"
	"time"

	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/models"
)

// UnknownSensor groups readings without a name.
const UnknownSensor = "Unknown Sensor"

// Palette is cycled by series position.
var Palette = []string{
	"rgb(255, 99, 132)",
	"rgb(54, 162, 235)",
	"rgb(255, 205, 86)",
	"rgb(75, 192, 192)",
	"rgb(153, 102, 255)",
	"rgb(255, 159, 64)",
	"rgb(201, 203, 207)",
}

// Point is one chart sample.
type Point struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// Series is one sensor's line.
type Series struct {
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Group buckets readings by sensor name in first-seen order, drops points
// without a temperature or a parsable timestamp, and sorts each bucket by
// time. Readings that fail to decode are skipped and counted.
func Group(readings []models.RawReading, f format.Formatter) ([]Series, int) {
	var (
		out     []Series
		index   = map[string]int{}
		skipped int
	)
	for _, raw := range readings {
		rd, err := raw.Decode()
		if err != nil {
			skipped++
			continue
		}
		name := rd.SensorName
		if name == "" {
			name = UnknownSensor
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Series{Label: name, Color: Palette[i%len(Palette)], Points: []Point{}})
		}
		ts, ok := f.Parse(rd.Timestamp)
		if !ok || rd.Temperature == nil {
			continue
		}
		out[i].Points = append(out[i].Points, Point{X: ts, Y: *rd.Temperature})
	}
	for i := range out {
		pts := out[i].Points
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].X.Before(pts[b].X) })
	}
	return out, skipped
}

// Title names the chart after the sensor filter.
func Title(sensor string) string {
	if sensor == "" {
		return "Temperature Readings by Sensor"
	}
	return "Temperature Readings for " + sensor
}

// ChartSpec is everything needed to draw one chart.
type ChartSpec struct {
	Title  string
	Series []Series
}

type dataset struct {
	Label           string  `json:"label"`
	Data            []Point `json:"data"`
	BorderColor     string  `json:"borderColor"`
	BackgroundColor string  `json:"backgroundColor"`
	Tension         float64 `json:"tension"`
	Fill            bool    `json:"fill"`
	PointRadius     int     `json:"pointRadius"`
	PointHoverRad   int     `json:"pointHoverRadius"`
}

// Config renders the spec as a Chart.js line chart configuration.
func (s ChartSpec) Config() (json.RawMessage, error) {
	sets := make([]dataset, 0, len(s.Series))
	for _, sr := range s.Series {
		sets = append(sets, dataset{
			Label:           sr.Label,
			Data:            sr.Points,
			BorderColor:     sr.Color,
			BackgroundColor: transparent(sr.Color),
			Tension:         0.1,
			PointRadius:     3,
			PointHoverRad:   5,
		})
	}
	cfg := map[string]any{
		"type": "line",
		"data": map[string]any{"datasets": sets},
		"options": map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"scales": map[string]any{
				"x": map[string]any{
					"type":  "time",
					"time":  map[string]any{"unit": "hour", "tooltipFormat": "MMM d, yyyy h:mm:ss a"},
					"title": map[string]any{"display": true, "text": "Time"},
				},
				"y": map[string]any{
					"title": map[string]any{"display": true, "text": "Temperature (°C)"},
				},
			},
			"plugins": map[string]any{
				"tooltip": map[string]any{"mode": "index", "intersect": false},
				"title":   map[string]any{"display": true, "text": s.Title},
				"legend":  map[string]any{"display": true},
			},
		},
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// transparent turns rgb(r, g, b) into rgba(r, g, b, 0.25).
func transparent(rgb string) string {
	if len(rgb) > 5 && rgb[:4] == "rgb(" && rgb[len(rgb)-1] == ')' {
		return "rgba(" + rgb[4:len(rgb)-1] + ", 0.25)"
	}
	return rgb
}
