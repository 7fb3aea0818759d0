package graph

import (
	"context"
	"time"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/journal"
	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"
	"thermo_dashboard/internal/poller"
)

// Element IDs of the graph page.
const (
	IDSensorSelect = "sensor-select"
	IDRangeSelect  = "time-range-select"
	IDRefresh      = "refresh-graph-button"
	IDStatus       = "graph-status-message"
	IDContainer    = "graph-container"
	IDChart        = "temperatureChart"
)

// Messages.
const (
	MsgLoading      = "Loading graph data..."
	MsgAllSensors   = "All Sensors"
	MsgSensorsError = "Error loading sensors"
)

// Trigger names what asked for a refresh.
type Trigger string

const (
	TriggerLoad    Trigger = "load"
	TriggerControl Trigger = "control"
	TriggerManual  Trigger = "manual"
	TriggerTimer   Trigger = "timer"
)

// HistorySource fetches temperature history.
type HistorySource interface {
	TemperatureHistory(ctx context.Context, q models.HistoryQuery) ([]models.RawReading, error)
}

// Elements is the document skeleton of the graph page.
func Elements() []dom.Element {
	ranges := make([]dom.Option, 0, len(Ranges))
	for _, r := range Ranges {
		ranges = append(ranges, dom.Option{Value: r.Value, Label: r.Label})
	}
	return []dom.Element{
		{ID: IDSensorSelect, Kind: dom.KindSelect, Label: "Sensor", Options: []dom.Option{{Value: "", Label: MsgAllSensors}}},
		{ID: IDRangeSelect, Kind: dom.KindSelect, Label: "Time range", Options: ranges, Value: RangeDay},
		{ID: IDRefresh, Kind: dom.KindButton, Text: "Refresh Graph"},
		{ID: IDStatus, Kind: dom.KindText},
		{ID: IDContainer, Kind: dom.KindContainer},
		{ID: IDChart, Kind: dom.KindChart, Parent: IDContainer},
	}
}

// Controller owns the one live chart of a graph page.
type Controller struct {
	doc  *dom.Document
	src  HistorySource
	rend Renderer
	fmt  format.Formatter
	log  *logger.Logger
	rec  journal.Recorder
	now  func() time.Time

	seq     poller.Sequence
	current Handle // guarded by seq's lock via Apply
}

// NewController binds a controller to doc, which must contain Elements().
func NewController(doc *dom.Document, src HistorySource, rend Renderer, f format.Formatter, log *logger.Logger, rec journal.Recorder) *Controller {
	return &Controller{
		doc:  doc,
		src:  src,
		rend: rend,
		fmt:  f,
		log:  log.Named("graph"),
		rec:  journal.OrNop(rec),
		now:  time.Now,
	}
}

// Refresh fetches history for the current selections and replaces the
// chart. Every trigger goes through here. A result that arrives after a
// newer refresh was applied is discarded.
func (c *Controller) Refresh(ctx context.Context, trigger Trigger) error {
	sensor, rng := c.selection()
	q := Window(sensor, rng, c.now())
	seq := c.seq.Next()

	c.doc.Update(IDStatus, func(e *dom.Element) {
		e.Text = MsgLoading
		e.RemoveClass("error")
	})
	c.doc.Update(IDContainer, func(e *dom.Element) { e.AddClass("loading") })

	readings, err := c.src.TemperatureHistory(ctx, q)
	if ctx.Err() != nil {
		// session closed while in flight
		c.log.Debugw("graph_refresh_abandoned", "trigger", trigger)
		return ctx.Err()
	}

	var applyErr error
	applied := c.seq.Apply(seq, func() {
		defer c.doc.Update(IDContainer, func(e *dom.Element) { e.RemoveClass("loading") })
		c.destroy()
		if err != nil {
			applyErr = err
			c.log.Errorw("graph_fetch_failed", "trigger", trigger, "err", err)
			c.rec.Record(ctx, journal.Event(models.EventFetchError, "temperature_graphs", "history fetch failed: "+err.Error(),
				map[string]any{"trigger": string(trigger)}))
			c.doc.Update(IDStatus, func(e *dom.Element) {
				e.Text = "Error loading graph data: " + err.Error()
				e.AddClass("error")
			})
			return
		}
		series, skipped := Group(readings, c.fmt)
		if skipped > 0 {
			c.log.Warnw("graph_readings_skipped", "skipped", skipped)
		}
		h, cerr := c.rend.Create(ChartSpec{Title: Title(sensor), Series: series})
		if cerr != nil {
			applyErr = cerr
			c.log.Errorw("graph_render_failed", "err", cerr)
			c.doc.Update(IDStatus, func(e *dom.Element) {
				e.Text = "Error loading graph data: " + cerr.Error()
				e.AddClass("error")
			})
			return
		}
		c.current = h
		c.doc.SetText(IDStatus, "")
		c.log.Debugw("graph_drawn", "trigger", trigger, "series", len(series), "readings", len(readings))
	})
	if !applied {
		c.log.Debugw("graph_stale_result_dropped", "trigger", trigger)
	}
	return applyErr
}

// destroy releases the live chart; must run inside seq.Apply.
func (c *Controller) destroy() {
	if c.current != nil {
		c.current.Destroy()
		c.current = nil
	}
}

// Close releases the live chart.
func (c *Controller) Close() {
	c.seq.Apply(c.seq.Next(), c.destroy)
}

func (c *Controller) selection() (sensor, rng string) {
	if e, ok := c.doc.Get(IDSensorSelect); ok {
		sensor = e.Value
	}
	if e, ok := c.doc.Get(IDRangeSelect); ok {
		rng = e.Value
	}
	return sensor, rng
}

// SetControl stores a filter selection. It reports false for elements
// that are not graph controls.
func (c *Controller) SetControl(id, value string) bool {
	if id != IDSensorSelect && id != IDRangeSelect {
		return false
	}
	return c.doc.Update(id, func(e *dom.Element) { e.Value = value })
}

// Select records a control change from the browser and refreshes.
func (c *Controller) Select(ctx context.Context, id, value string) error {
	if !c.SetControl(id, value) {
		return nil
	}
	return c.Refresh(ctx, TriggerControl)
}

// LoadSensors fills the sensor filter with the names seen in recent history.
func (c *Controller) LoadSensors(ctx context.Context) error {
	readings, err := c.src.TemperatureHistory(ctx, models.HistoryQuery{Limit: SensorListLimit})
	if err != nil {
		c.log.Errorw("sensor_list_failed", "err", err)
		c.doc.Update(IDSensorSelect, func(e *dom.Element) {
			e.Options = []dom.Option{{Value: "", Label: MsgSensorsError}}
			e.Value = ""
		})
		return err
	}
	names := SensorNames(readings)
	opts := make([]dom.Option, 0, len(names)+1)
	opts = append(opts, dom.Option{Value: "", Label: MsgAllSensors})
	for _, n := range names {
		opts = append(opts, dom.Option{Value: n, Label: n})
	}
	c.doc.Update(IDSensorSelect, func(e *dom.Element) { e.Options = opts })
	return nil
}

// SensorNames returns unique non-empty sensor names in first-seen order.
func SensorNames(readings []models.RawReading) []string {
	seen := map[string]bool{}
	var out []string
	for _, raw := range readings {
		rd, err := raw.Decode()
		if err != nil || rd.SensorName == "" || seen[rd.SensorName] {
			continue
		}
		seen[rd.SensorName] = true
		out = append(out, rd.SensorName)
	}
	return out
}

// Start refreshes on every interval until the handle is stopped.
func (c *Controller) Start(ctx context.Context, interval time.Duration) *poller.Handle {
	return poller.Every(ctx, "graph", interval, c.log, func(ctx context.Context) {
		_ = c.Refresh(ctx, TriggerTimer)
	})
}
