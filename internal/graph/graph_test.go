package graph

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/journal"
	"thermo_dashboard/internal/models"

	"github.com/stretchr/testify/require"
)

var utc = format.New(time.UTC)

func raw(s string) models.RawReading { return models.RawReading(s) }

func TestWindow(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		rng   string
		limit int
		start *time.Time
	}{
		{RangeHour, 500, ptime(now.Add(-time.Hour))},
		{RangeSixHours, 1000, ptime(now.Add(-6 * time.Hour))},
		{RangeDay, 2000, ptime(now.Add(-24 * time.Hour))},
		{RangeWeek, 5000, ptime(now.Add(-7 * 24 * time.Hour))},
		{RangeAll, 10000, nil},
		{"bogus", DefaultLimit, nil},
	}
	for _, tc := range cases {
		q := Window("Attic", tc.rng, now)
		require.Equal(t, tc.limit, q.Limit, tc.rng)
		require.Equal(t, "Attic", q.SensorName)
		require.Equal(t, tc.start, q.StartTime, tc.rng)
	}
}

func ptime(t time.Time) *time.Time { return &t }

func TestGroup_SortsAndDropsBadPoints(t *testing.T) {
	t.Parallel()
	series, skipped := Group([]models.RawReading{
		raw(`{"sensor_name":"A","temperature":10,"timestamp":"2024-05-01T10:00:10Z"}`),
		raw(`{"sensor_name":"A","temperature":5,"timestamp":"2024-05-01T10:00:00Z"}`),
		raw(`{"sensor_name":"B","temperature":null,"timestamp":"2024-05-01T10:00:00Z"}`),
		raw(`{"temperature":1,"timestamp":"garbage"}`),
		raw(`{"temperature":2,"timestamp":"2024-05-01T09:00:00Z"}`),
		raw(`null`),
	}, utc)

	require.Equal(t, 1, skipped)
	require.Len(t, series, 3)

	require.Equal(t, "A", series[0].Label)
	require.Equal(t, Palette[0], series[0].Color)
	require.Equal(t, []float64{5, 10}, ys(series[0].Points))

	require.Equal(t, "B", series[1].Label)
	require.Equal(t, Palette[1], series[1].Color)
	require.Empty(t, series[1].Points)

	require.Equal(t, UnknownSensor, series[2].Label)
	require.Equal(t, []float64{2}, ys(series[2].Points))
}

func ys(pts []Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Y
	}
	return out
}

func TestGroup_PaletteCycles(t *testing.T) {
	t.Parallel()
	var readings []models.RawReading
	for _, n := range []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7"} {
		readings = append(readings, raw(`{"sensor_name":"`+n+`"}`))
	}
	series, _ := Group(readings, utc)
	require.Len(t, series, 8)
	require.Equal(t, Palette[0], series[7].Color)
}

func TestTitleAndConfig(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Temperature Readings by Sensor", Title(""))
	require.Equal(t, "Temperature Readings for Attic", Title("Attic"))

	cfg, err := ChartSpec{Title: Title("Attic"), Series: []Series{{Label: "Attic", Color: Palette[0], Points: []Point{}}}}.Config()
	require.NoError(t, err)
	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Datasets []struct {
				Label           string `json:"label"`
				BorderColor     string `json:"borderColor"`
				BackgroundColor string `json:"backgroundColor"`
			} `json:"datasets"`
		} `json:"data"`
		Options struct {
			Plugins struct {
				Title struct {
					Text string `json:"text"`
				} `json:"title"`
			} `json:"plugins"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(cfg, &decoded))
	require.Equal(t, "line", decoded.Type)
	require.Equal(t, "Temperature Readings for Attic", decoded.Options.Plugins.Title.Text)
	require.Equal(t, "rgba(255, 99, 132, 0.25)", decoded.Data.Datasets[0].BackgroundColor)
}

// scriptedSource answers calls in order; a nil gate answers at once.
type scriptedSource struct {
	mu      sync.Mutex
	queries []models.HistoryQuery
	answers []answer
}

type answer struct {
	readings []models.RawReading
	err      error
	gate     chan struct{}
}

func (s *scriptedSource) TemperatureHistory(ctx context.Context, q models.HistoryQuery) ([]models.RawReading, error) {
	s.mu.Lock()
	i := len(s.queries)
	s.queries = append(s.queries, q)
	a := answer{}
	if i < len(s.answers) {
		a = s.answers[i]
	}
	s.mu.Unlock()
	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return a.readings, a.err
}

func (s *scriptedSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func newController(src HistorySource) (*Controller, *DocRenderer, *dom.Document) {
	doc := dom.New("temperature_graphs", nil, Elements()...)
	rend := &DocRenderer{Doc: doc, ID: IDChart}
	return NewController(doc, src, rend, utc, nil, nil), rend, doc
}

func TestController_RedrawKeepsOneLiveChart(t *testing.T) {
	t.Parallel()
	reading := raw(`{"sensor_name":"A","temperature":1,"timestamp":"2024-05-01T10:00:00Z"}`)
	src := &scriptedSource{answers: []answer{
		{readings: []models.RawReading{reading}},
		{readings: []models.RawReading{reading}},
	}}
	c, rend, doc := newController(src)

	require.NoError(t, c.Refresh(context.Background(), TriggerLoad))
	require.NoError(t, c.Refresh(context.Background(), TriggerManual))
	require.Equal(t, 1, rend.Live())

	chart, _ := doc.Get(IDChart)
	require.NotEmpty(t, chart.Chart)
	status, _ := doc.Get(IDStatus)
	require.Empty(t, status.Text)

	c.Close()
	require.Zero(t, rend.Live())
}

func TestController_FailureDestroysPreviousChart(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{answers: []answer{
		{readings: []models.RawReading{raw(`{"sensor_name":"A"}`)}},
		{err: errors.New("HTTP error! Status: 500")},
	}}
	c, rend, doc := newController(src)

	require.NoError(t, c.Refresh(context.Background(), TriggerLoad))
	require.Error(t, c.Refresh(context.Background(), TriggerTimer))

	require.Zero(t, rend.Live())
	chart, _ := doc.Get(IDChart)
	require.Empty(t, chart.Chart)
	status, _ := doc.Get(IDStatus)
	require.Equal(t, "Error loading graph data: HTTP error! Status: 500", status.Text)
	box, _ := doc.Get(IDContainer)
	require.False(t, box.HasClass("loading"))
}

func TestController_StaleResultIsDropped(t *testing.T) {
	t.Parallel()
	slow := make(chan struct{})
	src := &scriptedSource{answers: []answer{
		{readings: []models.RawReading{raw(`{"sensor_name":"old","temperature":1,"timestamp":"2024-05-01T10:00:00Z"}`)}, gate: slow},
		{readings: []models.RawReading{raw(`{"sensor_name":"new","temperature":2,"timestamp":"2024-05-01T10:00:00Z"}`)}},
	}}
	c, rend, doc := newController(src)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Refresh(context.Background(), TriggerTimer)
	}()
	require.Eventually(t, func() bool { return src.calls() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.Refresh(context.Background(), TriggerManual))
	close(slow)
	<-done

	require.Equal(t, 1, rend.Live())
	chart, _ := doc.Get(IDChart)
	require.Contains(t, string(chart.Chart), `"new"`)
	require.NotContains(t, string(chart.Chart), `"old"`)
}

func TestController_CancelledRefreshLeavesPageAlone(t *testing.T) {
	t.Parallel()
	gate := make(chan struct{})
	src := &scriptedSource{answers: []answer{{gate: gate}}}
	doc := dom.New("temperature_graphs", nil, Elements()...)
	rend := &DocRenderer{Doc: doc, ID: IDChart}
	var recorded []models.DashboardEvent
	var mu sync.Mutex
	rec := journal.RecorderFunc(func(_ context.Context, e models.DashboardEvent) {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, e)
	})
	c := NewController(doc, src, rend, utc, nil, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Refresh(ctx, TriggerTimer) }()
	require.Eventually(t, func() bool { return src.calls() == 1 }, time.Second, time.Millisecond)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	status, _ := doc.Get(IDStatus)
	require.NotContains(t, status.Text, "Error loading graph data")
	require.False(t, status.HasClass("error"))
	mu.Lock()
	require.Empty(t, recorded)
	mu.Unlock()
}

func TestController_SelectUsesControls(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{}
	c, _, doc := newController(src)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Select(context.Background(), IDSensorSelect, "Attic"))
	require.NoError(t, c.Select(context.Background(), IDRangeSelect, RangeAll))
	require.NoError(t, c.Select(context.Background(), "unrelated", "x"))

	require.Len(t, src.queries, 2)
	require.Equal(t, models.HistoryQuery{Limit: 2000, SensorName: "Attic", StartTime: ptime(now.Add(-24 * time.Hour))}, src.queries[0])
	require.Equal(t, models.HistoryQuery{Limit: 10000, SensorName: "Attic"}, src.queries[1])

	status, _ := doc.Get(IDStatus)
	require.Empty(t, status.Text)
}

func TestController_LoadSensors(t *testing.T) {
	t.Parallel()
	src := &scriptedSource{answers: []answer{
		{readings: []models.RawReading{raw(`{"sensor_name":"B"}`), raw(`{"sensor_name":"A"}`), raw(`{"sensor_name":"B"}`), raw(`{}`)}},
		{err: errors.New("down")},
	}}
	c, _, doc := newController(src)

	require.NoError(t, c.LoadSensors(context.Background()))
	require.Equal(t, SensorListLimit, src.queries[0].Limit)
	sel, _ := doc.Get(IDSensorSelect)
	require.Equal(t, []dom.Option{{Value: "", Label: MsgAllSensors}, {Value: "B", Label: "B"}, {Value: "A", Label: "A"}}, sel.Options)

	require.Error(t, c.LoadSensors(context.Background()))
	sel, _ = doc.Get(IDSensorSelect)
	require.Equal(t, []dom.Option{{Value: "", Label: MsgSensorsError}}, sel.Options)
}
