package pages

import (
	"context"

	"thermo_dashboard/internal/graph"
	"thermo_dashboard/internal/poller"
	"thermo_dashboard/internal/render"
	"thermo_dashboard/internal/settings"
)

func statusPoller(s *Session, sinks ...poller.Sink) {
	p := poller.NewStatusPoller(s.deps.API, s.deps.Interval(s.Page), s.Page, s.log, s.deps.Recorder, sinks...)
	s.AddTask(p.Start(s.ctx))
}

func initHome(_ context.Context, s *Session) error {
	statusPoller(s, &render.Summary{Doc: s.Doc, ID: IDStatusSummary})
	return nil
}

func initTemperatures(_ context.Context, s *Session) error {
	statusPoller(s, &render.Table{
		Doc: s.Doc, Container: IDTemperatureData, Body: IDTempTableBody, Fmt: s.deps.Fmt, Log: s.log,
	})
	return nil
}

func initPV(_ context.Context, s *Session) error {
	statusPoller(s, &render.PV{Doc: s.Doc, Container: IDPVData, Message: IDPVMessage, Fmt: s.deps.Fmt})
	return nil
}

func initSettings(_ context.Context, s *Session) error {
	ed := settings.NewEditor(s.Doc, s.deps.API, settings.Options{
		Cooldown: s.deps.SaveCooldown,
		Fmt:      s.deps.Fmt,
		Log:      s.log,
		Recorder: s.deps.Recorder,
	})
	s.OnClose(ed.Close)

	input := func(_ context.Context, ev Event) {
		if ev.Type == EventInput || ev.Type == EventChange {
			ed.Input(ev.ID, ev.Value)
		}
	}
	for _, id := range []string{settings.IDSetpoint, settings.IDTimerOn, settings.IDTimerOff, settings.IDFan4Speed, settings.IDFan2Speed} {
		s.Handle(id, input)
	}
	s.Handle(settings.IDSave, func(_ context.Context, ev Event) {
		if ev.Type != EventClick {
			return
		}
		s.Go(func(ctx context.Context) { _ = ed.Save(ctx) })
	})

	// The form is loaded once; the status refresh only touches indicators.
	s.Go(func(ctx context.Context) {
		if err := ed.Load(ctx); err != nil {
			return
		}
		p := poller.NewStatusPoller(s.deps.API, s.deps.Interval(s.Page), s.Page, s.log, s.deps.Recorder, ed)
		s.AddTask(p.Start(ctx))
	})
	return nil
}

func initGraphs(_ context.Context, s *Session) error {
	rend := &graph.DocRenderer{Doc: s.Doc, ID: graph.IDChart}
	c := graph.NewController(s.Doc, s.deps.API, rend, s.deps.Fmt, s.log, s.deps.Recorder)
	s.OnClose(c.Close)

	change := func(_ context.Context, ev Event) {
		if ev.Type != EventChange && ev.Type != EventInput {
			return
		}
		if c.SetControl(ev.ID, ev.Value) {
			s.Go(func(ctx context.Context) { _ = c.Refresh(ctx, graph.TriggerControl) })
		}
	}
	s.Handle(graph.IDSensorSelect, change)
	s.Handle(graph.IDRangeSelect, change)
	s.Handle(graph.IDRefresh, func(_ context.Context, ev Event) {
		if ev.Type == EventClick {
			s.Go(func(ctx context.Context) { _ = c.Refresh(ctx, graph.TriggerManual) })
		}
	})

	s.Go(func(ctx context.Context) {
		_ = c.LoadSensors(ctx)
		_ = c.Refresh(ctx, graph.TriggerLoad)
	})
	s.AddTask(c.Start(s.ctx, s.deps.Interval(s.Page)))
	return nil
}
