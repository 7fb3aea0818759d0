package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/journal"
	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"
	"thermo_dashboard/internal/render"
)

// Save status messages.
const (
	MsgSaving       = "Saving..."
	MsgSaved        = "Settings saved successfully!"
	MsgNoChanges    = "No changes to save."
	MsgNoSettings   = "No settings found. Default values may be applied on save."
	MsgJustNow      = "Just now"
	DefaultCooldown = time.Second
)

var (
	// ErrNotReady is returned when saving before a successful load.
	ErrNotReady = errors.New("settings not loaded")
	// ErrBusy is returned while a save or its cool-down is in progress.
	ErrBusy = errors.New("save already in progress")
	// ErrNoChanges is returned when no field was edited.
	ErrNoChanges = errors.New("no changes to save")
	// ErrInvalidInput wraps client-side validation problems.
	ErrInvalidInput = errors.New("invalid input")
)

// LoadState tracks the initial fetch.
type LoadState int

const (
	StateLoading LoadState = iota
	StateReady
	StateLoadError
)

// SaveState tracks the save control.
type SaveState int

const (
	SaveIdle SaveState = iota
	Saving
	SaveSuccess
	SaveFailure
)

// API is the part of the backend client the editor needs.
type API interface {
	Settings(ctx context.Context) (*models.ActuatorSettings, error)
	PatchSettings(ctx context.Context, patch models.SettingsPatch) (*models.ActuatorSettings, error)
}

// Options tune an Editor.
type Options struct {
	Cooldown time.Duration // zero means DefaultCooldown, negative disables it
	Fmt      format.Formatter
	Log      *logger.Logger
	Recorder journal.Recorder
}

// Editor owns the settings region of one page session. It also acts as the
// status poller sink for that page; status refreshes never touch inputs.
// Saves send only fields the operator touched, so a slider that was never
// moved leaves the device's speed as it is.
type Editor struct {
	doc      *dom.Document
	api      API
	fmt      format.Formatter
	log      *logger.Logger
	rec      journal.Recorder
	cooldown time.Duration

	mu     sync.Mutex
	load   LoadState
	save   SaveState
	busy   bool
	dirty  map[string]bool
	timer  *time.Timer
	closed bool
}

// NewEditor binds an editor to doc, which must contain Elements().
func NewEditor(doc *dom.Document, api API, opts Options) *Editor {
	cd := opts.Cooldown
	if cd == 0 {
		cd = DefaultCooldown
	}
	if cd < 0 {
		cd = 0
	}
	f := opts.Fmt
	if f.Loc == nil {
		f = format.Default
	}
	return &Editor{
		doc:      doc,
		api:      api,
		fmt:      f,
		log:      opts.Log.Named("settings"),
		rec:      journal.OrNop(opts.Recorder),
		cooldown: cd,
		dirty:    make(map[string]bool),
	}
}

// State returns the load and save states.
func (e *Editor) State() (LoadState, SaveState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load, e.save
}

// Dirty reports whether field was edited since the last load or save.
func (e *Editor) Dirty(field string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty[field]
}

// Load fetches the full settings object and populates the form.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	e.load = StateLoading
	e.mu.Unlock()

	e.doc.Update(IDLoadError, func(el *dom.Element) {
		el.Text = ""
		el.RemoveClass("error")
	})
	e.doc.Update(IDLoading, func(el *dom.Element) { el.Hidden = false })
	e.doc.Update(IDEditor, func(el *dom.Element) { el.AddClass("loading") })
	e.doc.Update(IDForm, func(el *dom.Element) { el.Hidden = true })

	s, err := e.api.Settings(ctx)

	defer func() {
		e.doc.Update(IDEditor, func(el *dom.Element) { el.RemoveClass("loading") })
		e.doc.Update(IDLoading, func(el *dom.Element) { el.Hidden = true })
	}()

	if err != nil {
		e.log.Errorw("settings_load_failed", "err", err)
		e.rec.Record(ctx, journal.Event(models.EventFetchError, "settings", "settings load failed: "+err.Error(), nil))
		e.doc.Update(IDLoadError, func(el *dom.Element) {
			el.Text = "Error loading data: " + err.Error()
			el.AddClass("error")
		})
		e.mu.Lock()
		e.load = StateLoadError
		e.mu.Unlock()
		return fmt.Errorf("load settings: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = make(map[string]bool)
	if s == nil {
		e.log.Warnw("settings_missing")
		e.doc.SetText(IDLoadError, MsgNoSettings)
		e.applyStatus(nil)
		for _, f := range formFields {
			if f.kind == kindSpeed {
				e.doc.Update(f.input, func(el *dom.Element) { el.Value = strconv.Itoa(DefaultSpeed) })
				e.doc.SetText(f.display, format.Placeholder)
			}
		}
	} else {
		e.populate(s)
	}
	e.doc.Update(IDForm, func(el *dom.Element) { el.Hidden = false })
	e.load = StateReady
	return nil
}

func (e *Editor) populate(s *models.ActuatorSettings) {
	setpoint := ""
	if s.TemperatureSetpoint != nil {
		setpoint = strconv.FormatFloat(*s.TemperatureSetpoint, 'f', -1, 64)
	}
	e.setValue(IDSetpoint, setpoint)
	e.setValue(IDTimerOn, deref(s.ACTimerOn))
	e.setValue(IDTimerOff, deref(s.ACTimerOff))

	for id, v := range map[string]*int{IDFan4Speed: s.Fan4SpeedPercent, IDFan2Speed: s.Fan2SpeedPercent} {
		speed := DefaultSpeed
		if v != nil {
			speed = *v
		}
		f, _ := fieldByInput(id)
		e.setValue(id, strconv.Itoa(speed))
		e.doc.SetText(f.display, strconv.Itoa(speed))
	}

	e.applyStatus(s)
	e.doc.SetText(IDUpdated, e.fmt.Timestamp(s.UpdatedAt))
}

func (e *Editor) setValue(id, v string) {
	e.doc.Update(id, func(el *dom.Element) { el.Value = v })
}

// applyStatus updates indicators and read-only speeds only.
func (e *Editor) applyStatus(s *models.ActuatorSettings) {
	if s == nil {
		s = &models.ActuatorSettings{}
	}
	render.SetSpeed(e.doc, IDFan1Display, s.Fan1SpeedPercent)
	render.SetSpeed(e.doc, IDFan3Display, s.Fan3SpeedPercent)
	for _, ind := range indicators {
		render.SetIndicator(e.doc, ind.id, ind.get(s))
	}
}

// Loading is a no-op: the status refresh has no busy marker.
func (e *Editor) Loading() {}

// Render applies the live status subset of a /status snapshot.
func (e *Editor) Render(st models.Status) {
	if st.CurrentSettings == nil {
		e.log.Warnw("status_settings_missing")
	}
	e.applyStatus(st.CurrentSettings)
	e.doc.Update(IDStatusRefresh, func(el *dom.Element) {
		el.Text = ""
		el.RemoveClass("error")
	})
}

// Fail keeps the last known indicators and shows a small notice.
func (e *Editor) Fail(err error) {
	e.doc.Update(IDStatusRefresh, func(el *dom.Element) {
		el.Text = "Status refresh failed: " + err.Error()
		el.AddClass("error")
	})
}

// Input records an edit from the browser. Slider edits update their
// readout immediately. Unknown IDs are ignored.
func (e *Editor) Input(id, value string) bool {
	f, ok := fieldByInput(id)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.load != StateReady {
		e.log.Debugw("input_before_ready", "id", id)
		return false
	}
	e.dirty[f.key] = true
	e.setValue(id, value)
	if f.display != "" {
		e.doc.SetText(f.display, value)
	}
	return true
}

func (e *Editor) form() Form {
	f := Form{Values: make(map[string]string, len(formFields)), Dirty: make(map[string]bool, len(e.dirty))}
	for _, fd := range formFields {
		if el, ok := e.doc.Get(fd.input); ok {
			f.Values[fd.key] = el.Value
		}
	}
	for k, v := range e.dirty {
		f.Dirty[k] = v
	}
	return f
}

func (e *Editor) status(text, class string) {
	e.doc.Update(IDSaveStatus, func(el *dom.Element) {
		el.Text = text
		el.RemoveClass("error", "success", "warning", "info")
		if class != "" {
			el.AddClass(class)
		}
	})
}

func (e *Editor) setButton(disabled bool) {
	e.doc.Update(IDSave, func(el *dom.Element) { el.Disabled = disabled })
}

// Save validates the edited fields and sends them as a partial update.
// It blocks for the duration of the request.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.load != StateReady {
		e.mu.Unlock()
		return ErrNotReady
	}
	if e.busy {
		e.mu.Unlock()
		return ErrBusy
	}
	form := e.form()
	patch, problems := BuildPatch(form)
	if len(problems) > 0 {
		e.mu.Unlock()
		msg := ProblemMessage(problems)
		e.status(msg, "error")
		e.log.Warnw("settings_validation_failed", "problems", problems)
		e.rec.Record(ctx, journal.Event(models.EventValidationError, "settings", msg, map[string]any{"problems": problems}))
		return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
	}
	if len(patch) == 0 {
		e.mu.Unlock()
		e.status(MsgNoChanges, "warning")
		return ErrNoChanges
	}
	e.busy = true
	e.save = Saving
	e.mu.Unlock()

	e.status(MsgSaving, "info")
	e.setButton(true)
	fields := patch.Fields()
	e.log.Infow("settings_save_requested", "fields", fields)
	e.rec.Record(ctx, journal.Event(models.EventSaveRequested, "settings", "save requested", map[string]any{"fields": fields}))

	saved, err := e.api.PatchSettings(ctx, patch)
	if err != nil {
		e.log.Errorw("settings_save_failed", "err", err)
		e.rec.Record(ctx, journal.Event(models.EventSaveFailed, "settings", err.Error(), map[string]any{"fields": fields}))
		e.status("Error saving settings: "+err.Error(), "error")
		e.setButton(false)
		e.mu.Lock()
		e.busy = false
		e.save = SaveFailure
		e.mu.Unlock()
		return fmt.Errorf("save settings: %w", err)
	}

	e.status(MsgSaved, "success")
	updated := MsgJustNow
	if saved != nil && saved.UpdatedAt != "" {
		updated = e.fmt.Timestamp(saved.UpdatedAt)
	}
	e.doc.SetText(IDUpdated, updated)
	e.rec.Record(ctx, journal.Event(models.EventSaveSucceeded, "settings", "settings saved", map[string]any{"fields": fields}))

	e.mu.Lock()
	defer e.mu.Unlock()
	// keep fields the operator changed again while the request was in flight
	current := e.form()
	for _, k := range fields {
		if current.Values[k] == form.Values[k] {
			delete(e.dirty, k)
		}
	}
	e.save = SaveSuccess
	if e.cooldown == 0 || e.closed {
		e.release()
		return nil
	}
	e.timer = time.AfterFunc(e.cooldown, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.release()
	})
	return nil
}

// release ends the cool-down; e.mu must be held.
func (e *Editor) release() {
	e.busy = false
	e.save = SaveIdle
	e.timer = nil
	e.setButton(false)
}

// Close stops a pending cool-down timer.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
