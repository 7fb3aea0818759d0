package handlers

import (
	"context"
	"sync"
	"time"

	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/models"
	"thermo_dashboard/internal/pages"
	"thermo_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockEventLog struct {
	resp      []models.DashboardEvent
	err       error
	lastFrom  time.Time
	lastTo    time.Time
	lastType  string
	lastPage  string
	lastLimit int
	calls     int

	mu       sync.Mutex
	recorded []models.DashboardEvent
}

func (m *mockEventLog) Record(_ context.Context, e models.DashboardEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, e)
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DashboardEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastPage = f.Page
	m.lastLimit = f.Limit
	return m.resp, m.err
}

func (m *mockEventLog) RunRetention(ctx context.Context, interval, keep time.Duration) {}

type mockSessions struct {
	list   []pages.Info
	known  map[string]bool
	closed []string
}

func (m *mockSessions) Open(ctx context.Context, page string) (*pages.Session, error) {
	return nil, pages.ErrUnknownPage
}

func (m *mockSessions) Get(id string) (*pages.Session, bool) {
	// Handlers only test presence.
	return nil, m.known[id]
}

func (m *mockSessions) Close(id string) { m.closed = append(m.closed, id) }

func (m *mockSessions) List() []pages.Info { return m.list }

func (m *mockSessions) CloseAll() {}

// stubBackend feeds real page sessions in WebSocket tests.
type stubBackend struct {
	mu      sync.Mutex
	patches []models.SettingsPatch
}

func (b *stubBackend) Status(context.Context) (models.Status, error) {
	return models.Status{
		Temperatures: []models.RawReading{
			models.RawReading(`{"sensor_name":"Living room","temperature":21.5,"timestamp":"2024-05-01T10:00:00Z"}`),
		},
	}, nil
}

func (b *stubBackend) Settings(context.Context) (*models.ActuatorSettings, error) {
	v := 22.0
	return &models.ActuatorSettings{TemperatureSetpoint: &v}, nil
}

func (b *stubBackend) PatchSettings(_ context.Context, p models.SettingsPatch) (*models.ActuatorSettings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.patches = append(b.patches, p)
	v := 22.0
	return &models.ActuatorSettings{TemperatureSetpoint: &v}, nil
}

func (b *stubBackend) TemperatureHistory(context.Context, models.HistoryQuery) ([]models.RawReading, error) {
	return nil, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// liveService wires real sessions against the stub backend.
func liveService(api pages.Backend, journal *mockEventLog) *service.Service {
	deps := pages.Deps{
		API:          api,
		Fmt:          format.New(time.UTC),
		Recorder:     journal,
		Intervals:    map[string]time.Duration{pages.Home: 50 * time.Millisecond},
		SaveCooldown: -1,
	}
	return &service.Service{
		EventLog: journal,
		Sessions: service.NewSessionService(deps, nil),
	}
}
