package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thermo_dashboard/internal/models"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil), srv
}

func TestClient_Status_DecodesSnapshot(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, PathStatus, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"temperatures":[{"sensor_id":7,"sensor_name":"tank","temperature":21.5,"battery_level":null,"timestamp":"2025-04-14T00:00:00Z"},{"sensor_id":"x","temperature":"hot"}],
			"solar_data":{"panel_voltage":18.2,"timestamp":"2025-04-14T00:00:00Z"},
			"current_settings":{"temperature_setpoint":22,"fan_1_status":true}
		}`)
	})

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, st.Temperatures, 2)

	first, err := st.Temperatures[0].Decode()
	require.NoError(t, err)
	require.Equal(t, models.FlexString("7"), first.SensorID)
	require.Nil(t, first.BatteryLevel)

	_, err = st.Temperatures[1].Decode()
	require.Error(t, err, "string temperature must not decode")

	require.NotNil(t, st.SolarData)
	require.InDelta(t, 18.2, *st.SolarData.PanelVoltage, 1e-9)
	require.True(t, *st.CurrentSettings.Fan1Status)
}

func TestClient_HTTPErrorIsTyped(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Status(context.Background())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	require.Equal(t, "HTTP error! Status: 503", err.Error())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, Timeout: time.Second}, nil)
	_, err := c.Settings(context.Background())
	require.ErrorIs(t, err, ErrTransport)
}

func TestClient_SettingsNullBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `null`)
	})

	s, err := c.Settings(context.Background())
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestClient_PatchSettings_SendsOnlyGivenKeys(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"temperature_setpoint":21.5,"updated_at":"2025-04-14T10:00:00Z"}`)
	})

	saved, err := c.PatchSettings(context.Background(), models.SettingsPatch{
		models.FieldTemperatureSetpoint: 21.5,
		models.FieldACTimerOff:          nil,
	})
	require.NoError(t, err)
	require.Equal(t, "2025-04-14T10:00:00Z", saved.UpdatedAt)

	require.Len(t, got, 2)
	require.Equal(t, 21.5, got["temperature_setpoint"])
	v, present := got["ac_timer_off"]
	require.True(t, present)
	require.Nil(t, v)
}

func TestClient_PatchSettings_ValidationError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":[{"loc":["body","fan_2_speed_percent"],"msg":"ensure this value is less than or equal to 100"},{"loc":["body","ac_timer_on",0],"msg":"invalid time format"}]}`)
	})

	_, err := c.PatchSettings(context.Background(), models.SettingsPatch{models.FieldFan2Speed: 120})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t,
		"Validation Error: body -> fan_2_speed_percent: ensure this value is less than or equal to 100, body -> ac_timer_on -> 0: invalid time format",
		err.Error())
}

func TestClient_PatchSettings_ValidationErrorWithoutDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"bad"}`)
	})

	_, err := c.PatchSettings(context.Background(), models.SettingsPatch{models.FieldFan2Speed: 1})
	require.EqualError(t, err, `Validation Error: {"error":"bad"}`)
}

func TestClient_TemperatureHistory_QueryParams(t *testing.T) {
	start := time.Date(2025, 4, 14, 9, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, PathHistory, r.URL.Path)
		require.Equal(t, "500", q.Get("limit"))
		require.Equal(t, "living room", q.Get("sensor_name"))
		require.Equal(t, "2025-04-14T07:30:00.000Z", q.Get("start_time"))
		_, _ = io.WriteString(w, `[{"sensor_name":"living room","temperature":20,"timestamp":"2025-04-14T08:00:00Z"}]`)
	})

	out, err := c.TemperatureHistory(context.Background(), models.HistoryQuery{
		Limit:      500,
		SensorName: "living room",
		StartTime:  &start,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestClient_TemperatureHistory_OmitsOptionalParams(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "10000", q.Get("limit"))
		require.False(t, q.Has("sensor_name"))
		require.False(t, q.Has("start_time"))
		_, _ = io.WriteString(w, `[]`)
	})

	out, err := c.TemperatureHistory(context.Background(), models.HistoryQuery{Limit: 10000})
	require.NoError(t, err)
	require.Empty(t, out)
}
