// Package backend talks to the device backend HTTP API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"

	"github.com/go-resty/resty/v2"
)

// API paths served by the device backend.
const (
	PathStatus   = "/status"
	PathSettings = "/api/settings"
	PathHistory  = "/api/temperature_history"
)

// StartTimeLayout matches a browser's Date.toISOString().
const StartTimeLayout = "2006-01-02T15:04:05.000Z"

const defaultTimeout = 10 * time.Second

// Config holds the connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin wrapper around resty. It never retries: the next poll
// tick is the retry.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// New builds a client for cfg.BaseURL.
func New(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	return &Client{http: rc, log: log.Named("backend")}
}

// Status fetches the combined status snapshot.
func (c *Client) Status(ctx context.Context) (models.Status, error) {
	var out models.Status
	resp, err := c.http.R().SetContext(ctx).Get(PathStatus)
	if err := c.check(resp, err, PathStatus); err != nil {
		return out, err
	}
	if err := decode(resp.Body(), &out); err != nil {
		return out, err
	}
	return out, nil
}

// Settings fetches the full settings object. A JSON null yields (nil, nil).
func (c *Client) Settings(ctx context.Context) (*models.ActuatorSettings, error) {
	resp, err := c.http.R().SetContext(ctx).Get(PathSettings)
	if err := c.check(resp, err, PathSettings); err != nil {
		return nil, err
	}
	var out *models.ActuatorSettings
	if err := decode(resp.Body(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PatchSettings sends a partial update and returns the stored settings.
func (c *Client) PatchSettings(ctx context.Context, patch models.SettingsPatch) (*models.ActuatorSettings, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any(patch)).
		Patch(PathSettings)
	if err := c.check(resp, err, PathSettings); err != nil {
		return nil, err
	}
	var out *models.ActuatorSettings
	if len(resp.Body()) == 0 {
		return nil, nil
	}
	if err := decode(resp.Body(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TemperatureHistory fetches readings for the graph window. Entries stay
// raw so the caller can skip malformed ones individually.
func (c *Client) TemperatureHistory(ctx context.Context, q models.HistoryQuery) ([]models.RawReading, error) {
	req := c.http.R().SetContext(ctx)
	if q.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}
	if q.SensorName != "" {
		req.SetQueryParam("sensor_name", q.SensorName)
	}
	if q.StartTime != nil {
		req.SetQueryParam("start_time", q.StartTime.UTC().Format(StartTimeLayout))
	}
	resp, err := req.Get(PathHistory)
	if err := c.check(resp, err, PathHistory); err != nil {
		return nil, err
	}
	var out []models.RawReading
	if err := decode(resp.Body(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// check normalizes transport and HTTP failures into typed errors.
func (c *Client) check(resp *resty.Response, err error, path string) error {
	if err != nil {
		c.log.Warnw("backend_request_failed", "path", path, "err", err)
		return fmt.Errorf("%w: %s: %v", ErrTransport, path, err)
	}
	if !resp.IsError() {
		return nil
	}
	status := resp.StatusCode()
	c.log.Warnw("backend_http_error", "path", path, "status", status)
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return parseValidation(status, resp.Body())
	}
	return &HTTPError{StatusCode: status, Path: path}
}

func decode(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
