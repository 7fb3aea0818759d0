package devicesim

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 100

// API serves a Device over HTTP.
type API struct {
	dev *Device
	log *logger.Logger
}

// NewAPI wraps dev.
func NewAPI(dev *Device, log *logger.Logger) *API {
	return &API{dev: dev, log: log.Named("devicesim_api")}
}

// Routes builds the gin engine with the device endpoints.
func (a *API) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/status", a.status)
	api := router.Group("/api")
	{
		api.GET("/settings", a.getSettings)
		api.PATCH("/settings", a.patchSettings)
		api.GET("/temperature_history", a.history)
	}
	return router
}

func (a *API) status(c *gin.Context) {
	c.JSON(http.StatusOK, a.dev.Status())
}

func (a *API) getSettings(c *gin.Context) {
	s := a.dev.Settings()
	if s == nil {
		c.Data(http.StatusOK, "application/json", []byte("null"))
		return
	}
	c.JSON(http.StatusOK, s)
}

func (a *API) patchSettings(c *gin.Context) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": []Detail{{Loc: []any{"body"}, Msg: "invalid JSON body", Type: "value_error.jsondecode"}}})
		return
	}
	saved, problems := a.dev.Patch(body)
	if len(problems) > 0 {
		a.log.Infow("settings_patch_rejected", "problems", len(problems))
		c.JSON(http.StatusBadRequest, gin.H{"detail": problems})
		return
	}
	a.log.Infow("settings_patched", "fields", len(body))
	c.JSON(http.StatusOK, saved)
}

func (a *API) history(c *gin.Context) {
	q := models.HistoryQuery{Limit: defaultHistoryLimit, SensorName: c.Query("sensor_name")}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []Detail{{Loc: []any{"query", "limit"}, Msg: "value is not a valid integer", Type: "type_error.integer"}}})
			return
		}
		q.Limit = n
	}
	if s := c.Query("start_time"); s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []Detail{{Loc: []any{"query", "start_time"}, Msg: "invalid datetime format", Type: "value_error.datetime"}}})
			return
		}
		q.StartTime = &t
	}
	c.JSON(http.StatusOK, a.dev.History(q))
}
