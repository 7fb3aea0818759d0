package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"thermo_dashboard/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_Levels(t *testing.T) {
	cases := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"ok", http.StatusOK, zapcore.DebugLevel},
		{"client error", http.StatusBadRequest, zapcore.WarnLevel},
		{"server error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			h := &Handler{log: &logger.Logger{SugaredLogger: zap.New(core).Sugar()}}

			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(h.requestLogger)
			r.GET("/x", func(c *gin.Context) { c.Status(tc.status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("entries=%d, want 1", len(entries))
			}
			e := entries[0]
			if e.Level != tc.level {
				t.Fatalf("level=%v, want %v", e.Level, tc.level)
			}
			fields := e.ContextMap()
			if fields["path"] != "/x" || fields["method"] != http.MethodGet {
				t.Fatalf("fields=%v", fields)
			}
		})
	}
}

func TestRequestLogger_NilLogger(t *testing.T) {
	h := &Handler{}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(h.requestLogger)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTeapot {
		t.Fatalf("status=%d", w.Code)
	}
}
