package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"thermo_dashboard/internal/service"
)

func TestPageShells(t *testing.T) {
	r := newTestRouter(&service.Service{})
	cases := []struct {
		path  string
		page  string
		title string
	}{
		{"/", "home", "Home"},
		{"/temperatures", "temperatures", "Temperatures"},
		{"/settings", "settings", "Settings"},
		{"/pv_info", "pv_info", "Solar PV"},
		{"/temperature_graphs", "temperature_graphs", "Temperature Graphs"},
	}
	for _, tc := range cases {
		t.Run(tc.page, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d", w.Code)
			}
			body := w.Body.String()
			if !strings.Contains(body, `data-page="`+tc.page+`"`) {
				t.Fatalf("page id missing in %s", body)
			}
			if !strings.Contains(body, "<h1>"+tc.title+"</h1>") {
				t.Fatalf("title missing in %s", body)
			}
			if !strings.Contains(body, `href="`+tc.path+`" class="active"`) {
				t.Fatalf("active nav link missing for %s", tc.path)
			}
		})
	}
}

func TestLiveScript(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/live.js", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Fatalf("content-type=%q", ct)
	}
	if !strings.Contains(w.Body.String(), "/ws?page=") {
		t.Fatalf("script does not open the page socket")
	}
}
