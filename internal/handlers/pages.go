package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"thermo_dashboard/internal/pages"

	"github.com/gin-gonic/gin"
)

//go:embed web/shell.html web/live.js
var webFS embed.FS

var shellTemplate = template.Must(template.ParseFS(webFS, "web/shell.html"))

type navLink struct {
	Path   string
	Title  string
	Active bool
}

type shellData struct {
	Page  string
	Title string
	Nav   []navLink
}

func navFor(current string) []navLink {
	routes := pages.Routes()
	out := make([]navLink, 0, len(routes))
	for _, r := range routes {
		out = append(out, navLink{Path: r.Path, Title: r.Title, Active: r.ID == current})
	}
	return out
}

// pageShell serves the static HTML frame; content arrives over /ws.
func (h *Handler) pageShell(route pages.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/html; charset=utf-8")
		err := h.shell.Execute(c.Writer, shellData{
			Page:  route.ID,
			Title: route.Title,
			Nav:   navFor(route.ID),
		})
		if err != nil && h.log != nil {
			h.log.Errorw("page_render_failed", "err", err, "page", route.ID)
		}
	}
}

func (h *Handler) liveScript(c *gin.Context) {
	body, err := webFS.ReadFile("web/live.js")
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "script unavailable", "live_script_failed", err)
		return
	}
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", body)
}
