package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List open page sessions
// @Tags         sessions
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, sessions"
// @Router       /api/v1/sessions [get]
func (h *Handler) listSessions(c *gin.Context) {
	list := h.services.Sessions.List()
	c.JSON(http.StatusOK, gin.H{
		"count":    len(list),
		"sessions": list,
	})
}

// @Summary      Close a page session
// @Description  Stops the session's refresh tasks. The browser reconnects with a fresh session.
// @Tags         sessions
// @Param        id   path  string  true  "Session id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/sessions/{id} [delete]
func (h *Handler) closeSession(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.services.Sessions.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errSessionMissing})
		return
	}
	h.services.Sessions.Close(id)
	c.Status(http.StatusNoContent)
}
