// README: Zone and distance lookup handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipquote/internal/modules/zone"
)

type ZoneHandler struct {
	zones *zone.Directory
}

func NewZoneHandler(zones *zone.Directory) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

func (h *ZoneHandler) List(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"zones": h.zones.Zones()})
}

func (h *ZoneHandler) Get(c *gin.Context) {
	z, ok := h.zones.GetZone(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "zone not found")
		return
	}
	writeJSON(c, http.StatusOK, z)
}

// Distance answers GET /api/distance?origin=&dest=. Unknown pairs return the
// fallback distance with fallback=true.
func (h *ZoneHandler) Distance(c *gin.Context) {
	origin, dest := c.Query("origin"), c.Query("dest")
	if origin == "" || dest == "" {
		writeError(c, http.StatusBadRequest, "origin and dest are required")
		return
	}
	miles := h.zones.GetDistance(origin, dest)
	writeJSON(c, http.StatusOK, gin.H{
		"origin":   origin,
		"dest":     dest,
		"miles":    miles,
		"fallback": !h.zones.HasDistance(origin, dest),
	})
}
