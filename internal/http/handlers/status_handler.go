// README: Health and data-load status handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipquote/internal/modules/tariff"
	"shipquote/internal/modules/zone"
)

type StatusHandler struct {
	zones  *zone.Directory
	tariff *tariff.Model
}

func NewStatusHandler(zones *zone.Directory, tariff *tariff.Model) *StatusHandler {
	return &StatusHandler{zones: zones, tariff: tariff}
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Status reports the last load of each static source. A failed load still
// answers 200: the service keeps quoting with fallbacks.
func (h *StatusHandler) Status(c *gin.Context) {
	zones, matrix := h.zones.Status()
	writeJSON(c, http.StatusOK, gin.H{
		"zones":   newLoadStatus(zones),
		"matrix":  newLoadStatus(matrix),
		"presets": newLoadStatus(h.tariff.Status()),
	})
}
