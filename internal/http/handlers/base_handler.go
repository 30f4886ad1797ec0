// README: Base handler utilities (JSON helpers, error mapping, load status views).
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shipquote/internal/modules/quote"
	"shipquote/internal/modules/tariff"
	"shipquote/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinel errors to HTTP status codes.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, quote.ErrInvalidShipment),
		errors.Is(err, quote.ErrInvalidService),
		errors.Is(err, tariff.ErrInvalidOverride):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, tariff.ErrPresetNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

type loadStatus struct {
	Source   string     `json:"source"`
	State    string     `json:"state"`
	Count    int        `json:"count"`
	Error    string     `json:"error,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

func newLoadStatus(r types.LoadResult) loadStatus {
	s := loadStatus{Source: r.Source, Count: r.Count}
	switch {
	case r.Pending():
		s.State = "pending"
	case r.OK():
		s.State = "ok"
	default:
		s.State = "failed"
		s.Error = r.Err.Error()
	}
	if !r.LoadedAt.IsZero() {
		at := r.LoadedAt
		s.LoadedAt = &at
	}
	return s
}
