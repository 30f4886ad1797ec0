// README: Quote handlers for single and batch quotes.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shipquote/internal/modules/quote"
)

// maxBatchSize bounds one batch request.
const maxBatchSize = 1000

const errNotFinite = "quote is not finite; check tariff parameters"

type QuoteHandler struct {
	quotes *quote.Service
}

func NewQuoteHandler(svc *quote.Service) *QuoteHandler {
	return &QuoteHandler{quotes: svc}
}

// Create prices one shipment and makes it the current quote.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req quote.Shipment
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(c, err)
		return
	}
	r := h.quotes.Quote(c.Request.Context(), req)
	if !r.Finite() {
		writeError(c, http.StatusUnprocessableEntity, errNotFinite)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *QuoteHandler) Current(c *gin.Context) {
	r, ok := h.quotes.Current(c.Request.Context())
	if !ok {
		writeError(c, http.StatusNotFound, "no current quote")
		return
	}
	// JSON has no encoding for Inf or NaN.
	if !r.Finite() {
		writeError(c, http.StatusUnprocessableEntity, errNotFinite)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

type batchReq struct {
	Shipments []quote.Shipment `json:"shipments"`
}

// CreateBatch prices every shipment in order. One invalid shipment rejects the
// whole batch.
func (h *QuoteHandler) CreateBatch(c *gin.Context) {
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Shipments) > maxBatchSize {
		writeError(c, http.StatusBadRequest, "too many shipments")
		return
	}
	for i, s := range req.Shipments {
		if err := s.Validate(); err != nil {
			writeError(c, http.StatusBadRequest, fmt.Sprintf("shipment %d: %v", i, err))
			return
		}
	}
	results := h.quotes.Batch(c.Request.Context(), req.Shipments)
	if !quote.AllFinite(results) {
		writeError(c, http.StatusUnprocessableEntity, errNotFinite)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"results": results})
}

func (h *QuoteHandler) Batch(c *gin.Context) {
	results := h.quotes.LastBatch(c.Request.Context())
	if results == nil {
		results = []quote.Result{}
	}
	if !quote.AllFinite(results) {
		writeError(c, http.StatusUnprocessableEntity, errNotFinite)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"results": results})
}
