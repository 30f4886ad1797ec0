// README: Tariff parameter and pricing preset handlers.
package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shipquote/internal/modules/tariff"
)

type TariffHandler struct {
	tariff *tariff.Model
}

func NewTariffHandler(model *tariff.Model) *TariffHandler {
	return &TariffHandler{tariff: model}
}

type tariffView struct {
	Params        tariff.Params `json:"params"`
	ConfidencePct float64       `json:"confidence_pct"`
	CurrentPreset string        `json:"current_preset,omitempty"`
}

func (h *TariffHandler) view() tariffView {
	params, confidencePct := h.tariff.Snapshot()
	v := tariffView{Params: params, ConfidencePct: confidencePct}
	if p, ok := h.tariff.CurrentPreset(); ok {
		v.CurrentPreset = p.ID
	}
	return v
}

func (h *TariffHandler) Get(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.view())
}

// Patch edits live tariff values. Only the fields present in the body change.
func (h *TariffHandler) Patch(c *gin.Context) {
	var req tariff.Patch
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validatePatch(req); err != nil {
		writeDomainError(c, err)
		return
	}
	h.tariff.Update(req)
	writeJSON(c, http.StatusOK, h.view())
}

func validatePatch(p tariff.Patch) error {
	if p.DimDivisor != nil && !(*p.DimDivisor > 0) {
		return fmt.Errorf("%w: dim_divisor must be positive", ErrBadRequest)
	}
	for name, v := range map[string]*float64{
		"base_rate":                    p.BaseRate,
		"per_mile":                     p.PerMile,
		"per_lb":                       p.PerLb,
		"dim_divisor":                  p.DimDivisor,
		"fuel_pct":                     p.FuelPct,
		"peak_pct":                     p.PeakPct,
		"residential_fee":              p.ResidentialFee,
		"service_multiplier_standard":  p.ServiceStandard,
		"service_multiplier_expedited": p.ServiceExpedited,
		"confidence_pct":               p.ConfidencePct,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s must be finite", ErrBadRequest, name)
		}
	}
	return nil
}

func (h *TariffHandler) ListPresets(c *gin.Context) {
	resp := gin.H{"presets": h.tariff.Presets()}
	if p, ok := h.tariff.CurrentPreset(); ok {
		resp["current"] = p.ID
	}
	writeJSON(c, http.StatusOK, resp)
}

type savePresetReq struct {
	Label string `json:"label"`
}

// SavePreset snapshots the live values into a new preset.
func (h *TariffHandler) SavePreset(c *gin.Context) {
	var req savePresetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		writeError(c, http.StatusBadRequest, "label is required")
		return
	}
	p := h.tariff.SaveAsPreset(c.Request.Context(), label)
	writeJSON(c, http.StatusCreated, p)
}

func (h *TariffHandler) ApplyPreset(c *gin.Context) {
	p, err := h.tariff.ApplyPresetByID(c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"preset": p, "tariff": h.view()})
}
