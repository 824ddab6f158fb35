package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/chart"
	"battery_analysis/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK         = "ok"
	statusRegistered = "registered"
	statusAppended   = "appended"

	errInternal        = "internal error"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondServiceError maps service and analysis errors to HTTP codes.
func (h *Handler) respondServiceError(c *gin.Context, logKey string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBatteryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "battery not found"})
	case errors.Is(err, analysis.ErrInsufficientData),
		errors.Is(err, analysis.ErrDegenerateCurve),
		errors.Is(err, analysis.ErrFitFailure):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, "battery_id", batteryID(c))
	}
}

// RegisterBatteryRequest is the payload of POST /api/v1/batteries.
type RegisterBatteryRequest struct {
	// Owner name; created on first use
	Owner string `json:"owner" binding:"required" example:"alice"`
	// Battery type selecting the parameter preset (a, b, anything else)
	Type string `json:"type" binding:"required" example:"a"`
	// Nominal charge used to derive state of charge
	NominalCharge float64 `json:"nominal_charge" binding:"required" example:"2.5"`
}

// IcaSampleRequest is one incremental-capacity point.
type IcaSampleRequest struct {
	Charge  *float64 `json:"charge" binding:"required" example:"0.42"`
	Voltage *float64 `json:"voltage" binding:"required" example:"3.612"`
}

// CcctSampleRequest is one capacity-fade measurement.
type CcctSampleRequest struct {
	OverallCharge *float64 `json:"overall_charge" binding:"required" example:"2.31"`
	ElapsedTime   *float64 `json:"elapsed_time" binding:"required" example:"120"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Register battery
// @Description  Creates the owner if needed and a battery with the parameter preset of its type
// @Tags         batteries
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterBatteryRequest  true  "Battery payload"
// @Success      201   {object}  map[string]interface{}  "status, battery"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/batteries [post]
func (h *Handler) registerBattery(c *gin.Context) {
	var req RegisterBatteryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	b, err := h.services.Register(c.Request.Context(), service.RegisterParams{
		Owner:         req.Owner,
		Type:          req.Type,
		NominalCharge: req.NominalCharge,
	})
	if err != nil {
		h.respondServiceError(c, "battery_register_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": statusRegistered, "battery": b})
}

// @Summary      List batteries
// @Tags         batteries
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, batteries"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/batteries [get]
func (h *Handler) listBatteries(c *gin.Context) {
	list, err := h.services.Registration.List(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, "battery_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "batteries": list})
}

// @Summary      Battery counts per type
// @Tags         batteries
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "types"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/batteries/summary [get]
func (h *Handler) batterySummary(c *gin.Context) {
	counts, err := h.services.Summary(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, "battery_summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"types": counts})
}

// @Summary      Get battery
// @Tags         batteries
// @Produce      json
// @Param        id   path      int  true  "Battery ID"
// @Success      200  {object}  models.Battery
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/batteries/{id} [get]
func (h *Handler) getBattery(c *gin.Context) {
	b, err := h.services.Registration.Get(c.Request.Context(), batteryID(c))
	if err != nil {
		h.respondServiceError(c, "battery_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary      Battery status
// @Description  COLLECTING until a stop-time exists, then OPERATIONAL or REPLACE
// @Tags         batteries
// @Produce      json
// @Param        id   path      int  true  "Battery ID"
// @Success      200  {object}  models.BatteryStatus
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/batteries/{id}/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.GetStatus(c.Request.Context(), batteryID(c))
	if err != nil {
		h.respondServiceError(c, "battery_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Append ICA sample
// @Description  Stores the sample and runs the border estimation before responding
// @Tags         telemetry
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Battery ID"
// @Param        body  body      IcaSampleRequest  true  "Sample"
// @Success      201   {object}  map[string]interface{}  "status, sample, battery"
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/batteries/{id}/ica [post]
func (h *Handler) appendIca(c *gin.Context) {
	var req IcaSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	s, err := h.services.AppendIca(ctx, batteryID(c), *req.Charge, *req.Voltage)
	if err != nil {
		h.respondServiceError(c, "ica_append_failed", err)
		return
	}
	h.respondAppended(c, s)
}

// @Summary      Append CCCT sample
// @Description  Stores the sample and runs the stop-time estimation before responding
// @Tags         telemetry
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Battery ID"
// @Param        body  body      CcctSampleRequest  true  "Sample"
// @Success      201   {object}  map[string]interface{}  "status, sample, battery"
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/batteries/{id}/ccct [post]
func (h *Handler) appendCcct(c *gin.Context) {
	var req CcctSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	s, err := h.services.AppendCcct(c.Request.Context(), batteryID(c), *req.OverallCharge, *req.ElapsedTime)
	if err != nil {
		h.respondServiceError(c, "ccct_append_failed", err)
		return
	}
	h.respondAppended(c, s)
}

// Respond with the stored sample and the battery's results if available (best-effort).
func (h *Handler) respondAppended(c *gin.Context, sample interface{}) {
	resp := gin.H{"status": statusAppended, "sample": sample}
	if b, err := h.services.Registration.Get(c.Request.Context(), batteryID(c)); err == nil {
		resp["battery"] = b
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary      Re-run analyses
// @Tags         analysis
// @Produce      json
// @Param        id   path      int  true  "Battery ID"
// @Success      200  {object}  map[string]interface{}  "outcomes"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/batteries/{id}/reanalyze [post]
func (h *Handler) reanalyze(c *gin.Context) {
	out, err := h.services.Reanalyze(c.Request.Context(), batteryID(c))
	if err != nil {
		h.respondServiceError(c, "reanalyze_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomesJSON(out)})
}

func outcomesJSON(out []analysis.Outcome) []gin.H {
	res := make([]gin.H, 0, len(out))
	for _, o := range out {
		item := gin.H{"operation": o.Operation, "status": o.Status}
		if o.Applied() {
			item["value"] = o.Value
		}
		if o.Reason != nil {
			item["reason"] = o.Reason.Error()
		}
		res = append(res, item)
	}
	return res
}

// @Summary      ICA curve diagnostics
// @Description  Curve, smoothed dQ/dV and detected peaks of one cycle; nothing is stored
// @Tags         analysis
// @Produce      json
// @Param        id     path      int     true  "Battery ID"
// @Param        stage  path      string  true  "Cycle"  Enums(first,second)
// @Success      200    {object}  analysis.Diagnostics
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Router       /api/v1/batteries/{id}/curve/{stage} [get]
func (h *Handler) getCurve(c *gin.Context) {
	stage, err := analysis.ParseStage(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.services.Curve(c.Request.Context(), batteryID(c), stage)
	if err != nil {
		h.respondServiceError(c, "curve_failed", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      ICA curve chart
// @Tags         analysis
// @Produce      png
// @Param        id     path  int     true  "Battery ID"
// @Param        stage  path  string  true  "Cycle"  Enums(first,second)
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/v1/batteries/{id}/curve/{stage}/chart.png [get]
func (h *Handler) getCurveChart(c *gin.Context) {
	stage, err := analysis.ParseStage(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := h.services.RenderCurve(c.Request.Context(), batteryID(c), stage, &buf, chart.Options{Format: "png"}); err != nil {
		h.respondServiceError(c, "chart_failed", err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
