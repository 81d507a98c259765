package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/predictor"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/validation"
)

type PredictionHandler struct {
	sentinel Sentinel
	store    PredictionStore
	limits   limits
	now      func() time.Time
}

// NewPredictionHandler wires the prediction endpoints. store may be nil
// when persistence is disabled.
func NewPredictionHandler(sentinel Sentinel, store PredictionStore, cfg *config.APIConfig) *PredictionHandler {
	return &PredictionHandler{
		sentinel: sentinel,
		store:    store,
		limits:   limitsFrom(cfg),
		now:      time.Now,
	}
}

type PredictRequest struct {
	ShipmentID         string                         `json:"shipment_id" example:"SHP-00042"`
	History            []models.HistoricalDelaySample `json:"history"`
	ActiveExpectedTime *time.Time                     `json:"active_expected_time,omitempty" example:"2026-03-02T14:00:00Z"`
	ThresholdMinutes   *float64                       `json:"threshold_minutes,omitempty" example:"30"`
	AsOf               *time.Time                     `json:"as_of,omitempty" example:"2026-03-02T14:30:00Z"`
}

func (r PredictRequest) toInput(now time.Time) predictor.Input {
	in := predictor.Input{
		History:          r.History,
		ThresholdMinutes: r.ThresholdMinutes,
		AsOf:             now,
	}
	if r.AsOf != nil {
		in.AsOf = *r.AsOf
	}
	if r.ActiveExpectedTime != nil {
		in.Active = &models.ActiveShipment{
			ShipmentID:   r.ShipmentID,
			ExpectedTime: *r.ActiveExpectedTime,
		}
	}
	return in
}

// Predict godoc
// @Summary Forecast a delay
// @Description Forecast the next delay from a supplied history (most recent first). When active_expected_time is given the deviation of that shipment is checked against the threshold.
// @Tags Predictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PredictRequest true "History and active shipment"
// @Success 200 {object} models.PredictionResult
// @Failure 400 {object} map[string]string
// @Router /api/predictions [post]
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validation.ValidateShipmentID(req.ShipmentID); err != nil {
		respondError(c, err, "")
		return
	}

	result, err := h.sentinel.Predict(req.toInput(h.now().UTC()))
	if err != nil {
		respondError(c, err, "prediction failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ShipmentPredictions godoc
// @Summary Forecast all in-flight shipments
// @Description Runs a prediction cycle against the data source now and returns one result per active shipment.
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /api/shipments/predictions [get]
func (h *PredictionHandler) ShipmentPredictions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	asOf := h.now().UTC()
	results, err := h.sentinel.RunPredictionCycle(ctx, asOf)
	if err != nil {
		respondError(c, err, "failed to run prediction cycle")
		return
	}

	alerts := 0
	for _, r := range results {
		if r.AlertTriggered {
			alerts++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"as_of":       asOf,
		"predictions": results,
		"count":       len(results),
		"alerts":      alerts,
	})
}

// Recent godoc
// @Summary Recent stored predictions
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Param shipment_id query string false "Filter by shipment"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /api/predictions/recent [get]
func (h *PredictionHandler) Recent(c *gin.Context) {
	if h.store == nil {
		respondError(c, errPersistenceDisabled, "")
		return
	}

	shipmentID := c.Query("shipment_id")
	if err := validation.ValidateShipmentID(shipmentID); err != nil {
		respondError(c, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.store.GetRecent(ctx, shipmentID, h.limits.parse(c))
	if err != nil {
		respondError(c, err, "failed to fetch predictions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  rows,
		"count": len(rows),
	})
}
