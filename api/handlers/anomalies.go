package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/anomaly"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database/queries"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/validation"
)

type AnomalyHandler struct {
	sentinel Sentinel
	store    AnomalyStore
	limits   limits
	now      func() time.Time
}

// NewAnomalyHandler wires the anomaly endpoints. store may be nil when
// persistence is disabled.
func NewAnomalyHandler(sentinel Sentinel, store AnomalyStore, cfg *config.APIConfig) *AnomalyHandler {
	return &AnomalyHandler{
		sentinel: sentinel,
		store:    store,
		limits:   limitsFrom(cfg),
		now:      time.Now,
	}
}

// EvaluateRequest carries a complete snapshot. Without as_of the latest
// event timestamp in the snapshot is used. Durations in config are
// nanoseconds.
type EvaluateRequest struct {
	Accounts []models.AccountProfile `json:"accounts"`
	Logins   []models.LoginAttempt   `json:"logins"`
	Accesses []models.AccessEvent    `json:"accesses"`
	Config   *anomaly.RuleConfig     `json:"config,omitempty"`
	AsOf     *time.Time              `json:"as_of,omitempty" example:"2026-03-02T14:30:00Z"`
}

type AnomaliesResponse struct {
	Anomalies []models.AnomalyRecord `json:"anomalies"`
	Count     int                    `json:"count"`
}

func newAnomaliesResponse(records []models.AnomalyRecord) AnomaliesResponse {
	if records == nil {
		records = []models.AnomalyRecord{}
	}
	return AnomaliesResponse{Anomalies: records, Count: len(records)}
}

// Evaluate godoc
// @Summary Evaluate a security snapshot
// @Description Runs the brute-force, sensitive-read, RBAC and export rules over the supplied events. Results are deduplicated per kind, account and minute and sorted newest first.
// @Tags Anomalies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EvaluateRequest true "Snapshot"
// @Success 200 {object} AnomaliesResponse
// @Failure 400 {object} map[string]string
// @Router /api/anomalies/evaluate [post]
func (h *AnomalyHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var asOf time.Time
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	snapshot := models.SecuritySnapshot{
		Accounts: req.Accounts,
		Logins:   req.Logins,
		Accesses: req.Accesses,
	}

	records, err := h.sentinel.Evaluate(snapshot, req.Config, asOf)
	if err != nil {
		respondError(c, err, "evaluation failed")
		return
	}

	c.JSON(http.StatusOK, newAnomaliesResponse(records))
}

// Current godoc
// @Summary Evaluate live activity
// @Description Runs an anomaly cycle against the data source now.
// @Tags Anomalies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AnomaliesResponse
// @Failure 503 {object} map[string]string
// @Router /api/anomalies/current [get]
func (h *AnomalyHandler) Current(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := h.sentinel.RunAnomalyCycle(ctx, h.now().UTC())
	if err != nil {
		respondError(c, err, "failed to run anomaly cycle")
		return
	}

	c.JSON(http.StatusOK, newAnomaliesResponse(records))
}

// List godoc
// @Summary Stored anomalies
// @Tags Anomalies
// @Produce json
// @Security BearerAuth
// @Param kind query string false "LOGIN_BRUTE_FORCE, SENSITIVE_READ_BURST, RBAC_VIOLATION or EXPORT_SPIKE"
// @Param severity query string false "low, medium, high or critical"
// @Param since query string false "RFC3339 lower bound"
// @Param range query string false "Relative window such as 15m, 6h or 7d"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/anomalies [get]
func (h *AnomalyHandler) List(c *gin.Context) {
	if h.store == nil {
		respondError(c, errPersistenceDisabled, "")
		return
	}

	kind, err := validation.ParseAnomalyKind(c.Query("kind"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	severity, err := validation.ParseSeverity(c.Query("severity"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	since, err := parseSince(c, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339 and range a positive duration"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.store.List(ctx, queries.AnomalyFilter{
		Kind:     kind,
		Severity: severity,
		Since:    since,
		Limit:    h.limits.parse(c),
	})
	if err != nil {
		respondError(c, err, "failed to fetch anomalies")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  rows,
		"count": len(rows),
	})
}

// Rules godoc
// @Summary Active rule configuration
// @Tags Anomalies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} anomaly.RuleConfig
// @Router /api/anomalies/rules [get]
func (h *AnomalyHandler) Rules(c *gin.Context) {
	c.JSON(http.StatusOK, h.sentinel.RuleConfig())
}
