package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetricsHandler exposes a Prometheus registry on the API port.
type MetricsHandler struct {
	handler http.Handler
}

func NewMetricsHandler(h http.Handler) *MetricsHandler {
	return &MetricsHandler{handler: h}
}

// Serve godoc
// @Summary Prometheus metrics
// @Tags Metrics
// @Produce plain
// @Success 200 {string} string "Prometheus exposition format"
// @Router /metrics [get]
func (h *MetricsHandler) Serve(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}
