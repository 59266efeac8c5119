package ui

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"prithvipulse/app"
	"prithvipulse/domain/core"
	"prithvipulse/internal/errors"
	"prithvipulse/models"
)

const defaultUsageWindow = 24 * time.Hour

func (s *Server) handleHealth(c *gin.Context) {
	out := s.dispatcher.Health(c.Request.Context())
	writeOutcomeHeaders(c, out.Outcome)

	status := http.StatusOK
	if !out.Value.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, out.Value)
}

type overviewResponse struct {
	Healthy      bool                        `json:"healthy"`
	Health       app.HealthStatus            `json:"health"`
	Market       models.MarketTrendsResponse `json:"market"`
	MarketSource models.Source               `json:"market_source"`
	MarketFault  models.FailureClass         `json:"market_failure_class"`
}

func (s *Server) handleOverview(c *gin.Context) {
	region := strings.TrimSpace(c.Query("region"))
	if region == "" {
		respondError(c, http.StatusBadRequest, errors.InvalidInput(core.ErrMissingRegion.Error()))
		return
	}

	overview, err := s.dispatcher.Overview(c.Request.Context(), region)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, overviewResponse{
		Healthy:      overview.Healthy,
		Health:       overview.Health.Value,
		Market:       overview.Market.Value,
		MarketSource: overview.Market.Outcome.Source,
		MarketFault:  overview.Market.Outcome.Failure,
	})
}

// handleUsageSummary reads from/to as RFC3339; the default window is the last day
func (s *Server) handleUsageSummary(c *gin.Context) {
	if s.usage == nil {
		respondError(c, http.StatusNotFound, errors.NotFound("usage ledger"))
		return
	}

	end := time.Now()
	start := end.Add(-defaultUsageWindow)
	var err error
	if v := c.Query("to"); v != "" {
		if end, err = time.Parse(time.RFC3339, v); err != nil {
			respondError(c, http.StatusBadRequest, errors.InvalidInput("to must be RFC3339"))
			return
		}
	}
	if v := c.Query("from"); v != "" {
		if start, err = time.Parse(time.RFC3339, v); err != nil {
			respondError(c, http.StatusBadRequest, errors.InvalidInput("from must be RFC3339"))
			return
		}
	}
	if !start.Before(end) {
		respondError(c, http.StatusBadRequest, errors.InvalidInput("from must be before to"))
		return
	}

	summary, err := s.usage.Summary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
