package api

import (
	"net/http"

	"OutreachSync/internal/repository"
	"OutreachSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler 任务统计接口
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *logrus.Logger
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

type analyticsBody struct {
	InitialDate string `json:"initialDate" binding:"required"`
	EndDate     string `json:"endDate" binding:"required"`
}

func (h *AnalyticsHandler) bind(c *gin.Context, dimension repository.Dimension, period repository.Period) (service.AnalyticsRequest, bool) {
	var body analyticsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, "Analytics", bindError(err, "body"))
		return service.AnalyticsRequest{}, false
	}
	return service.AnalyticsRequest{
		CompanyID:   c.Param("companyId"),
		InitialDate: body.InitialDate,
		EndDate:     body.EndDate,
		Dimension:   dimension,
		Period:      period,
	}, true
}

// Matrix POST /company/:companyId/tasks/analytics/{perExecutor,perType}/{byYear,byMonth}
func (h *AnalyticsHandler) Matrix(dimension repository.Dimension, period repository.Period) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := h.bind(c, dimension, period)
		if !ok {
			return
		}
		m, err := h.analytics.Matrix(c.Request.Context(), req)
		if err != nil {
			respondError(c, h.logger, "Analytics", err)
			return
		}
		respondOK(c, http.StatusOK, m)
	}
}

// Totals POST /company/:companyId/tasks/analytics/{perExecutor,perType}/byTotals
func (h *AnalyticsHandler) Totals(dimension repository.Dimension) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := h.bind(c, dimension, "")
		if !ok {
			return
		}
		totals, err := h.analytics.Totals(c.Request.Context(), req)
		if err != nil {
			respondError(c, h.logger, "Analytics", err)
			return
		}
		respondOK(c, http.StatusOK, totals)
	}
}
