package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/service"
)

// InsightHandler handles the product insight endpoint.
type InsightHandler struct {
	insights *service.InsightService
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insights *service.InsightService) *InsightHandler {
	return &InsightHandler{insights: insights}
}

type insightRequest struct {
	Products []service.InsightInput `json:"products" validate:"dive"`
}

// Analyze computes aggregate statistics and a summary over the submitted
// product snapshots.
func (h *InsightHandler) Analyze(c echo.Context) error {
	var req insightRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	report := h.insights.Calculate(req.Products)
	return JSON(c, http.StatusOK, report)
}
