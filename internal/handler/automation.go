package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/service"
	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/worker"
)

// AutomationHandler handles automation job endpoints.
type AutomationHandler struct {
	automation *service.AutomationService
}

// NewAutomationHandler creates a new AutomationHandler.
func NewAutomationHandler(automation *service.AutomationService) *AutomationHandler {
	return &AutomationHandler{automation: automation}
}

// TriggerScrape creates a scrape job and schedules it for background
// execution. The response returns before the scrape begins.
func (h *AutomationHandler) TriggerScrape(c echo.Context) error {
	job, err := h.automation.Submit(c.Request().Context(), domain.JobTypeScrapeProducts)
	if err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "job queue is full, try again later")
		}
		return err
	}

	return JSON(c, http.StatusCreated, map[string]any{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// ListJobs returns the most recent automation jobs, newest first.
func (h *AutomationHandler) ListJobs(c echo.Context) error {
	jobs, err := h.automation.Recent(c.Request().Context())
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, jobs)
}
