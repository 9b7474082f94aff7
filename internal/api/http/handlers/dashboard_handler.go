package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves the landing page KPIs and supervisor reports.
type DashboardHandler struct {
	dashboard *service.DashboardService
	reports   *service.ReportService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService, reports *service.ReportService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, reports: reports}
}

// Overview GET /dashboard/overview.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	overview, err := h.dashboard.Overview(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.OverviewResponse]{Data: dto.NewOverviewResponse(overview)})
}

// CallsReport GET /reports/calls.xlsx.
func (h *DashboardHandler) CallsReport(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	from, err := parseTime(c, "from")
	if err != nil {
		return err
	}
	to, err := parseTime(c, "to")
	if err != nil {
		return err
	}
	data, err := h.reports.ExportCalls(c.UserContext(), user, from, to)
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("calls_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
