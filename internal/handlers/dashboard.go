package handlers

import (
	"relais/internal/services/dashboard"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Get returns the dashboard for the caller's role.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	stats, err := h.dashboardService.Get(c.UserContext(), claims)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard data retrieved successfully", stats)
}
