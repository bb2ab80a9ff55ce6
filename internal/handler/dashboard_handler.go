package handler

import (
	"net/http"

	"traveldesk/internal/middleware"
	"traveldesk/internal/service"
	"traveldesk/internal/travel"
	"traveldesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	auth             *middleware.Auth
}

func NewDashboardHandler(dashboardService service.DashboardService, auth *middleware.Auth) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, auth: auth}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/dashboard")
	{
		group.GET("", h.auth.RequireRole(), h.GetDashboard)
		group.GET("/spend/users", h.auth.RequireRole(travel.RoleAdmin), h.GetUserSpend)
		group.GET("/spend/projects", h.auth.RequireRole(travel.RoleAdmin, travel.RolePM), h.GetProjectSpend)
	}
}

// GetDashboard returns counts, the caller's work queue and, for admins, spend
// @Summary      Role dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.DashboardResponse}
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	res, err := h.dashboardService.Dashboard(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetUserSpend returns completed-trip spend per user against annual budget
// @Summary      Spend by user
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]travel.SpendSummary}
// @Failure      403  {object}  response.Response
// @Router       /api/dashboard/spend/users [get]
func (h *DashboardHandler) GetUserSpend(c *gin.Context) {
	res, err := h.dashboardService.UserSpend(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetProjectSpend returns completed-trip spend per project against travel budget
// @Summary      Spend by project
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]travel.SpendSummary}
// @Failure      403  {object}  response.Response
// @Router       /api/dashboard/spend/projects [get]
func (h *DashboardHandler) GetProjectSpend(c *gin.Context) {
	res, err := h.dashboardService.ProjectSpend(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
