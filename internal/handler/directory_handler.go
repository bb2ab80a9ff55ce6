package handler

import (
	"net/http"

	"traveldesk/internal/middleware"
	"traveldesk/internal/service"
	"traveldesk/internal/travel"
	"traveldesk/pkg/pagination"
	"traveldesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	directoryService service.DirectoryService
	auth             *middleware.Auth
}

func NewDirectoryHandler(directoryService service.DirectoryService, auth *middleware.Auth) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService, auth: auth}
}

func (h *DirectoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.GET("/me", h.auth.RequireRole(), h.GetMe)
		// Checked against the home role in the service; an impersonating admin
		// must still be able to switch back.
		api.PUT("/me/active-role", h.auth.RequireRole(), h.SwitchActiveRole)
		api.GET("/users", h.auth.RequireRole(), h.ListUsers)
		api.GET("/projects", h.auth.RequireRole(), h.ListProjects)
		api.POST("/directory/sync", h.auth.RequireRole(travel.RoleAdmin), h.SyncRoster)
	}
}

// GetMe returns the caller's profile and effective role
// @Summary      Current user
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/me [get]
func (h *DirectoryHandler) GetMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	res, err := h.directoryService.Me(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SwitchActiveRole lets an admin act as another role
// @Summary      Switch active role
// @Description  Admins only. An empty role or "admin" returns to the admin role.
// @Tags         directory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SwitchRoleDTO  true  "Role to act as"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/me/active-role [put]
func (h *DirectoryHandler) SwitchActiveRole(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.SwitchRoleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.directoryService.SwitchActiveRole(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListUsers returns the employee directory
// @Summary      List users
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Matches name, email or department"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=pagination.Page[service.UserResponse]}
// @Router       /api/users [get]
func (h *DirectoryHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.directoryService.ListUsers(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Wrap(items, total, p)))
}

// ListProjects returns the project directory
// @Summary      List projects
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Matches code or name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=pagination.Page[service.ProjectResponse]}
// @Router       /api/projects [get]
func (h *DirectoryHandler) ListProjects(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.directoryService.ListProjects(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Wrap(items, total, p)))
}

// SyncRoster pulls employees and projects from the roster service
// @Summary      Sync roster
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.SyncResult}
// @Failure      403  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /api/directory/sync [post]
func (h *DirectoryHandler) SyncRoster(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	res, err := h.directoryService.SyncRoster(c.Request.Context(), &actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
