package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"traveldesk/internal/middleware"
	"traveldesk/internal/service"
	"traveldesk/internal/travel"
	"traveldesk/pkg/pagination"
	"traveldesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type TravelRequestHandler struct {
	travelService service.TravelRequestService
	auth          *middleware.Auth
}

func NewTravelRequestHandler(travelService service.TravelRequestService, auth *middleware.Auth) *TravelRequestHandler {
	return &TravelRequestHandler{travelService: travelService, auth: auth}
}

// RegisterRoutes binds the travel request endpoints. Role checks that depend
// on the approval mapping or on the row itself happen in the service.
func (h *TravelRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/travel-requests")
	group.Use(h.auth.RequireRole())
	{
		group.GET("", h.ListTravelRequests)
		group.POST("", h.SubmitTravelRequest)
		group.GET("/:id", h.GetTravelRequest)
		group.PUT("/:id/approve", h.ApproveTravelRequest)
		group.PUT("/:id/reject", h.RejectTravelRequest)
		group.POST("/:id/bookings", h.AddBookings)
		group.PUT("/:id/complete", h.CompleteTravelRequest)
		group.PUT("/:id/cancel", h.CancelTravelRequest)
	}
}

// SubmitTravelRequest files a new request in the submitted state
// @Summary      Submit travel request
// @Description  Validates purpose-dependent fields and dates, reconciles the project reference and stores the request as submitted
// @Tags         travel-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitTravelRequestDTO  true  "Travel request"
// @Success      201      {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/travel-requests [post]
func (h *TravelRequestHandler) SubmitTravelRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.SubmitTravelRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.travelService.Submit(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// ListTravelRequests returns a page of requests visible to the caller
// @Summary      List travel requests
// @Description  Approvers, operations and admins see every request; other roles see requests they travel on or filed
// @Tags         travel-requests
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "Comma separated statuses"
// @Param        mine         query     bool    false  "Only requests the caller travels on or filed"
// @Param        traveler_id  query     string  false  "Traveler id"
// @Param        project_id   query     string  false  "Project id"
// @Param        team         query     string  false  "Assigned operations team"
// @Param        search       query     string  false  "Matches origin, destination or any destination leg"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=pagination.Page[service.TravelRequestResponse]}
// @Failure      400          {object}  response.Response
// @Router       /api/travel-requests [get]
func (h *TravelRequestHandler) ListTravelRequests(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	filter := service.TravelRequestListFilter{
		Mine:   c.Query("mine") == "true",
		Search: c.Query("search"),
		Page:   p.Page,
		Limit:  p.Limit,
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := travel.ParseStatus(strings.TrimSpace(part))
			if err != nil {
				c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, "status", err.Error()))
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := c.Query("team"); raw != "" {
		team, err := travel.ParseRole(raw)
		if err != nil || !team.IsOperations() {
			c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, "team", "team must be operations_ksa or operations_uae"))
			return
		}
		filter.OperationsTeam = team
	}
	if filter.TravelerID, ok = optionalUUIDQuery(c, "traveler_id"); !ok {
		return
	}
	if filter.ProjectID, ok = optionalUUIDQuery(c, "project_id"); !ok {
		return
	}

	items, total, err := h.travelService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Wrap(items, total, p)))
}

// GetTravelRequest returns one request with its bookings
// @Summary      Get travel request
// @Tags         travel-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Travel request id"
// @Success      200  {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/travel-requests/{id} [get]
func (h *TravelRequestHandler) GetTravelRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	res, err := h.travelService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ApproveTravelRequest moves a submitted request to pm_approved
// @Summary      Approve travel request
// @Description  Records the approver and assigns the operations team suggested from the destinations unless overridden
// @Tags         travel-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true   "Travel request id"
// @Param        payload  body      service.ApproveTravelRequestDTO  false  "Approval options"
// @Success      200      {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/travel-requests/{id}/approve [put]
func (h *TravelRequestHandler) ApproveTravelRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.ApproveTravelRequestDTO
	if !bindOptionalJSON(c, &req) {
		return
	}

	res, err := h.travelService.Approve(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// RejectTravelRequest moves a submitted request to pm_rejected
// @Summary      Reject travel request
// @Tags         travel-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true   "Travel request id"
// @Param        payload  body      service.RejectTravelRequestDTO  false  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/travel-requests/{id}/reject [put]
func (h *TravelRequestHandler) RejectTravelRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.RejectTravelRequestDTO
	if !bindOptionalJSON(c, &req) {
		return
	}

	res, err := h.travelService.Reject(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// AddBookings stages bookings on an approved request
// @Summary      Add bookings
// @Description  Operations record bookings before completing the request. Rows without a type or cost are ignored.
// @Tags         travel-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Travel request id"
// @Param        payload  body      service.BookingsDTO  true  "Bookings"
// @Success      201      {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/travel-requests/{id}/bookings [post]
func (h *TravelRequestHandler) AddBookings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.BookingsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.travelService.AddBookings(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// CompleteTravelRequest records the final bookings and the actual cost
// @Summary      Complete travel request
// @Description  Stores any further bookings, sums every booking into the actual total cost and marks the request completed
// @Tags         travel-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true   "Travel request id"
// @Param        payload  body      service.CompleteTravelRequestDTO  false  "Bookings and notes"
// @Success      200      {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/travel-requests/{id}/complete [put]
func (h *TravelRequestHandler) CompleteTravelRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.CompleteTravelRequestDTO
	if !bindOptionalJSON(c, &req) {
		return
	}

	res, err := h.travelService.Complete(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// CancelTravelRequest withdraws a submitted request
// @Summary      Cancel travel request
// @Tags         travel-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Travel request id"
// @Success      200  {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/travel-requests/{id}/cancel [put]
func (h *TravelRequestHandler) CancelTravelRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	res, err := h.travelService.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// bindOptionalJSON binds the body when one is sent. An empty body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}
