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

type DocumentHandler struct {
	documentService service.DocumentService
	auth            *middleware.Auth
}

func NewDocumentHandler(documentService service.DocumentService, auth *middleware.Auth) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, auth: auth}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/documents")
	group.Use(h.auth.RequireRole())
	{
		group.GET("", h.ListDocuments)
		group.POST("", h.CreateDocument)
		group.GET("/expiring", h.ListExpiringDocuments)
		group.GET("/:id", h.GetDocument)
		group.PUT("/:id", h.UpdateDocument)
		group.DELETE("/:id", h.DeleteDocument)
	}
}

// ListDocuments returns passports and visas with their derived status
// @Summary      List documents
// @Description  Operations and admins see every employee's documents; other roles see their own
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        user_id        query     string  false  "Owner id"
// @Param        document_type  query     string  false  "passport or visa"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Items per page (default 20)"
// @Success      200            {object}  response.Response{data=pagination.Page[service.DocumentResponse]}
// @Router       /api/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	filter := service.DocumentListFilter{
		DocumentType: travel.DocumentType(c.Query("document_type")),
		Page:         p.Page,
		Limit:        p.Limit,
	}
	if filter.UserID, ok = optionalUUIDQuery(c, "user_id"); !ok {
		return
	}

	items, total, err := h.documentService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Wrap(items, total, p)))
}

// ListExpiringDocuments returns documents that are expired or expire within 30 days
// @Summary      List expiring documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=pagination.Page[service.DocumentResponse]}
// @Router       /api/documents/expiring [get]
func (h *DocumentHandler) ListExpiringDocuments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	items, total, err := h.documentService.Expiring(c.Request.Context(), actor, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Wrap(items, total, p)))
}

// CreateDocument files a passport or visa
// @Summary      Create document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDocumentDTO  true  "Document"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateDocumentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.documentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// GetDocument returns one document
// @Summary      Get document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document id"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	res, err := h.documentService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// UpdateDocument changes the fields present in the payload
// @Summary      Update document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Document id"
// @Param        payload  body      service.UpdateDocumentDTO  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/documents/{id} [put]
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.UpdateDocumentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.documentService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// DeleteDocument removes a document
// @Summary      Delete document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document id"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id.String()}))
}
