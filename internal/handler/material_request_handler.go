package handler

import (
	"net/http"

	"buildflow/internal/middleware"
	"buildflow/internal/service"
	"buildflow/pkg/pagination"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type MaterialRequestHandler struct {
	mrService service.MaterialRequestService
}

func NewMaterialRequestHandler(mrService service.MaterialRequestService) *MaterialRequestHandler {
	return &MaterialRequestHandler{mrService: mrService}
}

func (h *MaterialRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Role and project-membership checks happen in the access guard; the
	// middleware only establishes the caller identity.
	projects := router.Group("/api/projects/:id/material-requests")
	projects.Use(middleware.RequireAuth())
	{
		projects.POST("", h.CreateMaterialRequest)
		projects.GET("", h.ListMaterialRequests)
	}

	mrs := router.Group("/api/material-requests")
	mrs.Use(middleware.RequireAuth())
	{
		mrs.PUT("/:id/engineer-approve", h.EngineerApprove)
		mrs.PUT("/:id/owner-approve", h.OwnerApprove)
	}
}

// CreateMaterialRequest raises a new material request on a project
// @Summary      Create material request
// @Tags         material-requests
// @Accept       json
// @Produce      json
// @Param        id       path      string                                true  "Project ID"
// @Param        payload  body      service.CreateMaterialRequestRequest  true  "Material Request Payload"
// @Success      201      {object}  response.Response{data=service.MaterialRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      412      {object}  response.Response
// @Security     BearerAuth
// @Router       /api/projects/{id}/material-requests [post]
func (h *MaterialRequestHandler) CreateMaterialRequest(c *gin.Context) {
	var req service.CreateMaterialRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	mr, err := h.mrService.Create(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, mr))
}

// ListMaterialRequests returns a project's material requests, paginated
// @Summary      List material requests
// @Tags         material-requests
// @Produce      json
// @Param        id     path      string  true   "Project ID"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.MaterialRequestResponse}
// @Security     BearerAuth
// @Router       /api/projects/{id}/material-requests [get]
func (h *MaterialRequestHandler) ListMaterialRequests(c *gin.Context) {
	p := pagination.Parse(c)

	mrs, total, err := h.mrService.ListByProject(c.Request.Context(), c.Param("id"), currentUserID(c), p)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   mrs,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}

// EngineerApprove advances a REQUESTED material request
// @Summary      Engineer approval
// @Tags         material-requests
// @Produce      json
// @Param        id   path      string  true  "Material Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      412  {object}  response.Response
// @Security     BearerAuth
// @Router       /api/material-requests/{id}/engineer-approve [put]
func (h *MaterialRequestHandler) EngineerApprove(c *gin.Context) {
	if err := h.mrService.EngineerApprove(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"ok": true}))
}

// OwnerApprove advances an ENGINEER_APPROVED material request
// @Summary      Owner approval
// @Tags         material-requests
// @Produce      json
// @Param        id   path      string  true  "Material Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      412  {object}  response.Response
// @Security     BearerAuth
// @Router       /api/material-requests/{id}/owner-approve [put]
func (h *MaterialRequestHandler) OwnerApprove(c *gin.Context) {
	if err := h.mrService.OwnerApprove(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"ok": true}))
}
