package handler

import (
	"net/http"

	"buildflow/internal/middleware"
	"buildflow/internal/service"
	"buildflow/pkg/pagination"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	poService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(poService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService}
}

func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	pos := router.Group("/api/projects/:id/purchase-orders")
	pos.Use(middleware.RequireAuth())
	{
		pos.POST("", h.CreatePurchaseOrder)
		pos.GET("", h.ListPurchaseOrders)
	}
}

// CreatePurchaseOrder issues a purchase order against an owner-approved material request
// @Summary      Create purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                              true  "Project ID"
// @Param        payload  body      service.CreatePurchaseOrderRequest  true  "Purchase Order Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseOrderResponse}
// @Failure      400      {object}  response.Response
// @Failure      412      {object}  response.Response
// @Security     BearerAuth
// @Router       /api/projects/{id}/purchase-orders [post]
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	po, err := h.poService.Create(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, po))
}

// ListPurchaseOrders returns a project's purchase orders, paginated
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Param        id     path      string  true   "Project ID"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.PurchaseOrderResponse}
// @Security     BearerAuth
// @Router       /api/projects/{id}/purchase-orders [get]
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	p := pagination.Parse(c)

	pos, total, err := h.poService.ListByProject(c.Request.Context(), c.Param("id"), currentUserID(c), p)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   pos,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}
