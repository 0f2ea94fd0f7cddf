package handler

import (
	"net/http"

	"buildflow/internal/middleware"
	"buildflow/internal/service"
	"buildflow/pkg/pagination"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type GoodsReceiptHandler struct {
	grnService service.GoodsReceiptService
}

func NewGoodsReceiptHandler(grnService service.GoodsReceiptService) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{grnService: grnService}
}

func (h *GoodsReceiptHandler) RegisterRoutes(router *gin.RouterGroup) {
	grns := router.Group("/api/projects/:id/goods-receipts")
	grns.Use(middleware.RequireAuth())
	{
		grns.POST("", h.ConfirmGoodsReceipt)
		grns.GET("", h.ListGoodsReceipts)
	}
}

// ConfirmGoodsReceipt records receipt of materials against a purchase order
// @Summary      Confirm goods receipt
// @Tags         goods-receipts
// @Accept       json
// @Produce      json
// @Param        id       path      string                              true  "Project ID"
// @Param        payload  body      service.ConfirmGoodsReceiptRequest  true  "Goods Receipt Payload"
// @Success      201      {object}  response.Response{data=service.GoodsReceiptResponse}
// @Failure      400      {object}  response.Response
// @Failure      412      {object}  response.Response
// @Security     BearerAuth
// @Router       /api/projects/{id}/goods-receipts [post]
func (h *GoodsReceiptHandler) ConfirmGoodsReceipt(c *gin.Context) {
	var req service.ConfirmGoodsReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	grn, err := h.grnService.Confirm(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, grn))
}

// ListGoodsReceipts returns a project's goods receipts, paginated
// @Summary      List goods receipts
// @Tags         goods-receipts
// @Produce      json
// @Param        id     path      string  true   "Project ID"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.GoodsReceiptResponse}
// @Security     BearerAuth
// @Router       /api/projects/{id}/goods-receipts [get]
func (h *GoodsReceiptHandler) ListGoodsReceipts(c *gin.Context) {
	p := pagination.Parse(c)

	grns, total, err := h.grnService.ListByProject(c.Request.Context(), c.Param("id"), currentUserID(c), p)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   grns,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}
