package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"buildflow/internal/apperr"
	"buildflow/internal/middleware"
	"buildflow/internal/model"
	"buildflow/internal/service"
	"buildflow/internal/storage"
	"buildflow/pkg/pagination"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BillHandler struct {
	billService service.BillService
	pdfService  service.BillPDFService
	ocrService  service.OCRService
	guard       service.AccessGuard
	store       *storage.Store
	log         *zap.Logger
}

func NewBillHandler(billService service.BillService, pdfService service.BillPDFService, ocrService service.OCRService, guard service.AccessGuard, store *storage.Store, log *zap.Logger) *BillHandler {
	return &BillHandler{
		billService: billService,
		pdfService:  pdfService,
		ocrService:  ocrService,
		guard:       guard,
		store:       store,
		log:         log,
	}
}

func (h *BillHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/api/projects/:id/bills")
	projects.Use(middleware.RequireAuth())
	{
		projects.POST("", h.CreateBill)
		projects.GET("", h.ListBills)
		projects.POST("/:billId/scan", h.UploadScan)
	}

	bills := router.Group("/api/bills")
	bills.Use(middleware.RequireAuth())
	{
		bills.PUT("/:id/approve", h.ApproveBill)
		bills.POST("/:id/pdf", h.GenerateBillPDF)
	}
}

// CreateBill records a bill against a confirmed goods receipt and splits GST
// @Summary      Create bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Project ID"
// @Param        payload  body      service.CreateBillRequest  true  "Bill Payload"
// @Success      201      {object}  response.Response{data=service.BillResponse}
// @Failure      400      {object}  response.Response
// @Failure      412      {object}  response.Response
// @Security     BearerAuth
// @Router       /api/projects/{id}/bills [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req service.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bill, err := h.billService.Create(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}

// ListBills returns a project's bills, paginated
// @Summary      List bills
// @Tags         bills
// @Produce      json
// @Param        id     path      string  true   "Project ID"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.BillResponse}
// @Security     BearerAuth
// @Router       /api/projects/{id}/bills [get]
func (h *BillHandler) ListBills(c *gin.Context) {
	p := pagination.Parse(c)

	bills, total, err := h.billService.ListByProject(c.Request.Context(), c.Param("id"), currentUserID(c), p)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   bills,
		"total":  total,
		"page":   p.Page,
		"limit":  p.Limit,
	})
}

// ApproveBill advances a bill from BILL_GENERATED to BILL_APPROVED
// @Summary      Approve bill
// @Tags         bills
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      412  {object}  response.Response
// @Security     BearerAuth
// @Router       /api/bills/{id}/approve [put]
func (h *BillHandler) ApproveBill(c *gin.Context) {
	if err := h.billService.Approve(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"ok": true}))
}

// GenerateBillPDF renders the bill to PDF and returns a signed download URL
// @Summary      Generate bill PDF
// @Tags         bills
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /api/bills/{id}/pdf [post]
func (h *BillHandler) GenerateBillPDF(c *gin.Context) {
	url, err := h.pdfService.Generate(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"pdf_url": url}))
}

// UploadScan stores a scanned bill image and kicks off OCR ingestion
// @Summary      Upload bill scan
// @Tags         bills
// @Accept       multipart/form-data
// @Produce      json
// @Param        id      path      string  true  "Project ID"
// @Param        billId  path      string  true  "Bill ID"
// @Param        file    formData  file    true  "Scanned bill image"
// @Success      202     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      412     {object}  response.Response
// @Security     BearerAuth
// @Router       /api/projects/{id}/bills/{billId}/scan [post]
func (h *BillHandler) UploadScan(c *gin.Context) {
	// Same gate as bill creation: only the site managers of an active
	// project may attach scans to its bills.
	projUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, apperr.NotFound("project not found"))
		return
	}
	if _, err := h.guard.CheckScope(c.Request.Context(), projUUID, currentUserID(c), model.RoleManager, model.RoleFieldManager); err != nil {
		abortWithError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing scan file: "+err.Error()))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Cannot read scan file: "+err.Error()))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Cannot read scan file: "+err.Error()))
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(file.Filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	objectName := fmt.Sprintf("bills/%s/%s.%s", c.Param("id"), c.Param("billId"), ext)

	if err := h.store.Save(objectName, data); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Cannot store scan: "+err.Error()))
		return
	}

	// Ingestion runs off the request path; malformed or unmatched scans are
	// dead-lettered inside the service rather than surfaced to the uploader.
	go func() {
		if err := h.ocrService.IngestScan(context.Background(), objectName); err != nil {
			h.log.Error("scan ingestion failed", zap.String("object", objectName), zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, response.Success(http.StatusAccepted, gin.H{"object": objectName}))
}
