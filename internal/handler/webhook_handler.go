package handler

import (
	"net/http"

	"buildflow/internal/service"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives storage notifications from the object store.
// The caller is a machine, not a user, so the endpoint always acknowledges:
// malformed payloads are dead-lettered downstream, never bounced back.
type WebhookHandler struct {
	ocrService service.OCRService
}

func NewWebhookHandler(ocrService service.OCRService) *WebhookHandler {
	return &WebhookHandler{ocrService: ocrService}
}

func (h *WebhookHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/webhooks/storage", h.StorageObjectFinalized)
}

type storageEventPayload struct {
	Name string `json:"name"`
}

// StorageObjectFinalized handles an object-finalized notification
func (h *WebhookHandler) StorageObjectFinalized(c *gin.Context) {
	var payload storageEventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Acknowledge anyway so the store does not retry a payload that
		// can never parse.
		c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"ok": true}))
		return
	}

	if err := h.ocrService.IngestScan(c.Request.Context(), payload.Name); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"ok": true}))
}
