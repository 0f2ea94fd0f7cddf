package handler

import (
	"net/http"
	"strings"

	"buildflow/internal/storage"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// FileHandler serves stored objects against signed URLs. No session is
// required; the token embedded in the URL is the credential.
type FileHandler struct {
	store *storage.Store
}

func NewFileHandler(store *storage.Store) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/files/*object", h.Download)
}

// Download validates the signed token and streams the object
func (h *FileHandler) Download(c *gin.Context) {
	objectName := strings.TrimPrefix(c.Param("object"), "/")
	token := c.Query("token")

	if err := h.store.VerifyToken(token, objectName); err != nil {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Invalid or expired download token"))
		return
	}

	data, err := h.store.Read(objectName)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Object not found"))
		return
	}

	contentType := "application/octet-stream"
	if strings.HasSuffix(objectName, ".pdf") {
		contentType = "application/pdf"
	}
	c.Data(http.StatusOK, contentType, data)
}
