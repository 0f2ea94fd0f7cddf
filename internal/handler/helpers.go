package handler

import (
	"buildflow/internal/apperr"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// currentUserID returns the authenticated caller id set by the auth middleware.
func currentUserID(c *gin.Context) string {
	v, _ := c.Get("userID")
	s, _ := v.(string)
	return s
}

// abortWithError maps a service error to the matching HTTP status.
func abortWithError(c *gin.Context, err error) {
	status := apperr.Status(err)
	c.JSON(status, response.Error(status, err.Error()))
}
