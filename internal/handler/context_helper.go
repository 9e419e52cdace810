package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// institutionID resolves the tenant for a request. Explicit header wins over
// query, and both win over the configured default.
func institutionID(c *gin.Context, fallback string) string {
	if id := strings.TrimSpace(c.GetHeader("X-Institution-ID")); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.Query("institutionId")); id != "" {
		return id
	}
	return fallback
}
