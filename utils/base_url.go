package utils

import "github.com/gin-gonic/gin"

// GetBaseURL returns the externally visible API root, used for Location
// headers.
func GetBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/api"
}
