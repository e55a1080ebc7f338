package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/belmontdev/mailbot/interfaces"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Status returns the current connection state of all accounts
func Status(connections interfaces.ConnectionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, connections.Status())
	}
}
