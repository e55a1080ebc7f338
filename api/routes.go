package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/belmontdev/mailbot/api/handlers"
	"github.com/belmontdev/mailbot/api/middleware"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/tracing"
	"github.com/belmontdev/mailbot/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, log logger.Logger, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// Health check and status endpoints (always open)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(s.ConnectionManager))

	// The scan and send endpoints are only guarded when an API key is
	// configured; with no key set they stay open.
	guarded := r.Group("")
	if apikey != "" {
		guarded.Use(middleware.APIKeyMiddleware(middleware.APIKeyConfig{
			HeaderName:  "X-MAILBOT-API-KEY",
			ValidAPIKey: apikey,
		}))
	}

	email := guarded.Group("/email")
	{
		email.GET("/latest-email", handlers.CheckEmails(s.Scanner))
		email.POST("/webhook", handlers.CheckEmails(s.Scanner))
	}

	email2 := guarded.Group("/email2")
	{
		email2.POST("/send-custom-email", handlers.SendCustomEmail(s.Responder, log))
	}
}
