package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/belmontdev/mailbot/interfaces"
	"github.com/belmontdev/mailbot/internal/logger"
	"github.com/belmontdev/mailbot/internal/models"
	"github.com/belmontdev/mailbot/internal/tracing"
)

// SendCustomEmailRequest is the body of the ad-hoc send endpoint.
type SendCustomEmailRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// CheckEmails synchronously scans the primary account's inbox and reports
// the outcome. Used by both the manual trigger and the webhook endpoint.
func CheckEmails(scanner interfaces.Scanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "CheckEmails", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		if err := scanner.Scan(ctx, models.PrimaryAccountKey); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Emails processed and responses sent.",
		})
	}
}

// SendCustomEmail runs the generate-and-send pipeline for an ad-hoc request,
// bypassing the processed-message ledger.
func SendCustomEmail(responder interfaces.Responder, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "SendCustomEmail", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request SendCustomEmailRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request format",
			})
			return
		}

		requestID := uuid.New().String()
		span.SetTag("request-id", requestID)
		log.Infof("Ad-hoc send request %s for %s", requestID, request.To)

		if err := responder.SendDirect(ctx, request.To, request.Subject, request.Message); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "Email sent successfully",
		})
	}
}
