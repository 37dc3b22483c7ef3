package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bellhop/bellhop/internal/channel"
	"github.com/bellhop/bellhop/internal/models"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	router.GET("/healthz", handleHealth())

	router.POST("/webhook", handleWebhook(opts))

	api := router.Group("/api")
	{
		api.POST("/transfers", handleCreateTransfer(opts))
		api.POST("/transfers/resume", handleResumeTransfer(opts))
		api.GET("/transfers", handleListTransfers(opts))
		api.GET("/transfers/check", handleCheckTransfer(opts))
		api.GET("/sessions/:id", handleSessionDetail(opts))
	}
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// handleWebhook receives the channel's inbound-message callback. The payload
// is form-encoded in the Twilio style: From, To, Body, MessageSid. The
// "whatsapp:" address prefix is stripped before processing.
func handleWebhook(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		sender := stripWhatsAppPrefix(c.PostForm("From"))
		if sender == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "From is required"})
			return
		}

		msg := channel.InboundMessage{
			ID:          c.PostForm("MessageSid"),
			Sender:      sender,
			Text:        c.PostForm("Body"),
			ContentType: "text",
			Account:     opts.Account,
			Direction:   models.DirectionIncoming,
			Timestamp:   time.Now(),
		}

		if err := opts.Processor.Process(c.Request.Context(), msg); err != nil {
			log.Printf("api: webhook: process message from %s: %v", sender, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type transferRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Agent       string `json:"agent"`
	Notes       string `json:"notes"`
}

func handleCreateTransfer(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		transfer, err := opts.Store.TransferToAgent(req.PhoneNumber, opts.Account, req.Agent, req.Notes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, transfer)
	}
}

type resumeRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	ResumedBy   string `json:"resumed_by"`
}

func handleResumeTransfer(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resumeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resumed, err := opts.Store.ResumeChatbot(req.PhoneNumber, opts.Account, req.ResumedBy)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"resumed": resumed})
	}
}

func handleListTransfers(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		transfers, err := opts.Store.ActiveTransfers(opts.Account, c.Query("agent"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transfers": transfers})
	}
}

func handleCheckTransfer(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Query("phone")
		if phone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
			return
		}

		transferred, err := opts.Store.IsTransferred(phone, opts.Account)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transferred": transferred})
	}
}

func handleSessionDetail(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}

		sess, err := opts.Store.Get(uint(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		history, err := opts.Store.History(sess.ID, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess, "messages": history})
	}
}

// stripWhatsAppPrefix removes the channel address prefix from a phone
// number, e.g. "whatsapp:+1555" -> "+1555".
func stripWhatsAppPrefix(addr string) string {
	return strings.TrimSpace(strings.TrimPrefix(addr, "whatsapp:"))
}
