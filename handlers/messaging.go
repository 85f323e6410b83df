package handlers

import (
	"io"
	"net/http"
	"time"

	"brandconnect/middleware"
	"brandconnect/models"
	"brandconnect/services/messaging"
	"brandconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MessagingHandler struct {
	Messages  messaging.MessagingService
	Feed      messaging.Feed
	Heartbeat time.Duration
}

func (h *MessagingHandler) GetConversationsHandler(c *gin.Context) {
	list, err := h.Messages.GetConversations(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": list})
}

// CreateConversationHandler handles POST /api/conversations. The caller must
// be the client or the creative.
func (h *MessagingHandler) CreateConversationHandler(c *gin.Context) {
	var input struct {
		BookingID  string `json:"bookingId"`
		ClientID   string `json:"clientId" binding:"required"`
		CreativeID string `json:"creativeId" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if !requireParty(c, input.ClientID, input.CreativeID) {
		return
	}
	conv, err := h.Messages.CreateConversation(c.Request.Context(), input.BookingID, input.ClientID, input.CreativeID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *MessagingHandler) loadConversation(c *gin.Context) (*models.Conversation, bool) {
	conv, err := h.Messages.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}
	if !requireParty(c, conv.ClientID, conv.CreativeID) {
		return nil, false
	}
	return conv, true
}

func (h *MessagingHandler) GetMessagesHandler(c *gin.Context) {
	if _, ok := h.loadConversation(c); !ok {
		return
	}
	msgs, err := h.Messages.GetMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessageHandler handles POST /api/conversations/:id/messages. The sender
// is always the caller.
func (h *MessagingHandler) SendMessageHandler(c *gin.Context) {
	var input struct {
		Content     string `json:"content"`
		MessageType string `json:"messageType"`
	}
	if !bindJSON(c, &input) {
		return
	}
	msg, err := h.Messages.SendMessage(c.Request.Context(), c.Param("id"), middleware.UserID(c), input.Content, input.MessageType)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessagingHandler) MarkReadHandler(c *gin.Context) {
	ok, err := h.Messages.MarkMessagesAsRead(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// StreamHandler handles GET /api/conversations/:id/stream as server-sent
// events. Each new message is sent once as a "message" event; "ping" events
// keep idle connections open.
func (h *MessagingHandler) StreamHandler(c *gin.Context) {
	conv, ok := h.loadConversation(c)
	if !ok {
		return
	}
	if h.Feed == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "live updates unavailable", "")
		return
	}

	events := make(chan models.Message, 32)
	dedup := messaging.NewDeduplicator(256)
	logger := getLogger(c)
	unsubscribe, err := h.Feed.Subscribe(conv.ID, func(m models.Message) {
		if !dedup.First(m.ID) {
			return
		}
		select {
		case events <- m:
		default:
			logger.Warn("stream consumer too slow, dropping message", zap.String("conversationId", conv.ID), zap.String("messageId", m.ID))
		}
	})
	if err != nil {
		logger.Error("feed subscribe failed", zap.String("conversationId", conv.ID), zap.Error(err))
		utils.JSONError(c, http.StatusServiceUnavailable, "live updates unavailable", "")
		return
	}
	defer unsubscribe()

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"conversationId": conv.ID})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case m := <-events:
			c.SSEvent("message", m)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Unix())
			return true
		}
	})
}
