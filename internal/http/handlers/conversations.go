package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/http/validation"
	"github.com/nyozov/services/internal/modules/conversations"
	"github.com/nyozov/services/internal/shared/apperr"
)

type ConversationHandler struct {
	Conversations *conversations.Service
}

func NewConversationHandler(svc *conversations.Service) *ConversationHandler {
	return &ConversationHandler{Conversations: svc}
}

// GET /api/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	views, err := h.Conversations.ListForUser(c.Request.Context(), subject)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(views))
	for _, v := range views {
		item := gin.H{
			"id":        v.Conversation.ID,
			"updatedAt": v.Conversation.UpdatedAt.Format(time.RFC3339),
		}
		parts := make([]gin.H, 0, len(v.Conversation.Participants))
		for _, p := range v.Conversation.Participants {
			parts = append(parts, presentUser(p.User))
		}
		item["participants"] = parts
		if v.LastMessage != nil {
			item["lastMessage"] = presentMessage(*v.LastMessage)
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// GET /api/conversations/:id/messages
func (h *ConversationHandler) Messages(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	_, msgs, err := h.Conversations.Messages(c.Request.Context(), subject, c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, presentMessage(m))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

type sendMessageInput struct {
	ConversationID  string `json:"conversationId" binding:"omitempty"`
	RecipientUserID string `json:"recipientUserId" binding:"omitempty"`
	Content         string `json:"content" binding:"required,min=1,max=5000"`
}

// POST /api/conversations/messages
func (h *ConversationHandler) Send(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	var in sendMessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid message.", fields))
		return
	}

	msg, err := h.Conversations.Send(c.Request.Context(), subject, conversations.SendInput{
		ConversationID:  in.ConversationID,
		RecipientUserID: in.RecipientUserID,
		Content:         in.Content,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": presentMessage(msg)})
}

// POST /api/conversations/:id/read
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	if err := h.Conversations.MarkRead(c.Request.Context(), subject, c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func presentMessage(m conversations.Message) gin.H {
	out := gin.H{
		"id":             m.ID,
		"conversationId": m.ConversationID,
		"senderUserId":   m.SenderUserID,
		"content":        m.Content,
		"createdAt":      m.CreatedAt.Format(time.RFC3339),
	}
	if m.ReadAt != nil {
		out["readAt"] = m.ReadAt.Format(time.RFC3339)
	}
	return out
}
