package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/modules/notifications"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
)

type NotificationHandler struct {
	Notifications *notifications.Service
	Users         *users.Service
}

func NewNotificationHandler(n *notifications.Service, u *users.Service) *NotificationHandler {
	return &NotificationHandler{Notifications: n, Users: u}
}

func (h *NotificationHandler) currentUser(c *gin.Context) (users.User, bool) {
	subject, _ := middleware.CurrentSubject(c)
	u, err := h.Users.ByExternalID(c.Request.Context(), subject)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return users.User{}, false
		}
		middleware.Fail(c, err)
		return users.User{}, false
	}
	return u, true
}

// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		if !c.IsAborted() {
			c.JSON(http.StatusOK, gin.H{"notifications": []gin.H{}, "unreadCount": 0})
		}
		return
	}

	list, err := h.Notifications.ListForUser(c.Request.Context(), u.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	unread, err := h.Notifications.UnreadCount(c.Request.Context(), u.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, n := range list {
		item := gin.H{
			"id":        n.ID,
			"type":      n.Type,
			"title":     n.Title,
			"message":   n.Message,
			"read":      n.Read,
			"createdAt": n.CreatedAt,
		}
		if n.OrderID != nil {
			item["orderId"] = *n.OrderID
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out, "unreadCount": unread})
}

// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		if !c.IsAborted() {
			middleware.Fail(c, apperr.NotFoundErr("Notification not found."))
		}
		return
	}

	if err := h.Notifications.MarkRead(c.Request.Context(), u.ID, c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		if !c.IsAborted() {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		}
		return
	}

	if err := h.Notifications.MarkAllRead(c.Request.Context(), u.ID); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
