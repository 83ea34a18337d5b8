package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/http/validation"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
)

type UserHandler struct {
	Users *users.Service
}

func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{Users: svc}
}

type syncUserInput struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Name  string `json:"name" binding:"omitempty,max=255"`
}

// POST /api/users/sync
// Upserts the local row for the authenticated identity-provider
// subject. The frontend calls this after login.
func (h *UserHandler) Sync(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	var in syncUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid user payload.", fields))
		return
	}

	u, err := h.Users.Sync(c.Request.Context(), users.SyncInput{
		ExternalID: subject,
		Email:      in.Email,
		Name:       in.Name,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": presentUser(u)})
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	u, err := h.Users.ByExternalID(c.Request.Context(), subject)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": presentUser(u)})
}
