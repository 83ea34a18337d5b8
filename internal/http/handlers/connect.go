package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/modules/connect"
)

type ConnectHandler struct {
	Connect        *connect.Service
	FrontendOrigin string
}

func NewConnectHandler(svc *connect.Service, frontendOrigin string) *ConnectHandler {
	return &ConnectHandler{Connect: svc, FrontendOrigin: frontendOrigin}
}

// POST /api/stripe/connect/onboard
func (h *ConnectHandler) Onboard(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = h.FrontendOrigin
	}

	url, err := h.Connect.OnboardingLink(c.Request.Context(), subject, origin)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GET /api/stripe/connect/status
func (h *ConnectHandler) Status(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	st, err := h.Connect.AccountStatus(c.Request.Context(), subject)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /api/stripe/connect/dashboard
func (h *ConnectHandler) Dashboard(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	url, err := h.Connect.DashboardLink(c.Request.Context(), subject)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
