package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/modules/orders"
)

type OrderHandler struct {
	Orders *orders.Repo
}

func NewOrderHandler(repo *orders.Repo) *OrderHandler {
	return &OrderHandler{Orders: repo}
}

// GET /api/orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	list, err := h.Orders.ListBySeller(c.Request.Context(), subject)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, o := range list {
		out = append(out, presentOrder(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}
