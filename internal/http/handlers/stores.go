package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/http/validation"
	"github.com/nyozov/services/internal/modules/stores"
	"github.com/nyozov/services/internal/shared/apperr"
)

type StoreHandler struct {
	Stores *stores.Service
}

func NewStoreHandler(svc *stores.Service) *StoreHandler {
	return &StoreHandler{Stores: svc}
}

type createStoreInput struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// POST /api/stores
func (h *StoreHandler) Create(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	var in createStoreInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid store.", fields))
		return
	}

	st, err := h.Stores.Create(c.Request.Context(), subject, stores.CreateInput{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"store": presentStore(st)})
}

// GET /api/stores
func (h *StoreHandler) ListMine(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	list, err := h.Stores.ListByOwner(c.Request.Context(), subject)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, st := range list {
		out = append(out, presentStore(st))
	}
	c.JSON(http.StatusOK, gin.H{"stores": out})
}

// GET /api/stores/:slug
func (h *StoreHandler) BySlug(c *gin.Context) {
	st, err := h.Stores.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": presentStore(st)})
}
