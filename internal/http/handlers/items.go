package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/http/validation"
	"github.com/nyozov/services/internal/modules/items"
	"github.com/nyozov/services/internal/modules/stores"
	"github.com/nyozov/services/internal/shared/apperr"
)

type ItemHandler struct {
	Items  *items.Service
	Stores *stores.Service
}

func NewItemHandler(itemSvc *items.Service, storeSvc *stores.Service) *ItemHandler {
	return &ItemHandler{Items: itemSvc, Stores: storeSvc}
}

type itemImageInput struct {
	URL      string `json:"url" binding:"required,max=512"`
	PublicID string `json:"publicId" binding:"required,max=255"`
	Position *int   `json:"position" binding:"omitempty,min=0"`
}

type createItemInput struct {
	StoreID     string           `json:"storeId" binding:"required"`
	Name        string           `json:"name" binding:"required,min=2,max=255"`
	Description string           `json:"description" binding:"omitempty,max=5000"`
	Price       string           `json:"price" binding:"required"`
	Images      []itemImageInput `json:"images" binding:"omitempty,max=10,dive"`
}

// POST /api/items
func (h *ItemHandler) Create(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)

	var in createItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid item.", fields))
		return
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid price.", map[string]string{"price": "must be a decimal string"}))
		return
	}

	ok, err := h.Stores.VerifyAccess(c.Request.Context(), subject, in.StoreID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if !ok {
		middleware.Fail(c, apperr.ForbiddenErr("You do not own this store."))
		return
	}

	input := items.CreateInput{
		StoreID:     in.StoreID,
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
	}
	for _, img := range in.Images {
		input.Images = append(input.Images, items.ImageInput{
			URL:      img.URL,
			PublicID: img.PublicID,
			Position: img.Position,
		})
	}

	item, err := h.Items.Create(c.Request.Context(), input)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": presentItem(item)})
}

// GET /api/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.Items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": presentItem(item)})
}

// GET /api/stores/:slug/items
func (h *ItemHandler) ListByStore(c *gin.Context) {
	st, err := h.Stores.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	list, err := h.Items.ListByStore(c.Request.Context(), st.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, it := range list {
		out = append(out, presentItem(it))
	}
	c.JSON(http.StatusOK, gin.H{"store": presentStore(st), "items": out})
}
