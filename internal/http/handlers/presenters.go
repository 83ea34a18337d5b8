package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/modules/items"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/stores"
	"github.com/nyozov/services/internal/modules/users"
)

// JSON shapes returned to the storefront client. Money renders as a
// decimal string, never a float.

func presentOrder(o orders.Order) gin.H {
	out := gin.H{
		"id":          o.ID,
		"itemId":      o.ItemID,
		"buyerEmail":  o.BuyerEmail,
		"amount":      o.Amount.StringFixed(2),
		"platformFee": o.PlatformFee.StringFixed(2),
		"status":      o.Status,
		"createdAt":   o.CreatedAt.Format(time.RFC3339),
	}
	if o.SessionID != nil {
		out["sessionId"] = *o.SessionID
	}
	if o.PaymentID != nil {
		out["paymentId"] = *o.PaymentID
	}
	if o.RefundAmount != nil {
		out["refundAmount"] = o.RefundAmount.StringFixed(2)
	}
	if o.RefundedAt != nil {
		out["refundedAt"] = o.RefundedAt.Format(time.RFC3339)
	}
	if len(o.ShippingAddress) > 0 {
		out["shippingAddress"] = json.RawMessage(o.ShippingAddress)
	}
	if o.Item.ID != "" {
		out["item"] = presentItem(o.Item)
	}
	return out
}

func presentItem(it items.Item) gin.H {
	images := make([]gin.H, 0, len(it.Images))
	for _, img := range it.Images {
		images = append(images, gin.H{
			"id":       img.ID,
			"url":      img.URL,
			"publicId": img.PublicID,
			"position": img.Position,
		})
	}
	out := gin.H{
		"id":      it.ID,
		"storeId": it.StoreID,
		"name":    it.Name,
		"price":   it.Price.StringFixed(2),
		"images":  images,
	}
	if it.Description != nil {
		out["description"] = *it.Description
	}
	if it.Store.ID != "" {
		out["store"] = presentStore(it.Store)
	}
	return out
}

func presentStore(st stores.Store) gin.H {
	out := gin.H{
		"id":     st.ID,
		"userId": st.UserID,
		"name":   st.Name,
		"slug":   st.Slug,
	}
	if st.Description != nil {
		out["description"] = *st.Description
	}
	return out
}

func presentUser(u users.User) gin.H {
	out := gin.H{
		"id":                 u.ID,
		"externalId":         u.ExternalID,
		"email":              u.Email,
		"onboardingComplete": u.StripeOnboardingComplete,
	}
	if u.Name != nil {
		out["name"] = *u.Name
	}
	return out
}
