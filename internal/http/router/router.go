package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/handlers"
	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/modules/connect"
	"github.com/nyozov/services/internal/modules/conversations"
	itemsmod "github.com/nyozov/services/internal/modules/items"
	"github.com/nyozov/services/internal/modules/notifications"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/modules/stores"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/storage"
)

type Deps struct {
	Logger         *slog.Logger
	JWTSecret      string
	FrontendOrigin string

	Gateway  payments.Gateway
	Payments *payments.Service
	Refunds  *payments.RefundService
	Webhooks *payments.WebhookService
	Connect  *connect.Service

	Users         *users.Service
	Stores        *stores.Service
	Items         *itemsmod.Service
	Orders        *orders.Repo
	Notifications *notifications.Service
	Conversations *conversations.Service

	Storage storage.Storage
}

func New(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))
	r.Use(cors(d.FrontendOrigin))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	checkoutH := handlers.NewCheckoutHandler(d.Payments, d.FrontendOrigin)
	webhookH := handlers.NewWebhookHandler(d.Logger, d.Gateway, d.Webhooks)
	refundH := handlers.NewRefundHandler(d.Orders, d.Refunds)
	connectH := handlers.NewConnectHandler(d.Connect, d.FrontendOrigin)
	storeH := handlers.NewStoreHandler(d.Stores)
	itemH := handlers.NewItemHandler(d.Items, d.Stores)
	orderH := handlers.NewOrderHandler(d.Orders)
	notifH := handlers.NewNotificationHandler(d.Notifications, d.Users)
	convH := handlers.NewConversationHandler(d.Conversations)
	userH := handlers.NewUserHandler(d.Users)
	uploadH := handlers.NewUploadHandler(d.Storage)

	api := r.Group("/api")
	api.Use(middleware.Auth(d.JWTSecret))

	// Public: buyers have no account.
	api.POST("/stripe/checkout", checkoutH.Create)
	api.GET("/stripe/checkout/verify", checkoutH.Verify)
	api.POST("/stripe/payment-intent", checkoutH.CreateIntent)
	api.POST("/stripe/webhook", webhookH.Handle)
	api.GET("/stores/:slug", storeH.BySlug)
	api.GET("/stores/:slug/items", itemH.ListByStore)
	api.GET("/items/:id", itemH.Get)

	// Authenticated seller/buyer surface.
	auth := api.Group("")
	auth.Use(middleware.RequireAuth())

	auth.POST("/users/sync", userH.Sync)
	auth.GET("/users/me", userH.Me)

	auth.POST("/stores", storeH.Create)
	auth.GET("/stores", storeH.ListMine)
	auth.POST("/items", itemH.Create)
	auth.POST("/uploads", uploadH.Upload)

	auth.GET("/orders", orderH.ListMine)
	auth.POST("/orders/:id/refund", refundH.Refund)

	auth.POST("/stripe/connect/onboard", connectH.Onboard)
	auth.GET("/stripe/connect/status", connectH.Status)
	auth.GET("/stripe/connect/dashboard", connectH.Dashboard)

	auth.GET("/notifications", notifH.List)
	auth.POST("/notifications/:id/read", notifH.MarkRead)
	auth.POST("/notifications/read-all", notifH.MarkAllRead)

	auth.GET("/conversations", convH.List)
	auth.GET("/conversations/:id/messages", convH.Messages)
	auth.POST("/conversations/messages", convH.Send)
	auth.POST("/conversations/:id/read", convH.MarkRead)

	return r
}

func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
