package main

import (
	"context"
	"log/slog"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nyozov/services/internal/config"
	"github.com/nyozov/services/internal/http/router"
	"github.com/nyozov/services/internal/mailer"
	"github.com/nyozov/services/internal/modules/connect"
	"github.com/nyozov/services/internal/modules/conversations"
	"github.com/nyozov/services/internal/modules/email"
	"github.com/nyozov/services/internal/modules/items"
	"github.com/nyozov/services/internal/modules/notifications"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/modules/payments/stripegw"
	"github.com/nyozov/services/internal/modules/stores"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		logger.Error("db open failed", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	st, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		logger.Error("storage init failed", "err", err)
		os.Exit(1)
	}
	logger.Info("storage ready", "driver", st.Driver)

	var mailSender email.Sender
	if cfg.SMTP.Host != "" {
		mailSender = email.NewMailerAdapter(mailer.NewSMTPMailer(cfg.SMTP), cfg.SMTP.FromAddr, cfg.SMTP.FromName)
	} else {
		logger.Warn("smtp not configured, order emails disabled")
	}

	gw := stripegw.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	if cfg.StripeWebhookSecret == "" {
		logger.Warn("webhook secret not set, event ingestion will reject all deliveries")
	}

	userSvc := users.NewService(db)
	storeSvc := stores.NewService(db, userSvc)
	itemSvc := items.NewService(db)
	orderRepo := orders.NewRepo(db)
	notifSvc := notifications.NewService(db)
	convSvc := conversations.NewService(db, userSvc)

	paySvc := payments.NewService(db, gw, logger)
	refundSvc := payments.NewRefundService(db, gw, mailSender, logger)
	webhookSvc := payments.NewWebhookService(db, paySvc, notifSvc, mailSender, logger)
	connectSvc := connect.NewService(db, gw, userSvc, logger)

	r := router.New(router.Deps{
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		FrontendOrigin: cfg.FrontendOrigin,

		Gateway:  gw,
		Payments: paySvc,
		Refunds:  refundSvc,
		Webhooks: webhookSvc,
		Connect:  connectSvc,

		Users:         userSvc,
		Stores:        storeSvc,
		Items:         itemSvc,
		Orders:        orderRepo,
		Notifications: notifSvc,
		Conversations: convSvc,

		Storage: st.Storage,
	})

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
