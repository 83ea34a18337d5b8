package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/email"
	"github.com/nyozov/services/internal/modules/notifications"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
)

// WebhookService applies verified gateway events to the ledger. The
// gateway delivers at least once, so every applier must be safe to
// re-run: a returned error makes the endpoint answer 5xx and the
// gateway redeliver later.
type WebhookService struct {
	db     *gorm.DB
	svc    *Service
	notifs *notifications.Service
	mail   email.Sender // nil disables buyer emails
	logger *slog.Logger
}

func NewWebhookService(db *gorm.DB, svc *Service, notifs *notifications.Service, mail email.Sender, logger *slog.Logger) *WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookService{db: db, svc: svc, notifs: notifs, mail: mail, logger: logger}
}

func (s *WebhookService) Handle(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventCheckoutCompleted:
		return s.applyCheckoutCompleted(ctx, ev)
	case EventIntentSucceeded:
		return s.applyIntentSucceeded(ctx, ev)
	case EventIntentFailed, EventIntentCanceled:
		return s.applyIntentFailed(ctx, ev)
	case EventCheckoutExpired:
		return s.applyCheckoutExpired(ctx, ev)
	default:
		// Unknown kinds are acknowledged without action.
		s.logger.InfoContext(ctx, "unhandled gateway event", "event_id", ev.ID, "type", ev.Type)
		return nil
	}
}

func (s *WebhookService) applyCheckoutCompleted(ctx context.Context, ev Event) error {
	if ev.Session == nil {
		return errors.New("checkout event missing session payload")
	}
	sess := ev.Session

	// Only act when the gateway says the session is actually paid.
	if sess.PaymentStatus != "paid" {
		s.logger.InfoContext(ctx, "checkout session completed but not paid",
			"session_id", sess.ID, "payment_status", sess.PaymentStatus)
		return nil
	}

	o, err := s.svc.OrderBySessionID(ctx, sess.ID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			// No row for this session; nothing to reconcile.
			s.logger.ErrorContext(ctx, "no order for completed session", "session_id", sess.ID)
			return nil
		}
		return err
	}

	// Duplicate delivery: the transition is already applied.
	if o.Status == orders.StatusPaid {
		s.logger.InfoContext(ctx, "order already marked paid", "order_id", o.ID)
		return nil
	}

	updated, err := s.svc.UpdateOrderStatus(ctx, sess.ID, orders.StatusPaid, sess.PaymentIntentID)
	if err != nil {
		return err
	}

	s.notifySale(ctx, updated)
	return nil
}

func (s *WebhookService) applyIntentSucceeded(ctx context.Context, ev Event) error {
	if ev.Intent == nil {
		return errors.New("intent event missing payment intent payload")
	}

	o, created, err := s.svc.CreateOrderFromIntent(ctx, *ev.Intent)
	if err != nil {
		return err
	}

	// Duplicate delivery short-circuits on the existing row; only the
	// delivery that materialized the order notifies.
	if created {
		s.notifySale(ctx, o)
	}
	return nil
}

// applyIntentFailed cancels a still-pending order tied to the intent.
// Orders in any other status, or with no row at all, are left alone.
func (s *WebhookService) applyIntentFailed(ctx context.Context, ev Event) error {
	if ev.Intent == nil {
		return errors.New("intent event missing payment intent payload")
	}
	return s.cancelPending(ctx, "payment_id", ev.Intent.ID)
}

func (s *WebhookService) applyCheckoutExpired(ctx context.Context, ev Event) error {
	if ev.Session == nil {
		return errors.New("checkout event missing session payload")
	}
	return s.cancelPending(ctx, "session_id", ev.Session.ID)
}

func (s *WebhookService) cancelPending(ctx context.Context, column, id string) error {
	// Status-conditioned write: only a pending order can be cancelled,
	// and a duplicate delivery matches zero rows.
	err := s.db.WithContext(ctx).Model(&orders.Order{}).
		Where(fmt.Sprintf("%s = ? AND status = ?", column), id, orders.StatusPending).
		Updates(map[string]any{
			"status":     orders.StatusCancelled,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return apperr.PersistenceErr(err)
	}
	return nil
}

// notifySale records a seller notification and emails the buyer. Both
// are fire-and-forget: a failure here must not fail event handling.
func (s *WebhookService) notifySale(ctx context.Context, o orders.Order) {
	var owner users.User
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", o.Item.Store.UserID).Error; err != nil {
		s.logger.ErrorContext(ctx, "store owner lookup failed", "order_id", o.ID, "err", err)
	} else if s.notifs != nil {
		_, err := s.notifs.Create(ctx, notifications.CreateInput{
			UserID:  owner.ID,
			Type:    notifications.TypeOrder,
			Title:   "New Order Received!",
			Message: fmt.Sprintf("You have a new order for %q from %s", o.Item.Name, o.BuyerEmail),
			OrderID: o.ID,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "order notification failed", "order_id", o.ID, "err", err)
		}
	}

	if s.mail != nil && o.BuyerEmail != "" {
		if err := email.SendOrderConfirmation(ctx, s.mail, o.BuyerEmail, o.Item.Name, o.ID, o.Amount.StringFixed(2)); err != nil {
			s.logger.ErrorContext(ctx, "order confirmation email failed", "order_id", o.ID, "err", err)
		}
	}
}
