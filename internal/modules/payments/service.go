package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/items"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/shared/dberr"
)

// Service is the order reconciliation engine: it turns gateway-side
// payment state into ledger order state. It never caches order state
// across invocations; every decision re-reads the current row so that
// concurrent deliveries of the same event converge. Correctness comes
// from unique-key guarded inserts and status-conditioned updates, not
// from in-process locks.
type Service struct {
	db     *gorm.DB
	gw     Gateway
	logger *slog.Logger
}

func NewService(db *gorm.DB, gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, gw: gw, logger: logger}
}

type CreateCheckoutInput struct {
	ItemID     string
	BuyerEmail string
	SuccessURL string
	CancelURL  string

	// Forwarded to the gateway so blind client retries do not mint
	// duplicate sessions.
	IdempotencyKey string
}

type CreateCheckoutResult struct {
	CheckoutURL string
	SessionID   string
	OrderID     string
}

// CreateCheckout requests a destination-charge checkout session and
// persists a pending order keyed by the new session id, snapshotting
// the item price and the platform fee.
func (s *Service) CreateCheckout(ctx context.Context, in CreateCheckoutInput) (CreateCheckoutResult, error) {
	item, err := s.payableItem(ctx, in.ItemID)
	if err != nil {
		return CreateCheckoutResult{}, err
	}

	fee := PlatformFeeCents(item.Price)
	amount := AmountCents(item.Price)

	p := CheckoutSessionParams{
		BuyerEmail:       in.BuyerEmail,
		ItemName:         item.Name,
		AmountCents:      amount,
		PlatformFeeCents: fee,
		Destination:      *item.Store.User.StripeAccountID,
		SuccessURL:       in.SuccessURL,
		CancelURL:        in.CancelURL,
		IdempotencyKey:   in.IdempotencyKey,
		Metadata: map[string]string{
			"itemId":      item.ID,
			"storeId":     item.StoreID,
			"platformFee": strconv.FormatInt(fee, 10),
		},
	}
	if item.Description != nil {
		p.ItemDescription = *item.Description
	}
	if len(item.Images) > 0 {
		p.ImageURL = item.Images[0].URL
	}

	sess, err := s.gw.CreateCheckoutSession(ctx, p)
	if err != nil {
		return CreateCheckoutResult{}, apperr.GatewayErr("Failed to create checkout session.", err)
	}

	now := time.Now()
	sid := sess.ID
	o := orders.Order{
		ID:          uuid.NewString(),
		ItemID:      item.ID,
		BuyerEmail:  in.BuyerEmail,
		Amount:      item.Price,
		PlatformFee: FromCents(fee),
		SessionID:   &sid,
		Status:      orders.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&o).Error; err != nil {
		if dberr.IsDup(err) {
			// Gateway-level idempotent replay returned an existing
			// session; its order row already exists.
			existing, rerr := s.OrderBySessionID(ctx, sess.ID)
			if rerr == nil {
				return CreateCheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID, OrderID: existing.ID}, nil
			}
		}
		return CreateCheckoutResult{}, apperr.PersistenceErr(err)
	}

	return CreateCheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID, OrderID: o.ID}, nil
}

type CreateIntentInput struct {
	ItemID         string
	BuyerEmail     string // optional
	IdempotencyKey string // optional, forwarded to the gateway
}

type CreateIntentResult struct {
	ClientSecret    string
	PaymentIntentID string
}

// CreatePaymentIntent starts the direct-intent flow. No order row is
// created here; the order materializes when the intent succeeds.
func (s *Service) CreatePaymentIntent(ctx context.Context, in CreateIntentInput) (CreateIntentResult, error) {
	item, err := s.payableItem(ctx, in.ItemID)
	if err != nil {
		return CreateIntentResult{}, err
	}

	fee := PlatformFeeCents(item.Price)

	intent, err := s.gw.CreatePaymentIntent(ctx, PaymentIntentParams{
		AmountCents:      AmountCents(item.Price),
		PlatformFeeCents: fee,
		Destination:      *item.Store.User.StripeAccountID,
		BuyerEmail:       in.BuyerEmail,
		IdempotencyKey:   in.IdempotencyKey,
		Metadata: map[string]string{
			"itemId":      item.ID,
			"storeId":     item.StoreID,
			"platformFee": strconv.FormatInt(fee, 10),
		},
	})
	if err != nil {
		return CreateIntentResult{}, apperr.GatewayErr("Failed to create payment intent.", err)
	}

	return CreateIntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// CreateOrderFromIntent materializes the order for a succeeded intent.
// Lookup by payment id first: an existing row short-circuits, which is
// the primary defense against duplicate event delivery. The insert is
// guarded by the unique payment-id constraint; losing the race to a
// concurrent delivery falls back to reading the winner's row. The
// returned flag reports whether this call inserted the row, so callers
// can side-effect on first creation only.
func (s *Service) CreateOrderFromIntent(ctx context.Context, intent PaymentIntent) (orders.Order, bool, error) {
	if existing, err := s.OrderByPaymentID(ctx, intent.ID); err == nil {
		return existing, false, nil
	} else if !apperr.IsKind(err, apperr.NotFound) {
		return orders.Order{}, false, err
	}

	itemID := intent.Metadata["itemId"]
	if itemID == "" {
		return orders.Order{}, false, apperr.MissingMetadataErr("Payment intent has no itemId metadata.")
	}

	var item items.Item
	if err := s.db.WithContext(ctx).Preload("Store").First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orders.Order{}, false, apperr.NotFoundErr("Item not found.")
		}
		return orders.Order{}, false, apperr.PersistenceErr(err)
	}

	fee := FromCents(PlatformFeeCents(item.Price))
	if raw := intent.Metadata["platformFee"]; raw != "" {
		if cents, err := strconv.ParseInt(raw, 10, 64); err == nil {
			fee = FromCents(cents)
		}
	}

	now := time.Now()
	id := intent.ID
	o := orders.Order{
		ID:          uuid.NewString(),
		ItemID:      item.ID,
		BuyerEmail:  intent.ReceiptEmail,
		Amount:      item.Price,
		PlatformFee: fee,
		SessionID:   &id,
		PaymentID:   &id,
		Status:      orders.StatusPaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if intent.Shipping != nil {
		if raw, err := json.Marshal(intent.Shipping); err == nil {
			o.ShippingAddress = datatypes.JSON(raw)
		}
	}

	if err := s.db.WithContext(ctx).Create(&o).Error; err != nil {
		if dberr.IsDup(err) {
			// A concurrent delivery won the insert race.
			winner, rerr := s.OrderByPaymentID(ctx, intent.ID)
			return winner, false, rerr
		}
		return orders.Order{}, false, apperr.PersistenceErr(err)
	}

	o.Item = item
	return o, true, nil
}

// UpdateOrderStatus applies a checkout-session transition after a fresh
// read. Transitions the state machine forbids are skipped silently: a
// duplicate delivery must observe success, not an error.
func (s *Service) UpdateOrderStatus(ctx context.Context, sessionID, status, paymentID string) (orders.Order, error) {
	o, err := s.OrderBySessionID(ctx, sessionID)
	if err != nil {
		return orders.Order{}, err
	}

	if !orders.CanTransition(o.Status, status) {
		return o, nil
	}

	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}
	if paymentID != "" && o.PaymentID == nil {
		updates["payment_id"] = paymentID
	}

	// Conditioned on the status we read: a concurrent writer that got
	// there first makes this a no-op instead of a double flip.
	res := s.db.WithContext(ctx).Model(&orders.Order{}).
		Where("session_id = ? AND status = ?", sessionID, o.Status).
		Updates(updates)
	if res.Error != nil {
		if dberr.IsDup(res.Error) {
			// Another row already owns this payment id; keep ours as is.
			delete(updates, "payment_id")
			if err := s.db.WithContext(ctx).Model(&orders.Order{}).
				Where("session_id = ? AND status = ?", sessionID, o.Status).
				Updates(updates).Error; err != nil {
				return orders.Order{}, apperr.PersistenceErr(err)
			}
		} else {
			return orders.Order{}, apperr.PersistenceErr(res.Error)
		}
	}

	return s.OrderBySessionID(ctx, sessionID)
}

// VerifyCheckoutSession is the client-side fallback for webhook drift:
// it re-queries the gateway for ground truth and reconciles the ledger
// when the session turned out paid.
func (s *Service) VerifyCheckoutSession(ctx context.Context, sessionID string) (orders.Order, error) {
	sess, err := s.gw.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return orders.Order{}, apperr.GatewayErr("Failed to retrieve checkout session.", err)
	}

	if sess.PaymentStatus == "paid" {
		return s.UpdateOrderStatus(ctx, sessionID, orders.StatusPaid, sess.PaymentIntentID)
	}
	return s.OrderBySessionID(ctx, sessionID)
}

func (s *Service) OrderBySessionID(ctx context.Context, sessionID string) (orders.Order, error) {
	var o orders.Order
	err := s.db.WithContext(ctx).
		Preload("Item.Store").
		First(&o, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orders.Order{}, apperr.NotFoundErr("Order not found.")
		}
		return orders.Order{}, apperr.PersistenceErr(err)
	}
	return o, nil
}

func (s *Service) OrderByPaymentID(ctx context.Context, paymentID string) (orders.Order, error) {
	var o orders.Order
	err := s.db.WithContext(ctx).
		Preload("Item.Store").
		First(&o, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orders.Order{}, apperr.NotFoundErr("Order not found.")
		}
		return orders.Order{}, apperr.PersistenceErr(err)
	}
	return o, nil
}

// payableItem loads the item with its store owner and gates on the
// owner's ability to receive funds.
func (s *Service) payableItem(ctx context.Context, itemID string) (items.Item, error) {
	var item items.Item
	err := s.db.WithContext(ctx).
		Preload("Store.User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&item, "id = ?", itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return items.Item{}, apperr.NotFoundErr("Item not found.")
		}
		return items.Item{}, apperr.PersistenceErr(err)
	}

	owner := item.Store.User
	if owner.StripeAccountID == nil || *owner.StripeAccountID == "" {
		return items.Item{}, apperr.SellerNotPayableErr("Store owner has not set up payments.")
	}
	if !owner.StripeOnboardingComplete {
		return items.Item{}, apperr.SellerNotPayableErr("Store owner has not completed payment setup.")
	}
	return item, nil
}
