package orders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nyozov/services/internal/shared/apperr"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// DB returns the underlying database connection for direct queries.
func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Item.Store.User").
		Preload("Item.Images").
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, apperr.NotFoundErr("Order not found.")
		}
		return Order{}, apperr.PersistenceErr(err)
	}
	return o, nil
}

func (r *Repo) BySessionID(ctx context.Context, sessionID string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Item.Store").
		First(&o, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, apperr.NotFoundErr("Order not found.")
		}
		return Order{}, apperr.PersistenceErr(err)
	}
	return o, nil
}

func (r *Repo) ByPaymentID(ctx context.Context, paymentID string) (Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Item.Store").
		First(&o, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, apperr.NotFoundErr("Order not found.")
		}
		return Order{}, apperr.PersistenceErr(err)
	}
	return o, nil
}

// ListBySeller returns every order placed against the seller's stores,
// newest first. externalUserID is the identity-provider subject; no local
// user row means no stores, so an empty list.
func (r *Repo) ListBySeller(ctx context.Context, externalUserID string) ([]Order, error) {
	var out []Order
	err := r.db.WithContext(ctx).
		Joins("JOIN items ON items.id = orders.item_id").
		Joins("JOIN stores ON stores.id = items.store_id").
		Joins("JOIN users ON users.id = stores.user_id").
		Where("users.external_id = ?", externalUserID).
		Preload("Item.Store").
		Order("orders.created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.PersistenceErr(err)
	}
	return out, nil
}
