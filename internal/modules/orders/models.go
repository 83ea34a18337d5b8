package orders

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/nyozov/services/internal/modules/items"
)

const (
	StatusPending           = "pending"
	StatusPaid              = "paid"
	StatusCancelled         = "cancelled"
	StatusRefunded          = "refunded"
	StatusPartiallyRefunded = "partially_refunded"
)

// Order is one buyer purchase attempt against one item. SessionID and
// PaymentID each carry a unique index; those constraints are what make
// duplicate event delivery converge on a single row.
type Order struct {
	ID         string `gorm:"type:char(36);primaryKey"`
	ItemID     string `gorm:"type:char(36);not null;index:ix_orders_item_id"`
	BuyerEmail string `gorm:"type:varchar(255);not null"`

	// Snapshot of the item price and the 10% platform cut at purchase
	// time, in major currency units.
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PlatformFee decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	SessionID *string `gorm:"type:varchar(255);uniqueIndex:ux_orders_session_id"`
	PaymentID *string `gorm:"type:varchar(255);uniqueIndex:ux_orders_payment_id"`

	Status string `gorm:"type:varchar(32);not null"`

	RefundID     *string          `gorm:"type:varchar(255)"`
	RefundAmount *decimal.Decimal `gorm:"type:decimal(10,2)"`
	RefundedAt   *time.Time

	ShippingAddress datatypes.JSON `gorm:"type:json"`

	Item items.Item `gorm:"foreignKey:ItemID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

// CanTransition encodes the order state machine:
// pending -> {paid, cancelled}; paid -> {refunded, partially_refunded}.
// Everything else is a skip, not an error: idempotency requires silently
// ignoring an event that would re-apply an applied transition.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusPaid || to == StatusCancelled
	case StatusPaid:
		return to == StatusRefunded || to == StatusPartiallyRefunded
	default:
		return false
	}
}
