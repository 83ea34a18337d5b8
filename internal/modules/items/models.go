package items

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nyozov/services/internal/modules/stores"
)

// Item is a listing. Price is immutable for the payment core: orders
// snapshot it at purchase time and never re-read it live.
type Item struct {
	ID          string          `gorm:"type:char(36);primaryKey"`
	StoreID     string          `gorm:"type:char(36);not null;index:ix_items_store_id"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Store  stores.Store `gorm:"foreignKey:StoreID"`
	Images []ItemImage  `gorm:"foreignKey:ItemID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Item) TableName() string { return "items" }

type ItemImage struct {
	ID       string `gorm:"type:char(36);primaryKey"`
	ItemID   string `gorm:"type:char(36);not null;index:ix_item_images_item_id"`
	URL      string `gorm:"type:varchar(512);not null"`
	PublicID string `gorm:"type:varchar(255);not null"`
	Position int    `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
}

func (ItemImage) TableName() string { return "item_images" }
