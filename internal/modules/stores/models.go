package stores

import (
	"time"

	"github.com/nyozov/services/internal/modules/users"
)

type Store struct {
	ID          string  `gorm:"type:char(36);primaryKey"`
	UserID      string  `gorm:"type:char(36);not null;index:ix_stores_user_id"`
	Name        string  `gorm:"type:varchar(255);not null"`
	Slug        string  `gorm:"type:varchar(255);not null;uniqueIndex:ux_stores_slug"`
	Description *string `gorm:"type:text"`

	User users.User `gorm:"foreignKey:UserID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Store) TableName() string { return "stores" }
