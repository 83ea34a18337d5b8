package notifications

import "time"

const (
	TypeOrder   = "order"
	TypePayment = "payment"
	TypeSystem  = "system"
)

type Notification struct {
	ID      string  `gorm:"type:char(36);primaryKey"`
	UserID  string  `gorm:"type:char(36);not null;index:ix_notifications_user_id"`
	Type    string  `gorm:"type:varchar(32);not null"`
	Title   string  `gorm:"type:varchar(255);not null"`
	Message string  `gorm:"type:text;not null"`
	OrderID *string `gorm:"type:char(36)"`
	Read    bool    `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
}

func (Notification) TableName() string { return "notifications" }
