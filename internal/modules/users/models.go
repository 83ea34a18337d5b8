package users

import "time"

// User mirrors an identity-provider subject. ExternalID is the opaque
// verified id the identity collaborator hands us; it is the stable lookup
// key for every authenticated read path.
type User struct {
	ID         string  `gorm:"type:char(36);primaryKey"`
	ExternalID string  `gorm:"type:varchar(64);not null;uniqueIndex:ux_users_external_id"`
	Email      string  `gorm:"type:varchar(255);not null"`
	Name       *string `gorm:"type:varchar(255)"`

	// Connected-account state. AccountID is set once at onboarding start;
	// OnboardingComplete is a one-way latch, never reset to false.
	StripeAccountID          *string `gorm:"type:varchar(64)"`
	StripeOnboardingComplete bool    `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (User) TableName() string { return "users" }
