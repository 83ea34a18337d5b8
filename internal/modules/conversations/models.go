package conversations

import (
	"time"

	"github.com/nyozov/services/internal/modules/users"
)

type Conversation struct {
	ID string `gorm:"type:char(36);primaryKey"`

	Participants []Participant `gorm:"foreignKey:ConversationID"`
	Messages     []Message     `gorm:"foreignKey:ConversationID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Conversation) TableName() string { return "conversations" }

type Participant struct {
	ID             string `gorm:"type:char(36);primaryKey"`
	ConversationID string `gorm:"type:char(36);not null;uniqueIndex:ux_participants_conv_user,priority:1"`
	UserID         string `gorm:"type:char(36);not null;uniqueIndex:ux_participants_conv_user,priority:2"`

	User users.User `gorm:"foreignKey:UserID"`

	CreatedAt time.Time `gorm:"not null"`
}

func (Participant) TableName() string { return "conversation_participants" }

type Message struct {
	ID             string `gorm:"type:char(36);primaryKey"`
	ConversationID string `gorm:"type:char(36);not null;index:ix_messages_conversation_id"`
	SenderUserID   string `gorm:"type:char(36);not null"`
	Content        string `gorm:"type:text;not null"`
	ReadAt         *time.Time

	Sender users.User `gorm:"foreignKey:SenderUserID"`

	CreatedAt time.Time `gorm:"not null"`
}

func (Message) TableName() string { return "conversation_messages" }
