package conversations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
)

type Service struct {
	db    *gorm.DB
	users *users.Service
}

func NewService(db *gorm.DB, us *users.Service) *Service {
	return &Service{db: db, users: us}
}

type ConversationView struct {
	Conversation Conversation
	LastMessage  *Message
}

func (s *Service) ListForUser(ctx context.Context, externalUserID string) ([]ConversationView, error) {
	viewer, err := s.users.ByExternalID(ctx, externalUserID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return []ConversationView{}, nil
		}
		return nil, err
	}

	var convs []Conversation
	err = s.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", viewer.ID).
		Preload("Participants.User").
		Order("conversations.updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, apperr.PersistenceErr(err)
	}

	out := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		var last Message
		e := s.db.WithContext(ctx).
			Preload("Sender").
			Where("conversation_id = ?", c.ID).
			Order("created_at DESC").
			First(&last).Error
		v := ConversationView{Conversation: c}
		if e == nil {
			v.LastMessage = &last
		} else if !errors.Is(e, gorm.ErrRecordNotFound) {
			return nil, apperr.PersistenceErr(e)
		}
		out = append(out, v)
	}
	return out, nil
}

// Messages returns the full thread, oldest first. Only participants may read.
func (s *Service) Messages(ctx context.Context, externalUserID, conversationID string) (Conversation, []Message, error) {
	viewer, err := s.users.ByExternalID(ctx, externalUserID)
	if err != nil {
		return Conversation{}, nil, err
	}

	if ok, err := s.isParticipant(ctx, conversationID, viewer.ID); err != nil {
		return Conversation{}, nil, err
	} else if !ok {
		return Conversation{}, nil, apperr.ForbiddenErr("You are not part of this conversation.")
	}

	var conv Conversation
	if err := s.db.WithContext(ctx).
		Preload("Participants.User").
		First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Conversation{}, nil, apperr.NotFoundErr("Conversation not found.")
		}
		return Conversation{}, nil, apperr.PersistenceErr(err)
	}

	var msgs []Message
	if err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return Conversation{}, nil, apperr.PersistenceErr(err)
	}
	return conv, msgs, nil
}

type SendInput struct {
	ConversationID  string // optional: empty starts a new conversation
	RecipientUserID string // required when ConversationID is empty
	Content         string
}

func (s *Service) Send(ctx context.Context, externalUserID string, in SendInput) (Message, error) {
	if in.Content == "" {
		return Message{}, apperr.InvalidErr("Message content is required.", nil)
	}

	sender, err := s.users.ByExternalID(ctx, externalUserID)
	if err != nil {
		return Message{}, err
	}

	convID := in.ConversationID
	now := time.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if convID == "" {
			if in.RecipientUserID == "" {
				return apperr.InvalidErr("Recipient is required for a new conversation.", nil)
			}
			conv := Conversation{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&conv).Error; err != nil {
				return apperr.PersistenceErr(err)
			}
			parts := []Participant{
				{ID: uuid.NewString(), ConversationID: conv.ID, UserID: sender.ID, CreatedAt: now},
				{ID: uuid.NewString(), ConversationID: conv.ID, UserID: in.RecipientUserID, CreatedAt: now},
			}
			if err := tx.Create(&parts).Error; err != nil {
				return apperr.PersistenceErr(err)
			}
			convID = conv.ID
			return nil
		}

		ok, err := s.participantInTx(tx, convID, sender.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ForbiddenErr("You are not part of this conversation.")
		}
		return nil
	})
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:             uuid.NewString(),
		ConversationID: convID,
		SenderUserID:   sender.ID,
		Content:        in.Content,
		CreatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return Message{}, apperr.PersistenceErr(err)
	}

	// Bump the conversation for list ordering.
	_ = s.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ?", convID).
		Update("updated_at", now).Error

	return msg, nil
}

// MarkRead stamps every unread message from other senders in the thread.
func (s *Service) MarkRead(ctx context.Context, externalUserID, conversationID string) error {
	viewer, err := s.users.ByExternalID(ctx, externalUserID)
	if err != nil {
		return err
	}
	if ok, err := s.isParticipant(ctx, conversationID, viewer.ID); err != nil {
		return err
	} else if !ok {
		return apperr.ForbiddenErr("You are not part of this conversation.")
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_user_id <> ? AND read_at IS NULL", conversationID, viewer.ID).
		Update("read_at", now).Error
	if err != nil {
		return apperr.PersistenceErr(err)
	}
	return nil
}

func (s *Service) isParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	return s.participantInTx(s.db.WithContext(ctx), conversationID, userID)
}

func (s *Service) participantInTx(tx *gorm.DB, conversationID, userID string) (bool, error) {
	var count int64
	err := tx.Model(&Participant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperr.PersistenceErr(err)
	}
	return count > 0, nil
}
