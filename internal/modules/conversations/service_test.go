package conversations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/conversations"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/testutil"
)

func setup(t *testing.T) (*gorm.DB, *conversations.Service, users.User, users.User) {
	t.Helper()
	db := testutil.OpenDB(t)
	us := users.NewService(db)

	a, err := us.Sync(context.Background(), users.SyncInput{ExternalID: "ext_a", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := us.Sync(context.Background(), users.SyncInput{ExternalID: "ext_b", Email: "b@example.com"})
	require.NoError(t, err)

	return db, conversations.NewService(db, us), a, b
}

func TestSendStartsConversation(t *testing.T) {
	_, svc, _, b := setup(t)

	msg, err := svc.Send(context.Background(), "ext_a", conversations.SendInput{
		RecipientUserID: b.ID,
		Content:         "Is the mug still available?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ConversationID)

	// Both sides see the thread.
	for _, ext := range []string{"ext_a", "ext_b"} {
		views, err := svc.ListForUser(context.Background(), ext)
		require.NoError(t, err)
		require.Len(t, views, 1, "viewer %s", ext)
		require.NotNil(t, views[0].LastMessage)
		assert.Equal(t, "Is the mug still available?", views[0].LastMessage.Content)
	}
}

func TestSendRequiresRecipientForNewThread(t *testing.T) {
	_, svc, _, _ := setup(t)

	_, err := svc.Send(context.Background(), "ext_a", conversations.SendInput{Content: "hi"})
	assert.True(t, apperr.IsKind(err, apperr.Invalid))
}

func TestMessagesForbiddenForOutsider(t *testing.T) {
	db, svc, _, b := setup(t)
	us := users.NewService(db)
	_, err := us.Sync(context.Background(), users.SyncInput{ExternalID: "ext_c", Email: "c@example.com"})
	require.NoError(t, err)

	msg, err := svc.Send(context.Background(), "ext_a", conversations.SendInput{
		RecipientUserID: b.ID,
		Content:         "hello",
	})
	require.NoError(t, err)

	_, _, err = svc.Messages(context.Background(), "ext_c", msg.ConversationID)
	assert.True(t, apperr.IsKind(err, apperr.Forbidden))

	_, err = svc.Send(context.Background(), "ext_c", conversations.SendInput{
		ConversationID: msg.ConversationID,
		Content:        "let me in",
	})
	assert.True(t, apperr.IsKind(err, apperr.Forbidden))
}

func TestMarkReadStampsOthersMessages(t *testing.T) {
	_, svc, _, b := setup(t)

	msg, err := svc.Send(context.Background(), "ext_a", conversations.SendInput{
		RecipientUserID: b.ID,
		Content:         "first",
	})
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), "ext_b", conversations.SendInput{
		ConversationID: msg.ConversationID,
		Content:        "reply",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), "ext_b", msg.ConversationID))

	_, msgs, err := svc.Messages(context.Background(), "ext_a", msg.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// ext_a's message is read; ext_b's own reply stays unread.
	assert.NotNil(t, msgs[0].ReadAt)
	assert.Nil(t, msgs[1].ReadAt)
}
