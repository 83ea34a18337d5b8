package notifications_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyozov/services/internal/modules/notifications"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/testutil"
)

func TestNotificationLifecycle(t *testing.T) {
	db := testutil.OpenDB(t)
	u, err := users.NewService(db).Sync(context.Background(), users.SyncInput{
		ExternalID: "ext_n", Email: "n@example.com",
	})
	require.NoError(t, err)

	svc := notifications.NewService(db)

	first, err := svc.Create(context.Background(), notifications.CreateInput{
		UserID:  u.ID,
		Type:    notifications.TypeOrder,
		Title:   "New Order Received!",
		Message: "You have a new order",
		OrderID: "order-1",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), notifications.CreateInput{
		UserID:  u.ID,
		Type:    notifications.TypeOrder,
		Title:   "New Order Received!",
		Message: "Another one",
	})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, svc.MarkRead(context.Background(), u.ID, first.ID))

	unread, err = svc.UnreadCount(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, svc.MarkAllRead(context.Background(), u.ID))

	unread, err = svc.UnreadCount(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	db := testutil.OpenDB(t)
	us := users.NewService(db)
	owner, err := us.Sync(context.Background(), users.SyncInput{ExternalID: "ext_o", Email: "o@example.com"})
	require.NoError(t, err)
	other, err := us.Sync(context.Background(), users.SyncInput{ExternalID: "ext_x", Email: "x@example.com"})
	require.NoError(t, err)

	svc := notifications.NewService(db)
	n, err := svc.Create(context.Background(), notifications.CreateInput{
		UserID: owner.ID, Type: notifications.TypeOrder, Title: "t", Message: "m",
	})
	require.NoError(t, err)

	// Someone else's id does not match the row.
	err = svc.MarkRead(context.Background(), other.ID, n.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}
