package services

import (
	"context"
	"testing"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationServiceNotifyAndList(t *testing.T) {
	svc := NewNotificationService(repositories.NewMemoryNotificationRepository())
	ctx := context.Background()
	user := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	require.NoError(t, svc.Notify(ctx, user, &orderID, models.NotificationNewOrder, "طلب جديد", "لديك طلب جديد"))
	require.NoError(t, svc.Notify(ctx, user, nil, models.NotificationOther, "ترحيب", "أهلاً بك"))

	got, err := svc.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, got, 2)

	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestNotificationServiceMarkRead(t *testing.T) {
	repo := repositories.NewMemoryNotificationRepository()
	svc := NewNotificationService(repo)
	ctx := context.Background()
	user := primitive.NewObjectID()

	require.NoError(t, svc.Notify(ctx, user, nil, models.NotificationOther, "ترحيب", "أهلاً بك"))
	list, err := svc.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)

	n, err := svc.MarkRead(ctx, list[0].ID, user)
	require.NoError(t, err)
	assert.True(t, n.Read)

	// Idempotent.
	n, err = svc.MarkRead(ctx, list[0].ID, user)
	require.NoError(t, err)
	assert.True(t, n.Read)

	// A different recipient sees not found, not forbidden.
	_, err = svc.MarkRead(ctx, list[0].ID, primitive.NewObjectID())
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
