package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/saydalia/saydalia/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryUserRepositoryUniqueEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	first := &models.User{Name: "Sara", Email: "sara@example.com", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, first))
	assert.False(t, first.ID.IsZero())

	dup := &models.User{Name: "Other", Email: "SARA@Example.COM", Role: models.RoleUser}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)
}

func TestMemoryUserRepositoryFindByEmailCaseInsensitive(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	u := &models.User{Name: "Sara", Email: "Sara@Example.com", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.FindByEmail(ctx, "sara@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestMemoryUserRepositorySetPharmacy(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	u := &models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, u))

	pharmacyID := primitive.NewObjectID()
	require.NoError(t, repo.SetPharmacy(ctx, u.ID, &pharmacyID))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Pharmacy)
	assert.Equal(t, pharmacyID, *got.Pharmacy)

	require.NoError(t, repo.SetPharmacy(ctx, u.ID, nil))
	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Pharmacy)
}

func TestMemoryPharmacyRepositoryOnePerAdmin(t *testing.T) {
	repo := NewMemoryPharmacyRepository()
	ctx := context.Background()
	admin := primitive.NewObjectID()

	require.NoError(t, repo.Create(ctx, &models.Pharmacy{Name: "الشفاء", Admin: admin}))
	assert.ErrorIs(t, repo.Create(ctx, &models.Pharmacy{Name: "النور", Admin: admin}), ErrDuplicate)
}

func TestMemoryPharmacyRepositoryOwnershipScopedWrites(t *testing.T) {
	repo := NewMemoryPharmacyRepository()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	p := &models.Pharmacy{Name: "الشفاء", Admin: owner}
	require.NoError(t, repo.Create(ctx, p))

	hijack := *p
	hijack.Admin = stranger
	assert.ErrorIs(t, repo.Replace(ctx, &hijack), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID, stranger), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID, owner))
	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPharmacyRepositoryFindByMedicine(t *testing.T) {
	repo := NewMemoryPharmacyRepository()
	ctx := context.Background()

	med := models.Medicine{ID: primitive.NewObjectID(), Name: "باراسيتامول", Price: 12.5, InStock: true}
	p := &models.Pharmacy{Name: "الشفاء", Admin: primitive.NewObjectID(), Medicines: []models.Medicine{med}}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByMedicine(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.FindByMedicine(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOrderRepositoryListNewestFirst(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	user := primitive.NewObjectID()
	pharmacy := primitive.NewObjectID()

	older := &models.Order{User: user, Pharmacy: pharmacy, MedicineName: "A", Quantity: 1, Status: models.OrderPending}
	require.NoError(t, repo.Create(ctx, older))
	time.Sleep(2 * time.Millisecond)
	newer := &models.Order{User: user, Pharmacy: pharmacy, MedicineName: "B", Quantity: 1, Status: models.OrderPending}
	require.NoError(t, repo.Create(ctx, newer))

	got, err := repo.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}

func TestMemoryOrderRepositoryCountByStatus(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	pharmacy := primitive.NewObjectID()

	for _, status := range []string{models.OrderPending, models.OrderPending, models.OrderCompleted} {
		require.NoError(t, repo.Create(ctx, &models.Order{
			User: primitive.NewObjectID(), Pharmacy: pharmacy, MedicineName: "X", Quantity: 1, Status: status,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Order{
		User: primitive.NewObjectID(), Pharmacy: primitive.NewObjectID(), MedicineName: "Y", Quantity: 1, Status: models.OrderPending,
	}))

	counts, err := repo.CountByStatus(ctx, pharmacy)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.OrderPending])
	assert.Equal(t, int64(1), counts[models.OrderCompleted])
	assert.Zero(t, counts[models.OrderRejected])
}

func TestMemoryNotificationRepositoryMarkRead(t *testing.T) {
	repo := NewMemoryNotificationRepository()
	ctx := context.Background()
	owner := primitive.NewObjectID()

	n := &models.Notification{User: owner, Type: models.NotificationNewOrder, Title: "طلب جديد", Message: "لديك طلب جديد"}
	require.NoError(t, repo.Create(ctx, n))

	// A foreign recipient reads as not found.
	_, err := repo.MarkRead(ctx, n.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.MarkRead(ctx, n.ID, owner)
	require.NoError(t, err)
	assert.True(t, got.Read)

	// Marking twice stays successful.
	got, err = repo.MarkRead(ctx, n.ID, owner)
	require.NoError(t, err)
	assert.True(t, got.Read)

	unread, err := repo.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
