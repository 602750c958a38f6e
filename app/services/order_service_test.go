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

type orderFixture struct {
	svc           *OrderService
	notifications *repositories.MemoryNotificationRepository
	admin         models.User
	customer      models.User
	pharmacy      models.Pharmacy
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	ctx := context.Background()

	users := repositories.NewMemoryUserRepository()
	pharmacies := repositories.NewMemoryPharmacyRepository()
	orders := repositories.NewMemoryOrderRepository()
	notifications := repositories.NewMemoryNotificationRepository()

	admin := models.User{Name: "مدير", Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, users.Create(ctx, &admin))
	customer := models.User{Name: "سارة", Email: "sara@example.com", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, &customer))

	pharmacy := models.Pharmacy{Name: "صيدلية الشفاء", Admin: admin.ID}
	require.NoError(t, pharmacies.Create(ctx, &pharmacy))

	return &orderFixture{
		svc:           NewOrderService(orders, pharmacies, NewNotificationService(notifications)),
		notifications: notifications,
		admin:         admin,
		customer:      customer,
		pharmacy:      pharmacy,
	}
}

// orderInput returns a complete, valid order payload for the fixture's
// pharmacy; tests override fields to exercise a specific rule.
func (f *orderFixture) orderInput() OrderInput {
	return OrderInput{
		Pharmacy:     f.pharmacy.ID.Hex(),
		MedicineName: "باراسيتامول",
		Address:      "شارع الملك",
		Phone:        "0502222222",
	}
}

func TestOrderServiceCreate(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.customer.ID, OrderInput{
		Pharmacy:     f.pharmacy.ID.Hex(),
		MedicineName: "باراسيتامول",
		Quantity:     2,
		Address:      "شارع الملك",
		Phone:        "0502222222",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, f.customer.ID, order.User)
	assert.Equal(t, f.pharmacy.ID, order.Pharmacy)

	// The pharmacy admin got a new-order notification.
	got, err := f.notifications.ListByUser(ctx, f.admin.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationNewOrder, got[0].Type)
	require.NotNil(t, got[0].Order)
	assert.Equal(t, order.ID, *got[0].Order)
	assert.False(t, got[0].Read)
}

func TestOrderServiceCreateDefaultsQuantity(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.customer.ID, f.orderInput())
	require.NoError(t, err)
	assert.Equal(t, 1, order.Quantity)
}

func TestOrderServiceCreateValidation(t *testing.T) {
	f := newOrderFixture(t)

	tests := []struct {
		name   string
		mutate func(*OrderInput)
	}{
		{"missing medicine name", func(in *OrderInput) { in.MedicineName = "" }},
		{"missing address", func(in *OrderInput) { in.Address = "" }},
		{"blank address", func(in *OrderInput) { in.Address = "   " }},
		{"missing phone", func(in *OrderInput) { in.Phone = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.orderInput()
			tt.mutate(&in)
			_, err := f.svc.Create(context.Background(), f.customer.ID, in)
			assert.Equal(t, apperr.Validation, apperr.KindOf(err))
			assert.Equal(t, msgMissingFields, apperr.MessageOf(err))
		})
	}
}

func TestOrderServiceCreateUnknownPharmacy(t *testing.T) {
	f := newOrderFixture(t)

	tests := []struct {
		name     string
		pharmacy string
	}{
		{"well-formed but absent", primitive.NewObjectID().Hex()},
		{"malformed id", "not-an-id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.orderInput()
			in.Pharmacy = tt.pharmacy
			_, err := f.svc.Create(context.Background(), f.customer.ID, in)
			assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
			assert.Equal(t, msgPharmacyNotFound, apperr.MessageOf(err))
		})
	}
}

func TestOrderServiceUpdateStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.customer.ID, f.orderInput())
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, order.ID, f.admin, models.OrderAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, updated.Status)

	// The orderer got a status-change notification.
	got, err := f.notifications.ListByUser(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationStatusChange, got[0].Type)
	assert.Equal(t, "تم قبول طلبك", got[0].Message)
}

func TestOrderServiceUpdateStatusAnyTransition(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.customer.ID, f.orderInput())
	require.NoError(t, err)

	// An admin can walk the status anywhere, including backwards, to
	// correct a wrong click.
	for _, status := range []string{models.OrderRejected, models.OrderAccepted, models.OrderCompleted, models.OrderPending} {
		updated, err := f.svc.UpdateStatus(ctx, order.ID, f.admin, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestOrderServiceUpdateStatusValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.customer.ID, f.orderInput())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, order.ID, f.admin, "shipped")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Equal(t, msgInvalidStatus, apperr.MessageOf(err))
}

func TestOrderServiceUpdateStatusAuthz(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.customer.ID, f.orderInput())
	require.NoError(t, err)

	// The customer cannot change status, even on their own order.
	_, err = f.svc.UpdateStatus(ctx, order.ID, f.customer, models.OrderAccepted)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// Neither can an admin of a different pharmacy.
	otherAdmin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	_, err = f.svc.UpdateStatus(ctx, order.ID, otherAdmin, models.OrderAccepted)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	assert.Equal(t, msgForbidden, apperr.MessageOf(err))
}

func TestOrderServiceGetAuthz(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.customer.ID, f.orderInput())
	require.NoError(t, err)

	// The orderer can read it.
	_, err = f.svc.Get(ctx, order.ID, f.customer)
	assert.NoError(t, err)

	// Any admin can read it, pharmacy owner or not.
	otherAdmin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	_, err = f.svc.Get(ctx, order.ID, otherAdmin)
	assert.NoError(t, err)

	// Another customer cannot.
	otherCustomer := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	_, err = f.svc.Get(ctx, order.ID, otherCustomer)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestOrderServiceListForActor(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.customer.ID, f.orderInput())
	require.NoError(t, err)

	// The customer sees their own orders.
	mine, err := f.svc.ListForActor(ctx, f.customer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	// The owner admin sees the pharmacy's incoming orders.
	incoming, err := f.svc.ListForActor(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, incoming, 1)

	// An admin without a pharmacy sees an empty list, not an error.
	orphanAdmin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	none, err := f.svc.ListForActor(ctx, orphanAdmin)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderServiceListForPharmacyAuthz(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.customer.ID, f.orderInput())
	require.NoError(t, err)

	got, err := f.svc.ListForPharmacy(ctx, f.pharmacy.ID, f.admin)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	otherAdmin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	_, err = f.svc.ListForPharmacy(ctx, f.pharmacy.ID, otherAdmin)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}
