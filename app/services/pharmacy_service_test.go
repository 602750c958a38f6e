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

func newPharmacyFixture(t *testing.T) (*PharmacyService, models.User) {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	pharmacies := repositories.NewMemoryPharmacyRepository()

	admin := models.User{Name: "مدير", Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, users.Create(context.Background(), &admin))

	return NewPharmacyService(pharmacies, users), admin
}

func TestPharmacyServiceCreate(t *testing.T) {
	svc, admin := newPharmacyFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, admin.ID, PharmacyInput{
		Name: "صيدلية الشفاء", Address: "شارع الملك", Phone: "0501111111",
		Specialties: []string{"أدوية أطفال"}, WorkingHours: "9:00-22:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "صيدلية الشفاء", p.Name)
	assert.Equal(t, models.DefaultRating, p.Rating)
	assert.Equal(t, admin.ID, p.Admin)
	assert.NotNil(t, p.Medicines)
}

func TestPharmacyServiceCreateSecondIsConflict(t *testing.T) {
	svc, admin := newPharmacyFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin.ID, PharmacyInput{Name: "الأولى"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, admin.ID, PharmacyInput{Name: "الثانية"})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Equal(t, msgPharmacyExists, apperr.MessageOf(err))
}

func TestPharmacyServiceGetNotFound(t *testing.T) {
	svc, _ := newPharmacyFixture(t)

	_, err := svc.Get(context.Background(), primitive.NewObjectID())
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, msgPharmacyNotFound, apperr.MessageOf(err))
}

func TestPharmacyServiceUpdateMasksNonOwner(t *testing.T) {
	svc, admin := newPharmacyFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, admin.ID, PharmacyInput{Name: "صيدلية الشفاء"})
	require.NoError(t, err)

	// A non-owner gets 404, not 403, so pharmacy ids stay unguessable.
	_, err = svc.Update(ctx, p.ID, primitive.NewObjectID(), PharmacyInput{Name: "مخترق"})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	updated, err := svc.Update(ctx, p.ID, admin.ID, PharmacyInput{Name: "صيدلية الشفاء الجديدة"})
	require.NoError(t, err)
	assert.Equal(t, "صيدلية الشفاء الجديدة", updated.Name)
}

func TestPharmacyServiceDeleteUnlinksAdmin(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	pharmacies := repositories.NewMemoryPharmacyRepository()
	ctx := context.Background()

	admin := models.User{Name: "مدير", Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, users.Create(ctx, &admin))

	svc := NewPharmacyService(pharmacies, users)
	p, err := svc.Create(ctx, admin.ID, PharmacyInput{Name: "صيدلية الشفاء"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID, admin.ID))

	_, err = svc.Get(ctx, p.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	stored, err := users.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Pharmacy)
}

func TestPharmacyServiceMedicineLifecycle(t *testing.T) {
	svc, admin := newPharmacyFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, admin.ID, PharmacyInput{Name: "صيدلية الشفاء"})
	require.NoError(t, err)

	med, err := svc.AddMedicine(ctx, p.ID, admin.ID, MedicineInput{
		Name: "باراسيتامول", Description: "مسكن", Price: 12.5, Category: "مسكنات",
	})
	require.NoError(t, err)
	assert.False(t, med.ID.IsZero())
	assert.True(t, med.InStock, "new medicine defaults to available")

	// Round-trip through the catalog.
	meds, err := svc.Medicines(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, med, meds[0])

	// Update fields.
	updated, err := svc.UpdateMedicine(ctx, p.ID, med.ID, admin.ID, MedicineInput{Price: 15})
	require.NoError(t, err)
	assert.Equal(t, 15.0, updated.Price)
	assert.Equal(t, "باراسيتامول", updated.Name)

	// Stock toggle.
	updated, err = svc.SetStock(ctx, p.ID, med.ID, admin.ID, false, 0)
	require.NoError(t, err)
	assert.False(t, updated.InStock)

	// Delete.
	require.NoError(t, svc.DeleteMedicine(ctx, p.ID, med.ID, admin.ID))
	meds, err = svc.Medicines(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestPharmacyServiceReplaceMedicines(t *testing.T) {
	svc, admin := newPharmacyFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, admin.ID, PharmacyInput{Name: "صيدلية الشفاء"})
	require.NoError(t, err)

	_, err = svc.AddMedicine(ctx, p.ID, admin.ID, MedicineInput{Name: "باراسيتامول", Price: 10})
	require.NoError(t, err)

	replaced, err := svc.ReplaceMedicines(ctx, p.ID, admin.ID, []MedicineInput{
		{Name: "إيبوبروفين", Price: 15},
		{Name: "فيتامين سي", Price: 20, Category: "مكملات"},
	})
	require.NoError(t, err)
	require.Len(t, replaced, 2)
	assert.Equal(t, "إيبوبروفين", replaced[0].Name)
	assert.True(t, replaced[0].InStock)

	// The old catalog is gone, not merged.
	medicines, err := svc.Medicines(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, medicines, 2)

	// An empty list clears the catalog.
	cleared, err := svc.ReplaceMedicines(ctx, p.ID, admin.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared)

	// Non-owners are told the pharmacy does not exist.
	other := primitive.NewObjectID()
	_, err = svc.ReplaceMedicines(ctx, p.ID, other, []MedicineInput{{Name: "دواء", Price: 1}})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestPharmacyServiceMedicineOwnershipMasked(t *testing.T) {
	svc, admin := newPharmacyFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, admin.ID, PharmacyInput{Name: "صيدلية الشفاء"})
	require.NoError(t, err)

	stranger := primitive.NewObjectID()
	_, err = svc.AddMedicine(ctx, p.ID, stranger, MedicineInput{Name: "باراسيتامول", Price: 1})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, msgPharmacyNotFound, apperr.MessageOf(err))
}

func TestPharmacyServiceUpdateMissingMedicine(t *testing.T) {
	svc, admin := newPharmacyFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, admin.ID, PharmacyInput{Name: "صيدلية الشفاء"})
	require.NoError(t, err)

	_, err = svc.UpdateMedicine(ctx, p.ID, primitive.NewObjectID(), admin.ID, MedicineInput{Price: 10})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, msgMedicineNotFound, apperr.MessageOf(err))
}

func TestPharmacyServiceMedicineAddressedAtWrongPharmacy(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	pharmacies := repositories.NewMemoryPharmacyRepository()
	svc := NewPharmacyService(pharmacies, users)
	ctx := context.Background()

	first := models.User{Name: "مدير", Email: "one@example.com", Role: models.RoleAdmin}
	second := models.User{Name: "مدير آخر", Email: "two@example.com", Role: models.RoleAdmin}
	require.NoError(t, users.Create(ctx, &first))
	require.NoError(t, users.Create(ctx, &second))

	mine, err := svc.Create(ctx, first.ID, PharmacyInput{Name: "صيدلية الشفاء"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, second.ID, PharmacyInput{Name: "صيدلية النور"})
	require.NoError(t, err)

	med, err := svc.AddMedicine(ctx, mine.ID, first.ID, MedicineInput{Name: "باراسيتامول", Price: 12})
	require.NoError(t, err)

	// The medicine lives in the first pharmacy; addressing it through the
	// second one must not find it, whoever asks.
	_, err = svc.UpdateMedicine(ctx, other.ID, med.ID, second.ID, MedicineInput{Price: 99})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, msgMedicineNotFound, apperr.MessageOf(err))

	err = svc.DeleteMedicine(ctx, other.ID, med.ID, first.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, msgMedicineNotFound, apperr.MessageOf(err))

	// A non-owner hitting the right pharmacy sees the masked pharmacy 404.
	_, err = svc.UpdateMedicine(ctx, mine.ID, med.ID, second.ID, MedicineInput{Price: 99})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, msgPharmacyNotFound, apperr.MessageOf(err))

	// The owner still reaches it through the right pharmacy.
	updated, err := svc.UpdateMedicine(ctx, mine.ID, med.ID, first.ID, MedicineInput{Price: 15})
	require.NoError(t, err)
	assert.Equal(t, 15.0, updated.Price)
}

func TestPharmacyServiceAll(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	pharmacies := repositories.NewMemoryPharmacyRepository()
	svc := NewPharmacyService(pharmacies, users)
	ctx := context.Background()

	for _, name := range []string{"النور", "الشفاء"} {
		admin := models.User{Name: name, Email: name + "@example.com", Role: models.RoleAdmin}
		require.NoError(t, users.Create(ctx, &admin))
		_, err := svc.Create(ctx, admin.ID, PharmacyInput{Name: name})
		require.NoError(t, err)
	}

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
