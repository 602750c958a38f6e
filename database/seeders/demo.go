package seeders

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/auth"
	"github.com/saydalia/saydalia/pkg/database"
)

func init() {
	Register("demo", SeedDemo)
}

// SeedDemo loads a demo pharmacy admin (admin@saydalia.dev / password),
// their pharmacy with a small catalog, and one customer
// (user@saydalia.dev / password). Running it twice is a no-op.
func SeedDemo(ctx context.Context) error {
	users := repositories.NewUserRepository(database.DB)
	pharmacies := repositories.NewPharmacyRepository(database.DB)

	if _, err := users.FindByEmail(ctx, "admin@saydalia.dev"); err == nil {
		return nil // already seeded
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "مدير الصيدلية",
		Email:    "admin@saydalia.dev",
		Password: hash,
		Role:     models.RoleAdmin,
		Phone:    "0500000001",
		City:     "الرياض",
	}
	if err := users.Create(ctx, &admin); err != nil {
		return err
	}

	pharmacy := models.Pharmacy{
		Name:         "صيدلية الشفاء",
		Address:      "شارع الملك فهد، الرياض",
		Phone:        "0112345678",
		Rating:       models.DefaultRating,
		Specialties:  []string{"أدوية أطفال", "مستحضرات تجميل"},
		WorkingHours: "9:00-23:00",
		Admin:        admin.ID,
		Medicines: []models.Medicine{
			{ID: primitive.NewObjectID(), Name: "باراسيتامول 500 ملغ", Price: 8.5, InStock: true, Stock: 120, Category: "مسكنات"},
			{ID: primitive.NewObjectID(), Name: "إيبوبروفين 400 ملغ", Price: 12, InStock: true, Stock: 80, Category: "مسكنات"},
			{ID: primitive.NewObjectID(), Name: "فيتامين سي 1000 ملغ", Price: 25, InStock: false, Stock: 0, Category: "مكملات"},
		},
	}
	if err := pharmacies.Create(ctx, &pharmacy); err != nil {
		return err
	}
	if err := users.SetPharmacy(ctx, admin.ID, &pharmacy.ID); err != nil {
		return err
	}

	customer := models.User{
		Name:     "سارة أحمد",
		Email:    "user@saydalia.dev",
		Password: hash,
		Role:     models.RoleUser,
		Phone:    "0500000002",
		Address:  "حي النرجس",
		City:     "الرياض",
	}
	return users.Create(ctx, &customer)
}
