// Package repositories defines the persistence contracts for the document
// store and their MongoDB implementations. Services depend only on the
// interfaces; tests use the in-memory implementations.
package repositories

import (
	"context"
	"errors"

	"github.com/saydalia/saydalia/app/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no document matches the lookup filter.
// Ownership-scoped operations fold the owner into the filter, so a mismatch
// is indistinguishable from absence.
var ErrNotFound = errors.New("repositories: not found")

// ErrDuplicate is returned when a unique index rejects a write.
var ErrDuplicate = errors.New("repositories: duplicate key")

// UserRepository handles the users collection.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, u *models.User) error
	SetPharmacy(ctx context.Context, userID primitive.ObjectID, pharmacyID *primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PharmacyRepository handles the pharmacies collection, including the
// embedded medicine catalog.
type PharmacyRepository interface {
	Create(ctx context.Context, p *models.Pharmacy) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Pharmacy, error)
	FindByAdmin(ctx context.Context, adminID primitive.ObjectID) (models.Pharmacy, error)
	// FindByMedicine locates the pharmacy whose catalog contains the
	// medicine sub-id.
	FindByMedicine(ctx context.Context, medicineID primitive.ObjectID) (models.Pharmacy, error)
	All(ctx context.Context) ([]models.Pharmacy, error)
	// Replace persists the full document, scoped to {_id, admin} so a
	// non-owner write matches nothing.
	Replace(ctx context.Context, p *models.Pharmacy) error
	Delete(ctx context.Context, id, adminID primitive.ObjectID) error
}

// OrderRepository handles the orders collection.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	// UpdateStatus sets the status and returns the updated order.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListByPharmacy(ctx context.Context, pharmacyID primitive.ObjectID) ([]models.Order, error)
	CountByStatus(ctx context.Context, pharmacyID primitive.ObjectID) (map[string]int64, error)
}

// NotificationRepository handles the notifications collection.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	// MarkRead flips read=true. The recipient is part of the filter, so a
	// foreign id yields ErrNotFound. Re-marking a read notification succeeds.
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}
