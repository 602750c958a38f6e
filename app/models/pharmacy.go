package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Medicine is an embedded catalog entry inside a Pharmacy document.
// Its identity is a sub-document id scoped to the parent.
type Medicine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	InStock     bool               `bson:"inStock" json:"inStock"`
	Stock       int                `bson:"stock" json:"stock"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
}

// Pharmacy is owned by exactly one admin user via Admin; the store enforces
// at most one pharmacy per admin with a unique index.
type Pharmacy struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Address      string             `bson:"address" json:"address"`
	Phone        string             `bson:"phone" json:"phone"`
	Rating       float64            `bson:"rating" json:"rating"`
	Specialties  []string           `bson:"specialties,omitempty" json:"specialties,omitempty"`
	WorkingHours string             `bson:"workingHours,omitempty" json:"workingHours,omitempty"`
	Icon         string             `bson:"icon,omitempty" json:"icon,omitempty"`
	Admin        primitive.ObjectID `bson:"admin" json:"admin"`
	Medicines    []Medicine         `bson:"medicines" json:"medicines"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DefaultRating is assigned to newly created pharmacies.
const DefaultRating = 5.0

// OwnedBy reports whether userID is the owning admin.
func (p Pharmacy) OwnedBy(userID primitive.ObjectID) bool {
	return p.Admin == userID
}

// FindMedicine returns the embedded medicine with the given sub-id.
func (p Pharmacy) FindMedicine(id primitive.ObjectID) (Medicine, bool) {
	for _, m := range p.Medicines {
		if m.ID == id {
			return m, true
		}
	}
	return Medicine{}, false
}
