package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Role is immutable after registration.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an identity record. Email is unique case-insensitively.
// The password hash is excluded from JSON so it can never cross the API
// boundary; Sanitize additionally blanks it before a record is returned.
type User struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name"`
	Email      string              `bson:"email" json:"email"`
	Password   string              `bson:"password" json:"-"`
	Role       string              `bson:"role" json:"role"`
	Phone      string              `bson:"phone" json:"phone"`
	Address    string              `bson:"address,omitempty" json:"address,omitempty"`
	City       string              `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode string              `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Pharmacy   *primitive.ObjectID `bson:"pharmacy,omitempty" json:"pharmacy,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Sanitize returns a copy with the password hash blanked.
func (u User) Sanitize() User {
	u.Password = ""
	return u
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
