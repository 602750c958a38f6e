package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values. pending is initial; transitions are set freely by the
// owning pharmacy admin — there is no terminal-state lock.
const (
	OrderPending   = "pending"
	OrderAccepted  = "accepted"
	OrderRejected  = "rejected"
	OrderCompleted = "completed"
)

// ValidOrderStatus reports whether s is one of the four order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderAccepted, OrderRejected, OrderCompleted:
		return true
	}
	return false
}

// Order references one user (orderer) and one pharmacy (fulfiller) and
// carries a snapshot of the requested medicine.
type Order struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	Pharmacy     primitive.ObjectID `bson:"pharmacy" json:"pharmacy"`
	MedicineName string             `bson:"medicineName" json:"medicineName"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	Status       string             `bson:"status" json:"status"`
	Address      string             `bson:"address" json:"address"`
	Phone        string             `bson:"phone" json:"phone"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
