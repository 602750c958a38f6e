package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationNewOrder     = "new_order"
	NotificationStatusChange = "order_status_change"
	NotificationOther        = "other"
)

// Notification is an append-only record addressed to one recipient.
// Only the read flag is ever mutated.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID  `bson:"user" json:"user"`
	Order     *primitive.ObjectID `bson:"order,omitempty" json:"order,omitempty"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Read      bool                `bson:"read" json:"read"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
