package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin holds the structure for the admins collection in mongo. Admins log in
// with email/password and drive the CSV invitation pipeline.
type Admin struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Roles     []string           `json:"roles" bson:"roles"`
	Active    bool               `json:"active" bson:"active"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
