package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartItem is a menu item placed in a user's cart. MenuItemID points at the
// menu record the client copied the fields from.
type CartItem struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	MenuItemID string             `json:"menuItemId" bson:"menuItemId"`
	Name       string             `json:"name" bson:"name"`
	Image      string             `json:"image" bson:"image"`
	Price      float64            `json:"price" bson:"price"`
	Email      string             `json:"email" bson:"email"`
}
