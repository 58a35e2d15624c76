package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records a completed checkout. CartItems lists the cart records
// cleared by the checkout and MenuItems the menu records that were bought.
type Payment struct {
	ID            primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Email         string               `json:"email" bson:"email"`
	TransactionID string               `json:"transactionId" bson:"transactionId"`
	Price         float64              `json:"price" bson:"price"`
	Quantity      int                  `json:"quantity" bson:"quantity"`
	Date          time.Time            `json:"date" bson:"date"`
	Status        string               `json:"status" bson:"status"`
	ItemNames     []string             `json:"itemNames" bson:"itemNames"`
	CartItems     []primitive.ObjectID `json:"cartItems" bson:"cartItems"`
	MenuItems     []primitive.ObjectID `json:"menuItems" bson:"menuItems"`
}
