package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type MenuItem struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Recipe   string             `json:"recipe" bson:"recipe"`
	Image    string             `json:"image" bson:"image"`
	Category string             `json:"category" bson:"category"`
	Price    float64            `json:"price" bson:"price"`
}

type Review struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name    string             `json:"name" bson:"name"`
	Details string             `json:"details" bson:"details"`
	Rating  float64            `json:"rating" bson:"rating"`
}
