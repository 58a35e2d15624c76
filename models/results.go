package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// The result types mirror the document store's write results so clients
// see the same shapes whichever driver backs the API.

type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

type UpdateResult struct {
	Acknowledged  bool                `json:"acknowledged"`
	MatchedCount  int64               `json:"matchedCount"`
	ModifiedCount int64               `json:"modifiedCount"`
	UpsertedCount int64               `json:"upsertedCount"`
	UpsertedID    *primitive.ObjectID `json:"upsertedId"`
}

// PaymentResult reports both writes of a recorded payment.
type PaymentResult struct {
	InsertResult InsertResult `json:"insertResult"`
	DeleteResult DeleteResult `json:"deleteResult"`
}

type Counts struct {
	Users    int64 `json:"users"`
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
}

type AdminStats struct {
	Counts
	Revenue float64 `json:"revenue"`
}

type CategoryStat struct {
	Category string  `json:"category" bson:"category"`
	Count    int     `json:"count" bson:"count"`
	Total    float64 `json:"total" bson:"total"`
}
