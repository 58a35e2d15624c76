package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role is stored per user. The zero value is the default role and is
// omitted from stored documents.
type Role string

const (
	RoleDefault Role = ""
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleDefault || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
	Photo string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Role  Role               `json:"role,omitempty" bson:"role,omitempty"`
}
