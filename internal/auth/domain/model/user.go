package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the access level claim carried by a session.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStaff   Role = "staff"
	RoleUser    Role = "user"
)

// ValidRoles lists every role the system recognizes.
var ValidRoles = []Role{RoleAdmin, RoleFaculty, RoleStaff, RoleUser}

// IsValid reports whether the role is one of the recognized roles.
func (r Role) IsValid() bool {
	for _, valid := range ValidRoles {
		if r == valid {
			return true
		}
	}
	return false
}

// IsElevated reports whether the role bypasses per-record ownership checks.
func (r Role) IsElevated() bool {
	return r == RoleAdmin
}

// User represents an account able to sign in to the admin surfaces.
type User struct {
	ID           string             `json:"id" bson:"id,omitempty"`
	ObjectID     primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Name         string             `json:"name,omitempty" bson:"name,omitempty"`
	Role         Role               `json:"role" bson:"role"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
