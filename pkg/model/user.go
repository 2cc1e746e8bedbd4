package model

import "time"

// User documents are owned by the identity provider; the core only
// reads them for admin listings and relation resolution.
type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         string    `json:"role" bson:"role"`
	BusinessName string    `json:"business_name,omitempty" bson:"business_name,omitempty"`
	Verified     bool      `json:"verified" bson:"verified"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// UserSummary is the slice of a user embedded when a relation is
// resolved on read.
type UserSummary struct {
	ID           string `json:"id" bson:"_id"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         string `json:"role,omitempty" bson:"role,omitempty"`
	BusinessName string `json:"business_name,omitempty" bson:"business_name,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		BusinessName: u.BusinessName,
	}
}
