// Package models holds the persistent row types shared by repositories,
// services and the HTTP layer.
package models

import "time"

// User is an account record. Password holds the bcrypt hash and is never
// serialized; it does not leave the user service except for verification.
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Password   string    `json:"-"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
