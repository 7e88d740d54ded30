package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User mirrors the identity provider's record. The portal never registers or
// authenticates users itself; identities arrive resolved from the token layer.
type User struct {
	ID    string   `json:"id" gorm:"primaryKey;size:64"`
	Name  string   `json:"name" gorm:"size:100"`
	Email string   `json:"email" gorm:"size:255;index"`
	Role  UserRole `json:"role" gorm:"not null;size:20;index" validate:"required,user_role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}
