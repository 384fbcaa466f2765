// user.go - Defines the User model

package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account. Email is stored trimmed and lower-cased and is unique.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name         string    `json:"name" gorm:"not null" bson:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null" bson:"email"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null" bson:"password"`
	Image        string    `json:"image,omitempty" bson:"image,omitempty"`
	Role         string    `json:"role" gorm:"not null;default:user" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
