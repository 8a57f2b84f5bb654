package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Password    string     `json:"-" db:"password"` // bcrypt hash
	Email       string     `json:"email" db:"email"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	UserType    UserType   `json:"user_type" db:"user_type"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	IsStaff     bool       `json:"is_staff" db:"is_staff"`
	DateJoined  time.Time  `json:"date_joined" db:"date_joined"`
}

// IsTeacher reports whether the user holds a teacher account
func (u *User) IsTeacher() bool {
	return u.UserType == UserTypeTeacher
}
