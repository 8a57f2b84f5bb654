package dto

import (
	"time"

	"github.com/yigit/rea/internal/app/models"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// RegisterRequest represents a self-registration request
type RegisterRequest struct {
	Username    string          `json:"username" binding:"required,max=150"`
	Password    string          `json:"password" binding:"required,min=8,max=128"`
	Email       string          `json:"email" binding:"omitempty,email"`
	FirstName   string          `json:"first_name" binding:"max=150"`
	LastName    string          `json:"last_name" binding:"max=150"`
	UserType    models.UserType `json:"user_type" binding:"required,oneof=teacher student"`
	DateOfBirth *string         `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateUserRequest represents a full replacement of the writable user fields (PUT)
type UpdateUserRequest struct {
	Username    string          `json:"username" binding:"required,max=150"`
	Email       string          `json:"email" binding:"omitempty,email"`
	FirstName   string          `json:"first_name" binding:"max=150"`
	LastName    string          `json:"last_name" binding:"max=150"`
	UserType    models.UserType `json:"user_type" binding:"required,oneof=teacher student"`
	DateOfBirth *string         `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

// PatchUserRequest represents a partial user update (PATCH); nil fields stay untouched
type PatchUserRequest struct {
	Username    *string          `json:"username" binding:"omitempty,min=1,max=150"`
	Email       *string          `json:"email" binding:"omitempty,email"`
	FirstName   *string          `json:"first_name" binding:"omitempty,max=150"`
	LastName    *string          `json:"last_name" binding:"omitempty,max=150"`
	UserType    *models.UserType `json:"user_type" binding:"omitempty,oneof=teacher student"`
	DateOfBirth *string          `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Password    *string          `json:"password" binding:"omitempty,min=8,max=128"`
}

// UserResponse represents a user with the instruments on their profile
type UserResponse struct {
	ID              int64                    `json:"id" example:"1"`
	Username        string                   `json:"username" example:"jdoe"`
	Email           string                   `json:"email" example:"jdoe@example.com"`
	FirstName       string                   `json:"first_name" example:"John"`
	LastName        string                   `json:"last_name" example:"Doe"`
	UserType        models.UserType          `json:"user_type" example:"student"`
	DateOfBirth     *string                  `json:"date_of_birth" example:"2001-05-17"`
	DateJoined      time.Time                `json:"date_joined"`
	UserInstruments []UserInstrumentResponse `json:"user_instruments"`
}

// TeacherResponse is the teacher directory projection
type TeacherResponse struct {
	ID              int64                    `json:"id"`
	Username        string                   `json:"username"`
	Email           string                   `json:"email"`
	FirstName       string                   `json:"first_name"`
	LastName        string                   `json:"last_name"`
	DateJoined      time.Time                `json:"date_joined"`
	UserInstruments []UserInstrumentResponse `json:"user_instruments"`
}

// StudentResponse is the student directory projection
type StudentResponse struct {
	ID              int64                    `json:"id"`
	Username        string                   `json:"username"`
	Email           string                   `json:"email"`
	FirstName       string                   `json:"first_name"`
	LastName        string                   `json:"last_name"`
	DateOfBirth     *string                  `json:"date_of_birth"`
	UserInstruments []UserInstrumentResponse `json:"user_instruments"`
}

// FormatDate renders an optional date in DateLayout
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ParseDate parses an optional DateLayout string. Empty input yields nil.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NewUserResponse converts a user and its instrument links into a UserResponse
func NewUserResponse(user *models.User, links []*models.UserInstrument) *UserResponse {
	return &UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		UserType:        user.UserType,
		DateOfBirth:     FormatDate(user.DateOfBirth),
		DateJoined:      user.DateJoined,
		UserInstruments: NewUserInstrumentResponses(links),
	}
}

// NewTeacherResponse converts a user into the teacher projection
func NewTeacherResponse(user *models.User, links []*models.UserInstrument) TeacherResponse {
	return TeacherResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		DateJoined:      user.DateJoined,
		UserInstruments: NewUserInstrumentResponses(links),
	}
}

// NewStudentResponse converts a user into the student projection
func NewStudentResponse(user *models.User, links []*models.UserInstrument) StudentResponse {
	return StudentResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		DateOfBirth:     FormatDate(user.DateOfBirth),
		UserInstruments: NewUserInstrumentResponses(links),
	}
}
