package auth

import "github.com/yigit/rea/internal/app/models"

// Roles as they appear in policy.csv
const (
	RoleAnonymous = "anonymous"
	RoleStudent   = "student"
	RoleTeacher   = "teacher"
	RoleAdmin     = "admin"
)

// Actor is the identity a request acts as. The zero value is anonymous.
type Actor struct {
	id            int64
	isStaff       bool
	userType      models.UserType
	authenticated bool
}

// Anonymous returns the unauthenticated actor
func Anonymous() Actor {
	return Actor{}
}

// Authenticated returns an actor for a signed-in user
func Authenticated(id int64, isStaff bool, userType models.UserType) Actor {
	return Actor{id: id, isStaff: isStaff, userType: userType, authenticated: true}
}

// ActorFromUser builds an authenticated actor from a stored user
func ActorFromUser(u *models.User) Actor {
	return Authenticated(u.ID, u.IsStaff, u.UserType)
}

func (a Actor) ID() int64                 { return a.id }
func (a Actor) IsAnonymous() bool         { return !a.authenticated }
func (a Actor) IsAdmin() bool             { return a.authenticated && a.isStaff }
func (a Actor) IsTeacher() bool           { return a.authenticated && a.userType == models.UserTypeTeacher }
func (a Actor) UserType() models.UserType { return a.userType }

// Role resolves the single policy role of the actor. Staff outranks user type.
func (a Actor) Role() string {
	switch {
	case !a.authenticated:
		return RoleAnonymous
	case a.isStaff:
		return RoleAdmin
	case a.userType == models.UserTypeTeacher:
		return RoleTeacher
	default:
		return RoleStudent
	}
}

// Owns reports whether the actor is the given user
func (a Actor) Owns(userID int64) bool {
	return a.authenticated && a.id == userID
}
