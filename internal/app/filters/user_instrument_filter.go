package filters

import (
	"cmp"
	"net/url"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/models"
)

// UserInstrumentFilter scopes proficiency records to one user or to all of them.
type UserInstrumentFilter struct {
	// UserID restricts results to a single owner; nil means every record
	UserID *int64
	// target is the owner the requester asked for explicitly
	target *int64
}

// ParseTargetUser reads the "user" parameter. Malformed values count as absent.
func ParseTargetUser(q url.Values) (int64, bool) {
	raw := strings.TrimSpace(q.Get("user"))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ScopeUserInstruments derives the listing scope for an actor.
// An explicit target restricts to that user. Without one, admins see every
// record and everybody else sees their own.
func ScopeUserInstruments(actor auth.Actor, q url.Values) UserInstrumentFilter {
	if id, ok := ParseTargetUser(q); ok {
		return UserInstrumentFilter{UserID: &id, target: &id}
	}
	if actor.IsAdmin() {
		return UserInstrumentFilter{}
	}
	id := actor.ID()
	return UserInstrumentFilter{UserID: &id}
}

// ForUser scopes to a single user's records
func ForUser(userID int64) UserInstrumentFilter {
	return UserInstrumentFilter{UserID: &userID, target: &userID}
}

// Target returns the authorization target the scope implies
func (f UserInstrumentFilter) Target() auth.Target {
	if f.target == nil {
		return auth.NoTarget
	}
	return auth.OwnedBy(*f.target)
}

// Matches reports whether the record is inside the scope
func (f UserInstrumentFilter) Matches(ui *models.UserInstrument) bool {
	return f.UserID == nil || ui.UserID == *f.UserID
}

// Apply scopes records and orders them by id
func (f UserInstrumentFilter) Apply(links []*models.UserInstrument) []*models.UserInstrument {
	out := make([]*models.UserInstrument, 0, len(links))
	for _, l := range links {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	sortBy(out, []compareFunc[*models.UserInstrument]{
		func(a, b *models.UserInstrument) int { return cmp.Compare(a.ID, b.ID) },
	})
	return out
}

// Where renders the scope as SQL against the "ui" alias. Nil for the full set.
func (f UserInstrumentFilter) Where() squirrel.Sqlizer {
	if f.UserID == nil {
		return nil
	}
	return squirrel.Eq{"ui.user_id": *f.UserID}
}

// OrderBy returns the id ordering
func (f UserInstrumentFilter) OrderBy() []string {
	return []string{"ui.id ASC"}
}
