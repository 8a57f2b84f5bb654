package filters

import (
	"cmp"
	"net/url"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/rea/internal/app/models"
)

var userOrderColumns = map[string]string{
	"username":    "username",
	"date_joined": "date_joined",
	"user_type":   "user_type",
}

var userComparers = map[string]compareFunc[*models.User]{
	"username":    func(a, b *models.User) int { return compareFold(a.Username, b.Username) },
	"date_joined": func(a, b *models.User) int { return a.DateJoined.Compare(b.DateJoined) },
	"user_type":   func(a, b *models.User) int { return cmp.Compare(a.UserType, b.UserType) },
}

// UserFilter selects and orders users
type UserFilter struct {
	Search   string
	UserType *models.UserType
	ordering []orderField
}

// ParseUserFilter reads "search" and "ordering"
func ParseUserFilter(q url.Values) UserFilter {
	return UserFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		ordering: parseOrdering(q.Get("ordering"), userOrderColumns),
	}
}

// WithUserType returns a copy restricted to one user type
func (f UserFilter) WithUserType(t models.UserType) UserFilter {
	f.UserType = &t
	return f
}

// Matches reports whether the user passes every predicate
func (f UserFilter) Matches(u *models.User) bool {
	if f.UserType != nil && u.UserType != *f.UserType {
		return false
	}
	if f.Search != "" && !containsFold(f.Search, u.Username, u.Email, u.FirstName, u.LastName) {
		return false
	}
	return true
}

// Apply filters and sorts users without modifying the input
func (f UserFilter) Apply(users []*models.User) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if f.Matches(u) {
			out = append(out, u)
		}
	}

	cmps := make([]compareFunc[*models.User], 0, len(f.ordering)+1)
	for _, o := range f.ordering {
		c := userComparers[o.key]
		if o.desc {
			c = reverse(c)
		}
		cmps = append(cmps, c)
	}
	cmps = append(cmps, func(a, b *models.User) int { return cmp.Compare(a.ID, b.ID) })
	sortBy(out, cmps)
	return out
}

// Where renders the predicates as SQL. Nil when there are none.
func (f UserFilter) Where() squirrel.Sqlizer {
	var typePred squirrel.Sqlizer
	if f.UserType != nil {
		typePred = squirrel.Eq{"user_type": string(*f.UserType)}
	}
	return and(typePred, searchPredicate(f.Search, "username", "email", "first_name", "last_name"))
}

// OrderBy renders the ordering as SQL ORDER BY terms, id last
func (f UserFilter) OrderBy() []string {
	return append(orderClauses(f.ordering, userOrderColumns), "id ASC")
}
