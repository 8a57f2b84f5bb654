package filters

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/models"
)

func query(raw string) url.Values {
	q, _ := url.ParseQuery(raw)
	return q
}

func exerciseIDs(list []*models.Exercise) []int64 {
	ids := make([]int64, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestExerciseFilterCategoryNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exercises := []*models.Exercise{
		{ID: 1, Category: models.CategoryRhythm, Created: base},
		{ID: 2, Category: models.CategoryPitch, Created: base.Add(time.Hour)},
		{ID: 3, Category: models.CategoryRhythm, Created: base.Add(2 * time.Hour)},
		{ID: 4, Category: models.CategoryRhythm, Created: base.Add(2 * time.Hour), Polyphonic: true},
	}

	got := ParseExerciseFilter(query("category=rhythm")).Apply(exercises)
	assert.Equal(t, []int64{4, 3, 1}, exerciseIDs(got))

	got = ParseExerciseFilter(query("category=rhythm&polyphonic=false")).Apply(exercises)
	assert.Equal(t, []int64{3, 1}, exerciseIDs(got))

	got = ParseExerciseFilter(query("")).Apply(exercises)
	assert.Equal(t, []int64{4, 3, 2, 1}, exerciseIDs(got))

	// input untouched
	assert.Equal(t, int64(1), exercises[0].ID)
}

func TestExerciseFilterIgnoresGarbage(t *testing.T) {
	f := ParseExerciseFilter(query("category=melody&polyphonic=maybe"))
	assert.Nil(t, f.Category)
	assert.Nil(t, f.Polyphonic)
	assert.Nil(t, f.Where())
}

func TestExerciseFilterSQL(t *testing.T) {
	sql, args, err := ParseExerciseFilter(query("category=rhythm&polyphonic=1")).Where().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(category = ? AND polyphonic = ?)", sql)
	assert.Equal(t, []interface{}{"rhythm", true}, args)
	assert.Equal(t, []string{"created DESC", "id DESC"}, ExerciseFilter{}.OrderBy())
}

func TestInstrumentFilter(t *testing.T) {
	instruments := []*models.Instrument{
		{ID: 1, Name: "Violin", Family: "String"},
		{ID: 2, Name: "Flute", Family: "Woodwind"},
		{ID: 3, Name: "Cello", Family: "String"},
		{ID: 4, Name: "Trumpet", Family: "Brass"},
	}
	names := func(list []*models.Instrument) []string {
		out := []string{}
		for _, i := range list {
			out = append(out, i.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Cello", "Flute", "Trumpet", "Violin"}, names(ParseInstrumentFilter(query("")).Apply(instruments)))
	assert.Equal(t, []string{"Violin", "Cello"}, names(ParseInstrumentFilter(query("search=STRING&ordering=-name")).Apply(instruments)))
	assert.Equal(t, []string{"Flute"}, names(ParseInstrumentFilter(query("search=ute")).Apply(instruments)))
	assert.Equal(t, []string{"Trumpet", "Violin", "Cello", "Flute"}, names(ParseInstrumentFilter(query("ordering=family,-name")).Apply(instruments)))
	// unknown ordering falls back to name
	assert.Equal(t, []string{"Cello", "Flute", "Trumpet", "Violin"}, names(ParseInstrumentFilter(query("ordering=price")).Apply(instruments)))
}

func TestOrderingIgnoresCase(t *testing.T) {
	instruments := []*models.Instrument{
		{ID: 1, Name: "Violin", Family: "string"},
		{ID: 2, Name: "cello", Family: "String"},
		{ID: 3, Name: "viola", Family: "String"},
		{ID: 4, Name: "Viola", Family: "Brass"},
	}
	ids := func(list []*models.Instrument) []int64 {
		out := []int64{}
		for _, i := range list {
			out = append(out, i.ID)
		}
		return out
	}
	assert.Equal(t, []int64{2, 4, 3, 1}, ids(ParseInstrumentFilter(query("ordering=name")).Apply(instruments)))
	assert.Equal(t, []int64{1, 3, 4, 2}, ids(ParseInstrumentFilter(query("ordering=-name")).Apply(instruments)))
	assert.Equal(t, []int64{4, 2, 3, 1}, ids(ParseInstrumentFilter(query("ordering=family,name")).Apply(instruments)))

	users := []*models.User{
		{ID: 1, Username: "Zoe"},
		{ID: 2, Username: "adam"},
		{ID: 3, Username: "Mia"},
	}
	var got []int64
	for _, u := range ParseUserFilter(query("ordering=username")).Apply(users) {
		got = append(got, u.ID)
	}
	assert.Equal(t, []int64{2, 3, 1}, got)
}

func TestInstrumentFilterSQL(t *testing.T) {
	f := ParseInstrumentFilter(query("search=50%_off&ordering=-family"))
	sql, args, err := f.Where().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(name ILIKE ? OR family ILIKE ?)", sql)
	assert.Equal(t, []interface{}{`%50\%\_off%`, `%50\%\_off%`}, args)
	assert.Equal(t, []string{"family DESC", "id ASC"}, f.OrderBy())
	assert.Equal(t, []string{"name ASC", "id ASC"}, InstrumentFilter{}.OrderBy())
}

func TestUserFilter(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []*models.User{
		{ID: 1, Username: "zoe", Email: "zoe@rea.test", UserType: models.UserTypeStudent, DateJoined: base.Add(time.Hour)},
		{ID: 2, Username: "adam", FirstName: "Zorro", UserType: models.UserTypeTeacher, DateJoined: base},
		{ID: 3, Username: "mia", LastName: "Smith", UserType: models.UserTypeStudent, DateJoined: base.Add(2 * time.Hour)},
	}
	ids := func(list []*models.User) []int64 {
		out := []int64{}
		for _, u := range list {
			out = append(out, u.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 2, 3}, ids(ParseUserFilter(query("")).Apply(users)))
	assert.Equal(t, []int64{2, 3, 1}, ids(ParseUserFilter(query("ordering=username")).Apply(users)))
	assert.Equal(t, []int64{3, 1, 2}, ids(ParseUserFilter(query("ordering=-date_joined")).Apply(users)))
	assert.Equal(t, []int64{2, 1, 3}, ids(ParseUserFilter(query("ordering=-user_type")).Apply(users)))
	assert.Equal(t, []int64{1, 2}, ids(ParseUserFilter(query("search=zo")).Apply(users)))
	assert.Equal(t, []int64{1}, ids(ParseUserFilter(query("search=zo")).WithUserType(models.UserTypeStudent).Apply(users)))
	assert.Equal(t, []int64{3}, ids(ParseUserFilter(query("search=smi&ordering=bogus")).Apply(users)))
}

func TestUserFilterSQL(t *testing.T) {
	f := ParseUserFilter(query("search=ann&ordering=-date_joined,username")).WithUserType(models.UserTypeTeacher)
	sql, args, err := f.Where().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(user_type = ? AND (username ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?))", sql)
	assert.Len(t, args, 5)
	assert.Equal(t, []string{"date_joined DESC", "username ASC", "id ASC"}, f.OrderBy())
	assert.Nil(t, ParseUserFilter(query("")).Where())
}

func TestScopeUserInstruments(t *testing.T) {
	student := auth.Authenticated(10, false, models.UserTypeStudent)
	admin := auth.Authenticated(1, true, models.UserTypeTeacher)

	links := []*models.UserInstrument{
		{ID: 1, UserID: 10}, {ID: 2, UserID: 5}, {ID: 3, UserID: 10},
	}

	own := ScopeUserInstruments(student, query(""))
	require.NotNil(t, own.UserID)
	assert.Equal(t, int64(10), *own.UserID)
	assert.Equal(t, auth.NoTarget, own.Target())
	assert.Len(t, own.Apply(links), 2)

	all := ScopeUserInstruments(admin, query(""))
	assert.Nil(t, all.UserID)
	assert.Nil(t, all.Where())
	assert.Len(t, all.Apply(links), 3)

	targeted := ScopeUserInstruments(admin, query("user=5"))
	assert.Equal(t, auth.OwnedBy(5), targeted.Target())
	assert.Len(t, targeted.Apply(links), 1)

	// malformed target is treated as absent
	garbage := ScopeUserInstruments(student, query("user=abc"))
	assert.Equal(t, auth.NoTarget, garbage.Target())
	assert.Equal(t, int64(10), *garbage.UserID)

	sql, args, err := targeted.Where().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "ui.user_id = ?", sql)
	assert.Equal(t, []interface{}{int64(5)}, args)
}
