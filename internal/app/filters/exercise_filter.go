package filters

import (
	"cmp"
	"net/url"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/rea/internal/app/models"
)

// ExerciseFilter selects exercises by exact category and polyphony.
// Results are ordered newest first, ties broken by descending id.
type ExerciseFilter struct {
	Category   *models.ExerciseCategory
	Polyphonic *bool
}

// ParseExerciseFilter reads "category" and "polyphonic"
func ParseExerciseFilter(q url.Values) ExerciseFilter {
	var f ExerciseFilter

	if c := models.ExerciseCategory(strings.ToLower(strings.TrimSpace(q.Get("category")))); c.Valid() {
		f.Category = &c
	}
	if raw := strings.TrimSpace(q.Get("polyphonic")); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			f.Polyphonic = &b
		}
	}
	return f
}

// Matches reports whether the exercise passes every predicate
func (f ExerciseFilter) Matches(e *models.Exercise) bool {
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.Polyphonic != nil && e.Polyphonic != *f.Polyphonic {
		return false
	}
	return true
}

// Apply filters and sorts exercises without modifying the input
func (f ExerciseFilter) Apply(exercises []*models.Exercise) []*models.Exercise {
	out := make([]*models.Exercise, 0, len(exercises))
	for _, e := range exercises {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	sortBy(out, []compareFunc[*models.Exercise]{
		func(a, b *models.Exercise) int { return b.Created.Compare(a.Created) },
		func(a, b *models.Exercise) int { return cmp.Compare(b.ID, a.ID) },
	})
	return out
}

// Where renders the predicates as SQL. Nil when there are none.
func (f ExerciseFilter) Where() squirrel.Sqlizer {
	var preds []squirrel.Sqlizer
	if f.Category != nil {
		preds = append(preds, squirrel.Eq{"category": string(*f.Category)})
	}
	if f.Polyphonic != nil {
		preds = append(preds, squirrel.Eq{"polyphonic": *f.Polyphonic})
	}
	return and(preds...)
}

// OrderBy returns the fixed newest-first ordering
func (f ExerciseFilter) OrderBy() []string {
	return []string{"created DESC", "id DESC"}
}
