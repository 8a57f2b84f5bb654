package filters

import (
	"cmp"
	"net/url"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/rea/internal/app/models"
)

var instrumentOrderColumns = map[string]string{
	"name":   "name",
	"family": "family",
}

var instrumentComparers = map[string]compareFunc[*models.Instrument]{
	"name":   func(a, b *models.Instrument) int { return compareFold(a.Name, b.Name) },
	"family": func(a, b *models.Instrument) int { return compareFold(a.Family, b.Family) },
}

// InstrumentFilter selects and orders instruments. Default order is ascending name.
type InstrumentFilter struct {
	Search   string
	ordering []orderField
}

// ParseInstrumentFilter reads "search" and "ordering"
func ParseInstrumentFilter(q url.Values) InstrumentFilter {
	ordering := parseOrdering(q.Get("ordering"), instrumentOrderColumns)
	if len(ordering) == 0 {
		ordering = []orderField{{key: "name"}}
	}
	return InstrumentFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		ordering: ordering,
	}
}

// Matches reports whether the instrument passes the search term
func (f InstrumentFilter) Matches(i *models.Instrument) bool {
	return f.Search == "" || containsFold(f.Search, i.Name, i.Family)
}

// Apply filters and sorts instruments without modifying the input
func (f InstrumentFilter) Apply(instruments []*models.Instrument) []*models.Instrument {
	out := make([]*models.Instrument, 0, len(instruments))
	for _, i := range instruments {
		if f.Matches(i) {
			out = append(out, i)
		}
	}

	ordering := f.ordering
	if len(ordering) == 0 {
		ordering = []orderField{{key: "name"}}
	}
	cmps := make([]compareFunc[*models.Instrument], 0, len(ordering)+1)
	for _, o := range ordering {
		c := instrumentComparers[o.key]
		if o.desc {
			c = reverse(c)
		}
		cmps = append(cmps, c)
	}
	cmps = append(cmps, func(a, b *models.Instrument) int { return cmp.Compare(a.ID, b.ID) })
	sortBy(out, cmps)
	return out
}

// Where renders the search as SQL. Nil when there is none.
func (f InstrumentFilter) Where() squirrel.Sqlizer {
	return searchPredicate(f.Search, "name", "family")
}

// OrderBy renders the ordering as SQL ORDER BY terms, id last
func (f InstrumentFilter) OrderBy() []string {
	ordering := f.ordering
	if len(ordering) == 0 {
		ordering = []orderField{{key: "name"}}
	}
	return append(orderClauses(ordering, instrumentOrderColumns), "id ASC")
}
