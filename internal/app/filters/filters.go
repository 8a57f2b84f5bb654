// Package filters turns list query parameters into immutable filter values.
// Each filter can be applied to an in-memory collection or rendered as SQL.
// Unknown or malformed parameter values are ignored.
package filters

import (
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
)

// orderField is one validated sort key
type orderField struct {
	key  string
	desc bool
}

// parseOrdering reads a comma separated ordering parameter, keeping only allowed keys.
// A leading "-" sorts descending.
func parseOrdering(raw string, allowed map[string]string) []orderField {
	var fields []orderField
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		key := strings.TrimPrefix(part, "-")
		if _, ok := allowed[key]; !ok || seen[key] {
			continue
		}
		seen[key] = true
		fields = append(fields, orderField{key: key, desc: desc})
	}
	return fields
}

// orderClauses renders fields to SQL ORDER BY terms using the column mapping
func orderClauses(fields []orderField, columns map[string]string) []string {
	clauses := make([]string, 0, len(fields))
	for _, f := range fields {
		dir := "ASC"
		if f.desc {
			dir = "DESC"
		}
		clauses = append(clauses, columns[f.key]+" "+dir)
	}
	return clauses
}

// escapeLike escapes LIKE wildcards so search input is matched literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// searchPredicate builds "col1 ILIKE %term% OR col2 ILIKE %term% ...". Nil for an empty term.
func searchPredicate(term string, columns ...string) squirrel.Sqlizer {
	if term == "" {
		return nil
	}
	pattern := "%" + escapeLike(term) + "%"
	or := squirrel.Or{}
	for _, c := range columns {
		or = append(or, squirrel.ILike{c: pattern})
	}
	return or
}

// containsFold reports whether any value contains term, ignoring case
func containsFold(term string, values ...string) bool {
	term = strings.ToLower(term)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// compareFold orders strings case-insensitively, with byte order breaking ties
func compareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// compareFunc returns <0, 0 or >0
type compareFunc[T any] func(a, b T) int

// sortBy stably sorts items by the ordered compare functions
func sortBy[T any](items []T, cmps []compareFunc[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, cmp := range cmps {
			if c := cmp(items[i], items[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func reverse[T any](cmp compareFunc[T]) compareFunc[T] {
	return func(a, b T) int { return -cmp(a, b) }
}

func and(preds ...squirrel.Sqlizer) squirrel.Sqlizer {
	out := squirrel.And{}
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
