// Package query translates list-request parameters into the store's filter
// specification. Parsing is a pure transformation; callers map validation
// failures to client-facing responses.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"songcatalog/internal/store"
)

const (
	// DefaultLimit is the page size used when none is requested.
	DefaultLimit = 10
	// MaxLimit caps the requested page size.
	MaxLimit = 100
)

var sortFields = []string{"title", "artist", "songType", "genre", "album", "createdAt"}

var searchFields = map[string]bool{
	"title":  true,
	"artist": true,
	"album":  true,
	"genre":  true,
}

// Parse builds a ListQuery from request query parameters, validating page,
// limit and sort against their allowed ranges.
//
// The search parameter applies a single case-insensitive contains condition
// on exactly the field named by searchType (default title), replacing any
// per-field condition on that field. The term is never fanned out across
// multiple fields.
func Parse(params url.Values) (store.ListQuery, error) {
	q := store.ListQuery{Page: 1, Limit: DefaultLimit}

	if raw := params.Get("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || page < 1 {
			return store.ListQuery{}, store.ValidationError{
				Field:   "page",
				Message: "must be a positive number",
			}
		}
		q.Page = page
	}

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 || limit > MaxLimit {
			return store.ListQuery{}, store.ValidationError{
				Field:   "limit",
				Message: "must be between 1 and 100",
			}
		}
		q.Limit = limit
	}

	sortBy, err := parseSort(params.Get("sort"))
	if err != nil {
		return store.ListQuery{}, err
	}
	q.Sort = sortBy

	if raw := params.Get("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Fields = append(q.Fields, f)
			}
		}
	}

	q.Conditions = parseConditions(params)
	return q, nil
}

func parseSort(raw string) (store.Sort, error) {
	if raw == "" {
		return store.Sort{Field: "createdAt", Desc: true}, nil
	}

	field := raw
	desc := false
	if strings.HasPrefix(raw, "-") {
		field = raw[1:]
		desc = true
	}

	for _, allowed := range sortFields {
		if field == allowed {
			return store.Sort{Field: field, Desc: desc}, nil
		}
	}
	return store.Sort{}, store.ValidationError{
		Field:   "sort",
		Message: "invalid sort field, allowed: " + strings.Join(sortFields, ", "),
	}
}

func parseConditions(params url.Values) []store.Condition {
	var conds []store.Condition

	for _, field := range []string{"title", "artist", "genre", "album"} {
		if v := params.Get(field); v != "" {
			conds = append(conds, store.Condition{Field: field, Op: store.OpContainsFold, Value: v})
		}
	}
	if v := params.Get("songType"); v != "" {
		conds = append(conds, store.Condition{Field: "songType", Op: store.OpEquals, Value: v})
	}

	if term := params.Get("search"); term != "" {
		field := params.Get("searchType")
		if !searchFields[field] {
			field = "title"
		}
		cond := store.Condition{Field: field, Op: store.OpContainsFold, Value: term}

		replaced := false
		for i := range conds {
			if conds[i].Field == field && conds[i].Op == store.OpContainsFold {
				conds[i] = cond
				replaced = true
				break
			}
		}
		if !replaced {
			conds = append(conds, cond)
		}
	}

	return conds
}
