package query

import (
	"errors"
	"net/url"
	"testing"

	"songcatalog/internal/store"
)

func TestParseDefaults(t *testing.T) {
	q, err := Parse(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.Page != 1 || q.Limit != 10 {
		t.Fatalf("expected page 1 limit 10, got page %d limit %d", q.Page, q.Limit)
	}
	if q.Sort.Field != "createdAt" || !q.Sort.Desc {
		t.Fatalf("expected default sort -createdAt, got %+v", q.Sort)
	}
	if len(q.Conditions) != 0 {
		t.Fatalf("expected no conditions, got %+v", q.Conditions)
	}
	if q.Skip() != 0 {
		t.Fatalf("expected skip 0, got %d", q.Skip())
	}
}

func TestParsePageAndLimit(t *testing.T) {
	tests := []struct {
		name      string
		params    url.Values
		wantErr   string
		wantPage  int64
		wantLimit int64
		wantSkip  int64
	}{
		{
			name:      "explicit page and limit",
			params:    url.Values{"page": {"3"}, "limit": {"20"}},
			wantPage:  3,
			wantLimit: 20,
			wantSkip:  40,
		},
		{
			name:      "limit lower boundary",
			params:    url.Values{"limit": {"1"}},
			wantPage:  1,
			wantLimit: 1,
		},
		{
			name:      "limit upper boundary",
			params:    url.Values{"limit": {"100"}},
			wantPage:  1,
			wantLimit: 100,
		},
		{
			name:    "zero page",
			params:  url.Values{"page": {"0"}},
			wantErr: "page",
		},
		{
			name:    "non-numeric page",
			params:  url.Values{"page": {"abc"}},
			wantErr: "page",
		},
		{
			name:    "zero limit",
			params:  url.Values{"limit": {"0"}},
			wantErr: "limit",
		},
		{
			name:    "limit above maximum",
			params:  url.Values{"limit": {"101"}},
			wantErr: "limit",
		},
		{
			name:    "non-numeric limit",
			params:  url.Values{"limit": {"ten"}},
			wantErr: "limit",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Parse(tc.params)
			if tc.wantErr != "" {
				var verr store.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if verr.Field != tc.wantErr {
					t.Fatalf("expected error on %q, got %q", tc.wantErr, verr.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Page != tc.wantPage || q.Limit != tc.wantLimit {
				t.Fatalf("expected page %d limit %d, got page %d limit %d",
					tc.wantPage, tc.wantLimit, q.Page, q.Limit)
			}
			if tc.wantSkip != 0 && q.Skip() != tc.wantSkip {
				t.Fatalf("expected skip %d, got %d", tc.wantSkip, q.Skip())
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name     string
		sort     string
		want     store.Sort
		wantErr  bool
	}{
		{name: "ascending title", sort: "title", want: store.Sort{Field: "title"}},
		{name: "descending artist", sort: "-artist", want: store.Sort{Field: "artist", Desc: true}},
		{name: "descending createdAt", sort: "-createdAt", want: store.Sort{Field: "createdAt", Desc: true}},
		{name: "unknown field", sort: "duration", wantErr: true},
		{name: "bare dash", sort: "-", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Parse(url.Values{"sort": {tc.sort}})
			if tc.wantErr {
				var verr store.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Sort != tc.want {
				t.Fatalf("expected sort %+v, got %+v", tc.want, q.Sort)
			}
		})
	}
}

func TestParseFilters(t *testing.T) {
	params := url.Values{
		"title":    {"imagine"},
		"artist":   {"lennon"},
		"songType": {"single"},
	}

	q, err := Parse(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []store.Condition{
		{Field: "title", Op: store.OpContainsFold, Value: "imagine"},
		{Field: "artist", Op: store.OpContainsFold, Value: "lennon"},
		{Field: "songType", Op: store.OpEquals, Value: "single"},
	}
	if len(q.Conditions) != len(want) {
		t.Fatalf("expected %d conditions, got %d: %+v", len(want), len(q.Conditions), q.Conditions)
	}
	for i, cond := range want {
		if q.Conditions[i] != cond {
			t.Fatalf("condition %d: expected %+v, got %+v", i, cond, q.Conditions[i])
		}
	}
}

// The search term targets exactly one field and replaces any per-field
// condition on it; it never fans out across multiple fields.
func TestParseSearch(t *testing.T) {
	tests := []struct {
		name       string
		params     url.Values
		wantField  string
		wantValue  string
		wantLength int
	}{
		{
			name:       "search defaults to title",
			params:     url.Values{"search": {"love"}},
			wantField:  "title",
			wantValue:  "love",
			wantLength: 1,
		},
		{
			name:       "search by artist",
			params:     url.Values{"search": {"queen"}, "searchType": {"artist"}},
			wantField:  "artist",
			wantValue:  "queen",
			wantLength: 1,
		},
		{
			name:       "unrecognized searchType falls back to title",
			params:     url.Values{"search": {"love"}, "searchType": {"duration"}},
			wantField:  "title",
			wantValue:  "love",
			wantLength: 1,
		},
		{
			name:       "search overrides the matching per-field filter",
			params:     url.Values{"title": {"old"}, "search": {"new"}, "searchType": {"title"}},
			wantField:  "title",
			wantValue:  "new",
			wantLength: 1,
		},
		{
			name:       "other per-field filters survive",
			params:     url.Values{"genre": {"rock"}, "search": {"queen"}, "searchType": {"artist"}},
			wantField:  "artist",
			wantValue:  "queen",
			wantLength: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Parse(tc.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(q.Conditions) != tc.wantLength {
				t.Fatalf("expected %d conditions, got %+v", tc.wantLength, q.Conditions)
			}

			var found *store.Condition
			for i := range q.Conditions {
				if q.Conditions[i].Field == tc.wantField {
					found = &q.Conditions[i]
				}
			}
			if found == nil {
				t.Fatalf("no condition on %q: %+v", tc.wantField, q.Conditions)
			}
			if found.Op != store.OpContainsFold || found.Value != tc.wantValue {
				t.Fatalf("expected contains %q on %q, got %+v", tc.wantValue, tc.wantField, *found)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	q, err := Parse(url.Values{"fields": {"title, artist,,genre"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"title", "artist", "genre"}
	if len(q.Fields) != len(want) {
		t.Fatalf("expected fields %v, got %v", want, q.Fields)
	}
	for i := range want {
		if q.Fields[i] != want[i] {
			t.Fatalf("expected fields %v, got %v", want, q.Fields)
		}
	}
}
