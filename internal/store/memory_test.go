package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedMemory(t *testing.T) *Memory {
	t.Helper()

	m := NewMemory()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	songs := []Song{
		{ID: "s1", Title: "Bohemian Rhapsody", Artist: "Queen", SongType: TypeAlbum, Genre: "Rock", Album: "A Night at the Opera"},
		{ID: "s2", Title: "Imagine", Artist: "John Lennon", SongType: TypeSingle, Genre: "Rock"},
		{ID: "s3", Title: "Billie Jean", Artist: "Michael Jackson", SongType: TypeAlbum, Genre: "Pop", Album: "Thriller"},
		{ID: "s4", Title: "Take Five", Artist: "Dave Brubeck", SongType: TypeSingle, Genre: "Jazz"},
		{ID: "s5", Title: "Another One Bites the Dust", Artist: "Queen", SongType: TypeSingle, Genre: "Rock"},
	}
	for i, song := range songs {
		song.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		song.UpdatedAt = song.CreatedAt
		if _, err := m.Insert(context.Background(), song); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
	return m
}

func TestMemoryGet(t *testing.T) {
	m := seedMemory(t)

	song, err := m.Get(context.Background(), "s2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if song.Title != "Imagine" {
		t.Fatalf("expected Imagine, got %q", song.Title)
	}

	if _, err := m.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryFindByTitle(t *testing.T) {
	m := seedMemory(t)

	song, err := m.FindByTitle(context.Background(), "IMAGINE", "")
	if err != nil {
		t.Fatalf("expected case-insensitive match, got %v", err)
	}
	if song.ID != "s2" {
		t.Fatalf("expected s2, got %q", song.ID)
	}

	// Excluding the matching song itself finds nothing.
	if _, err := m.FindByTitle(context.Background(), "imagine", "s2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Substrings do not match, only the whole title does.
	if _, err := m.FindByTitle(context.Background(), "Imagi", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for partial title, got %v", err)
	}
}

func TestMemoryListFilters(t *testing.T) {
	m := seedMemory(t)

	tests := []struct {
		name    string
		conds   []Condition
		wantIDs []string
	}{
		{
			name:    "contains is case-insensitive",
			conds:   []Condition{{Field: "artist", Op: OpContainsFold, Value: "queen"}},
			wantIDs: []string{"s1", "s5"},
		},
		{
			name:    "equals is exact",
			conds:   []Condition{{Field: "songType", Op: OpEquals, Value: "album"}},
			wantIDs: []string{"s1", "s3"},
		},
		{
			name: "conditions combine with AND",
			conds: []Condition{
				{Field: "genre", Op: OpContainsFold, Value: "rock"},
				{Field: "songType", Op: OpEquals, Value: "single"},
			},
			wantIDs: []string{"s2", "s5"},
		},
		{
			name:    "no match yields empty result",
			conds:   []Condition{{Field: "genre", Op: OpContainsFold, Value: "metal"}},
			wantIDs: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			songs, err := m.List(context.Background(), ListQuery{
				Conditions: tc.conds,
				Sort:       Sort{Field: "createdAt"},
				Page:       1,
				Limit:      100,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(songs) != len(tc.wantIDs) {
				t.Fatalf("expected %d songs, got %d", len(tc.wantIDs), len(songs))
			}
			for i, id := range tc.wantIDs {
				if songs[i].ID != id {
					t.Fatalf("position %d: expected %q, got %q", i, id, songs[i].ID)
				}
			}
		})
	}
}

func TestMemoryListSortAndPagination(t *testing.T) {
	m := seedMemory(t)

	songs, err := m.List(context.Background(), ListQuery{
		Sort:  Sort{Field: "title"},
		Page:  1,
		Limit: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if songs[0].Title != "Another One Bites the Dust" || songs[len(songs)-1].Title != "Take Five" {
		t.Fatalf("unexpected title order: first %q last %q", songs[0].Title, songs[len(songs)-1].Title)
	}

	// Newest first, second page of two.
	page2, err := m.List(context.Background(), ListQuery{
		Sort:  Sort{Field: "createdAt", Desc: true},
		Page:  2,
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page2) != 2 || page2[0].ID != "s3" || page2[1].ID != "s2" {
		t.Fatalf("unexpected second page: %+v", page2)
	}

	// A page past the end is empty, not an error.
	empty, err := m.List(context.Background(), ListQuery{
		Sort:  Sort{Field: "createdAt"},
		Page:  4,
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %+v", empty)
	}
}

func TestMemoryListProjection(t *testing.T) {
	m := seedMemory(t)

	songs, err := m.List(context.Background(), ListQuery{
		Conditions: []Condition{{Field: "title", Op: OpContainsFold, Value: "imagine"}},
		Sort:       Sort{Field: "createdAt"},
		Fields:     []string{"title", "artist"},
		Page:       1,
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected one song, got %d", len(songs))
	}

	got := songs[0]
	if got.ID != "s2" || got.Title != "Imagine" || got.Artist != "John Lennon" {
		t.Fatalf("projected fields missing: %+v", got)
	}
	if got.Genre != "" || got.SongType != "" || !got.CreatedAt.IsZero() {
		t.Fatalf("unselected fields should be zero: %+v", got)
	}
}

func TestMemoryCount(t *testing.T) {
	m := seedMemory(t)

	total, err := m.Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5, got %d", total)
	}

	rock, err := m.Count(context.Background(), []Condition{
		{Field: "genre", Op: OpContainsFold, Value: "rock"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rock != 3 {
		t.Fatalf("expected 3 rock songs, got %d", rock)
	}
}

func TestMemoryUpdate(t *testing.T) {
	m := seedMemory(t)

	title := "Imagine (Remastered)"
	updated, err := m.Update(context.Background(), "s2", SongUpdate{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
	if updated.Artist != "John Lennon" {
		t.Fatalf("untouched field changed: %q", updated.Artist)
	}
	if updated.Rev != 1 {
		t.Fatalf("expected rev 1, got %d", updated.Rev)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updatedAt to move forward")
	}

	if _, err := m.Update(context.Background(), "missing", SongUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	m := seedMemory(t)

	snapshot, err := m.Delete(context.Background(), "s4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Title != "Take Five" {
		t.Fatalf("expected deleted snapshot, got %+v", snapshot)
	}

	if _, err := m.Get(context.Background(), "s4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := m.Delete(context.Background(), "s4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestMemoryTotals(t *testing.T) {
	m := seedMemory(t)

	totals, err := m.Totals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Totals{Songs: 5, Artists: 4, Genres: 3, SingleSongs: 3, AlbumSongs: 2}
	if totals != want {
		t.Fatalf("expected %+v, got %+v", want, totals)
	}
}

func TestMemoryGroupByGenre(t *testing.T) {
	m := seedMemory(t)

	rows, err := m.GroupByGenre(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 genres, got %d", len(rows))
	}

	rock := rows[0]
	if rock.Genre != "Rock" || rock.TotalCount != 3 {
		t.Fatalf("expected Rock with 3 songs first, got %+v", rock)
	}
	if rock.SingleCount != 2 || rock.AlbumCount != 1 || rock.UniqueArtists != 2 {
		t.Fatalf("unexpected rock breakdown: %+v", rock)
	}

	// One song each; ties are ordered by genre name.
	if rows[1].Genre != "Jazz" || rows[2].Genre != "Pop" {
		t.Fatalf("expected Jazz then Pop, got %q then %q", rows[1].Genre, rows[2].Genre)
	}
}

func TestMemoryGroupByArtist(t *testing.T) {
	m := seedMemory(t)

	rows, err := m.GroupByArtist(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 artists, got %d", len(rows))
	}

	queen := rows[0]
	if queen.Artist != "Queen" || queen.SongCount != 2 {
		t.Fatalf("expected Queen with 2 songs first, got %+v", queen)
	}
	if queen.SingleCount != 1 || queen.AlbumCount != 1 || queen.UniqueGenres != 1 {
		t.Fatalf("unexpected queen breakdown: %+v", queen)
	}
	if len(queen.Songs) != 2 || queen.Songs[0].Title != "Bohemian Rhapsody" {
		t.Fatalf("unexpected song list: %+v", queen.Songs)
	}
}

func TestMemoryGroupByType(t *testing.T) {
	m := seedMemory(t)

	rows, err := m.GroupByType(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 types, got %d", len(rows))
	}

	single := rows[0]
	if single.Type != TypeSingle || single.Count != 3 {
		t.Fatalf("expected single type with 3 songs first, got %+v", single)
	}
	if single.UniqueGenres != 2 || single.UniqueArtists != 3 {
		t.Fatalf("unexpected single breakdown: %+v", single)
	}
}

func TestMemoryRecent(t *testing.T) {
	m := seedMemory(t)

	songs, err := m.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(songs) != 2 || songs[0].ID != "s5" || songs[1].ID != "s4" {
		t.Fatalf("expected newest two, got %+v", songs)
	}
}

func TestMemoryCreatedRange(t *testing.T) {
	m := seedMemory(t)

	oldest, newest, err := m.CreatedRange(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !oldest.Before(newest) {
		t.Fatalf("expected oldest before newest: %v / %v", oldest, newest)
	}

	empty := NewMemory()
	oldest, newest, err = empty.CreatedRange(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !oldest.IsZero() || !newest.IsZero() {
		t.Fatalf("expected zero times for empty store, got %v / %v", oldest, newest)
	}
}
