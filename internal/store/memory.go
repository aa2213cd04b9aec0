package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory stores songs in-memory behind the same interface as Mongo. It backs
// the test suites and the demo mode; grouping ties are broken by group name
// ascending so its aggregation output is deterministic.
type Memory struct {
	mu    sync.RWMutex
	songs map[string]Song
	order []string
}

// NewMemory sets up an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{songs: make(map[string]Song)}
}

func (m *Memory) Insert(_ context.Context, song Song) (Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.songs[song.ID] = song
	m.order = append(m.order, song.ID)
	return song, nil
}

func (m *Memory) Get(_ context.Context, id string) (Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	song, ok := m.songs[id]
	if !ok {
		return Song{}, ErrNotFound
	}
	return song, nil
}

func (m *Memory) FindByTitle(_ context.Context, title, excludeID string) (Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		song := m.songs[id]
		if song.ID != excludeID && strings.EqualFold(song.Title, title) {
			return song, nil
		}
	}
	return Song{}, ErrNotFound
}

func (m *Memory) List(_ context.Context, q ListQuery) ([]Song, error) {
	m.mu.RLock()
	matched := m.matching(q.Conditions)
	m.mu.RUnlock()

	sortSongs(matched, q.Sort)

	skip := q.Skip()
	if skip >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[skip:]
	if q.Limit > 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}

	if len(q.Fields) > 0 {
		for i := range matched {
			matched[i] = project(matched[i], q.Fields)
		}
	}
	return matched, nil
}

func (m *Memory) Count(_ context.Context, conds []Condition) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.matching(conds))), nil
}

func (m *Memory) Update(_ context.Context, id string, changes SongUpdate) (Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	song, ok := m.songs[id]
	if !ok {
		return Song{}, ErrNotFound
	}

	if changes.Title != nil {
		song.Title = *changes.Title
	}
	if changes.Artist != nil {
		song.Artist = *changes.Artist
	}
	if changes.SongType != nil {
		song.SongType = *changes.SongType
	}
	if changes.Genre != nil {
		song.Genre = *changes.Genre
	}
	if changes.Album != nil {
		song.Album = *changes.Album
	}
	song.UpdatedAt = time.Now().UTC()
	song.Rev++

	m.songs[id] = song
	return song, nil
}

func (m *Memory) Delete(_ context.Context, id string) (Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	song, ok := m.songs[id]
	if !ok {
		return Song{}, ErrNotFound
	}

	delete(m.songs, id)
	for i, sid := range m.order {
		if sid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return song, nil
}

// matching returns copies of all songs satisfying every condition, in
// insertion order. Callers must hold at least the read lock.
func (m *Memory) matching(conds []Condition) []Song {
	var matched []Song
	for _, id := range m.order {
		song := m.songs[id]
		if matches(song, conds) {
			matched = append(matched, song)
		}
	}
	return matched
}

func matches(song Song, conds []Condition) bool {
	for _, c := range conds {
		value := fieldValue(song, c.Field)
		switch c.Op {
		case OpContainsFold:
			if !strings.Contains(strings.ToLower(value), strings.ToLower(c.Value)) {
				return false
			}
		default:
			if value != c.Value {
				return false
			}
		}
	}
	return true
}

func fieldValue(song Song, field string) string {
	switch field {
	case "title":
		return song.Title
	case "artist":
		return song.Artist
	case "songType":
		return string(song.SongType)
	case "genre":
		return song.Genre
	case "album":
		return song.Album
	default:
		return ""
	}
}

func sortSongs(songs []Song, by Sort) {
	sort.SliceStable(songs, func(i, j int) bool {
		a, b := songs[i], songs[j]
		if by.Desc {
			a, b = b, a
		}
		if by.Field == "createdAt" {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return fieldValue(a, by.Field) < fieldValue(b, by.Field)
	})
}

func project(song Song, fields []string) Song {
	out := Song{ID: song.ID}
	for _, f := range fields {
		switch f {
		case "title":
			out.Title = song.Title
		case "artist":
			out.Artist = song.Artist
		case "songType":
			out.SongType = song.SongType
		case "genre":
			out.Genre = song.Genre
		case "album":
			out.Album = song.Album
		case "createdAt":
			out.CreatedAt = song.CreatedAt
		case "updatedAt":
			out.UpdatedAt = song.UpdatedAt
		}
	}
	return out
}

func (m *Memory) Totals(_ context.Context) (Totals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	artists := map[string]struct{}{}
	genres := map[string]struct{}{}
	totals := Totals{Songs: int64(len(m.songs))}

	for _, song := range m.songs {
		artists[song.Artist] = struct{}{}
		genres[song.Genre] = struct{}{}
		switch song.SongType {
		case TypeSingle:
			totals.SingleSongs++
		case TypeAlbum:
			totals.AlbumSongs++
		}
	}

	totals.Artists = int64(len(artists))
	totals.Genres = int64(len(genres))
	return totals, nil
}

func (m *Memory) GroupByGenre(_ context.Context) ([]GenreAgg, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := map[string]*GenreAgg{}
	artists := map[string]map[string]struct{}{}

	for _, id := range m.order {
		song := m.songs[id]
		agg, ok := groups[song.Genre]
		if !ok {
			agg = &GenreAgg{Genre: song.Genre}
			groups[song.Genre] = agg
			artists[song.Genre] = map[string]struct{}{}
		}
		agg.TotalCount++
		if song.SongType == TypeSingle {
			agg.SingleCount++
		}
		if song.SongType == TypeAlbum {
			agg.AlbumCount++
		}
		artists[song.Genre][song.Artist] = struct{}{}
	}

	rows := make([]GenreAgg, 0, len(groups))
	for genre, agg := range groups {
		agg.UniqueArtists = int64(len(artists[genre]))
		rows = append(rows, *agg)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalCount != rows[j].TotalCount {
			return rows[i].TotalCount > rows[j].TotalCount
		}
		return rows[i].Genre < rows[j].Genre
	})
	return rows, nil
}

func (m *Memory) GroupByArtist(_ context.Context) ([]ArtistAgg, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := map[string]*ArtistAgg{}
	genres := map[string]map[string]struct{}{}

	for _, id := range m.order {
		song := m.songs[id]
		agg, ok := groups[song.Artist]
		if !ok {
			agg = &ArtistAgg{Artist: song.Artist}
			groups[song.Artist] = agg
			genres[song.Artist] = map[string]struct{}{}
		}
		agg.SongCount++
		if song.SongType == TypeSingle {
			agg.SingleCount++
		}
		if song.SongType == TypeAlbum {
			agg.AlbumCount++
		}
		agg.Songs = append(agg.Songs, SongBrief{
			Title: song.Title,
			Type:  song.SongType,
			Genre: song.Genre,
		})
		genres[song.Artist][song.Genre] = struct{}{}
	}

	rows := make([]ArtistAgg, 0, len(groups))
	for artist, agg := range groups {
		agg.UniqueGenres = int64(len(genres[artist]))
		rows = append(rows, *agg)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SongCount != rows[j].SongCount {
			return rows[i].SongCount > rows[j].SongCount
		}
		return rows[i].Artist < rows[j].Artist
	})
	return rows, nil
}

func (m *Memory) GroupByType(_ context.Context) ([]TypeAgg, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := map[SongType]*TypeAgg{}
	genres := map[SongType]map[string]struct{}{}
	artists := map[SongType]map[string]struct{}{}

	for _, id := range m.order {
		song := m.songs[id]
		agg, ok := groups[song.SongType]
		if !ok {
			agg = &TypeAgg{Type: song.SongType}
			groups[song.SongType] = agg
			genres[song.SongType] = map[string]struct{}{}
			artists[song.SongType] = map[string]struct{}{}
		}
		agg.Count++
		genres[song.SongType][song.Genre] = struct{}{}
		artists[song.SongType][song.Artist] = struct{}{}
	}

	rows := make([]TypeAgg, 0, len(groups))
	for t, agg := range groups {
		agg.UniqueGenres = int64(len(genres[t]))
		agg.UniqueArtists = int64(len(artists[t]))
		rows = append(rows, *agg)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Type < rows[j].Type
	})
	return rows, nil
}

func (m *Memory) Recent(_ context.Context, n int) ([]Song, error) {
	m.mu.RLock()
	songs := m.matching(nil)
	m.mu.RUnlock()

	sortSongs(songs, Sort{Field: "createdAt", Desc: true})
	if n > 0 && len(songs) > n {
		songs = songs[:n]
	}
	return songs, nil
}

func (m *Memory) CreatedRange(_ context.Context) (oldest, newest time.Time, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, song := range m.songs {
		if oldest.IsZero() || song.CreatedAt.Before(oldest) {
			oldest = song.CreatedAt
		}
		if newest.IsZero() || song.CreatedAt.After(newest) {
			newest = song.CreatedAt
		}
	}
	return oldest, newest, nil
}
