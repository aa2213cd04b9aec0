package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound signals the requested song does not exist.
	ErrNotFound = errors.New("song not found")
	// ErrDuplicateTitle signals another song already uses the title.
	ErrDuplicateTitle = errors.New("a song with this title already exists")
)

// ValidationError reports a rejected input value together with the parameter
// or field that carried it.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SongType enumerates the kinds of catalog entries.
type SongType string

const (
	TypeSingle SongType = "single"
	TypeAlbum  SongType = "album"
)

// Valid reports whether the value is one of the enumerated song types.
func (t SongType) Valid() bool {
	return t == TypeSingle || t == TypeAlbum
}

// Song is a catalog record. Album is required only for album-type songs.
// Rev is an internal revision counter bumped on every update; it is never
// serialized to clients.
type Song struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string    `json:"title,omitempty" bson:"title,omitempty"`
	Artist    string    `json:"artist,omitempty" bson:"artist,omitempty"`
	SongType  SongType  `json:"songType,omitempty" bson:"songType,omitempty"`
	Genre     string    `json:"genre,omitempty" bson:"genre,omitempty"`
	Album     string    `json:"album,omitempty" bson:"album,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero" bson:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" bson:"updatedAt,omitempty"`
	Rev       int64     `json:"-" bson:"rev"`
}

// SongUpdate describes a partial update. Nil fields are left untouched.
type SongUpdate struct {
	Title    *string
	Artist   *string
	SongType *SongType
	Genre    *string
	Album    *string
}

// Op tags a filter condition variant.
type Op int

const (
	// OpEquals matches the field value exactly.
	OpEquals Op = iota
	// OpContainsFold matches a case-insensitive substring of the field value.
	OpContainsFold
)

// Condition is one field predicate of a filter. A filter is the conjunction
// of its conditions.
type Condition struct {
	Field string
	Op    Op
	Value string
}

// Sort names the field to order by.
type Sort struct {
	Field string
	Desc  bool
}

// ListQuery is the store-agnostic description of a list request: which
// records match, how they are ordered, which fields are projected and which
// page window is returned. Each backend translates it to its native form.
type ListQuery struct {
	Conditions []Condition
	Sort       Sort
	// Fields restricts the projected output fields; empty means all fields
	// (the internal revision counter is never exposed either way).
	Fields []string
	Page   int64
	Limit  int64
}

// Skip returns the number of records preceding the requested page.
func (q ListQuery) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

// SongBrief is the per-song slice of an artist aggregation row.
type SongBrief struct {
	Title string   `json:"title" bson:"title"`
	Type  SongType `json:"type" bson:"type"`
	Genre string   `json:"genre" bson:"genre"`
}

// Totals carries the grand counts over the whole record set.
type Totals struct {
	Songs       int64 `json:"songs"`
	Artists     int64 `json:"artists"`
	Genres      int64 `json:"genres"`
	SingleSongs int64 `json:"singleSongs"`
	AlbumSongs  int64 `json:"albumSongs"`
}

// GenreAgg is one grouped row of the per-genre aggregation, ordered by
// TotalCount descending.
type GenreAgg struct {
	Genre         string `json:"genre" bson:"genre"`
	TotalCount    int64  `json:"totalCount" bson:"totalCount"`
	SingleCount   int64  `json:"singleCount" bson:"singleCount"`
	AlbumCount    int64  `json:"albumCount" bson:"albumCount"`
	UniqueArtists int64  `json:"uniqueArtists" bson:"uniqueArtists"`
}

// ArtistAgg is one grouped row of the per-artist aggregation, ordered by
// SongCount descending.
type ArtistAgg struct {
	Artist       string      `json:"artist" bson:"artist"`
	SongCount    int64       `json:"songCount" bson:"songCount"`
	SingleCount  int64       `json:"singleCount" bson:"singleCount"`
	AlbumCount   int64       `json:"albumCount" bson:"albumCount"`
	UniqueGenres int64       `json:"uniqueGenres" bson:"uniqueGenres"`
	Songs        []SongBrief `json:"songs" bson:"songs"`
}

// TypeAgg is one grouped row of the per-type aggregation, ordered by Count
// descending.
type TypeAgg struct {
	Type          SongType `json:"type" bson:"type"`
	Count         int64    `json:"count" bson:"count"`
	UniqueGenres  int64    `json:"uniqueGenres" bson:"uniqueGenres"`
	UniqueArtists int64    `json:"uniqueArtists" bson:"uniqueArtists"`
}
