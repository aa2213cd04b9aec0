// Package stats computes catalog statistics on demand. Every call recomputes
// from the full record set; there is no cache or incremental maintenance.
package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"songcatalog/internal/store"
)

// ErrUnavailable is the single category every store failure collapses into.
// Partial results are never returned.
var ErrUnavailable = errors.New("statistics unavailable")

// DefaultRecent is how many songs Recent returns when no count is given.
const DefaultRecent = 5

// Store captures the aggregation queries the statistics need.
type Store interface {
	Totals(ctx context.Context) (store.Totals, error)
	GroupByGenre(ctx context.Context) ([]store.GenreAgg, error)
	GroupByArtist(ctx context.Context) ([]store.ArtistAgg, error)
	GroupByType(ctx context.Context) ([]store.TypeAgg, error)
	Recent(ctx context.Context, n int) ([]store.Song, error)
	CreatedRange(ctx context.Context) (oldest, newest time.Time, err error)
}

// Service exposes the aggregate statistics operations.
type Service struct {
	store Store
	now   func() time.Time
}

// New constructs a stats Service backed by the provided store.
func New(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

// GenreStats is a per-genre aggregation row with its share of the catalog.
type GenreStats struct {
	store.GenreAgg
	Percentage int `json:"percentage"`
}

// ArtistStats is a per-artist aggregation row with its share of the catalog.
type ArtistStats struct {
	store.ArtistAgg
	Percentage int `json:"percentage"`
}

// Distribution bundles the grouped breakdowns, each ordered by count
// descending.
type Distribution struct {
	SongsPerGenre  []GenreStats    `json:"songsPerGenre"`
	SongsPerArtist []ArtistStats   `json:"songsPerArtist"`
	SongsPerType   []store.TypeAgg `json:"songsPerType"`
}

// TopGenre names the most common genre; "N/A" when the catalog is empty.
type TopGenre struct {
	Genre      string `json:"genre"`
	TotalCount int64  `json:"totalCount"`
}

// TopArtist names the most prolific artist; "N/A" when the catalog is empty.
type TopArtist struct {
	Artist    string `json:"artist"`
	SongCount int64  `json:"songCount"`
}

// Insights carries figures derived from the grouped breakdowns.
type Insights struct {
	TopGenre              TopGenre  `json:"topGenre"`
	TopArtist             TopArtist `json:"topArtist"`
	AverageSongsPerArtist int64     `json:"averageSongsPerArtist"`
	AverageSongsPerGenre  int64     `json:"averageSongsPerGenre"`
}

// DataRange spans the oldest and newest creation timestamps; both nil when
// the catalog is empty.
type DataRange struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// Metadata records when and over what data the statistics were computed.
type Metadata struct {
	GeneratedAt time.Time `json:"generatedAt"`
	DataRange   DataRange `json:"dataRange"`
}

// Overview is the full statistics response.
type Overview struct {
	Totals       store.Totals `json:"totals"`
	Distribution Distribution `json:"distribution"`
	Insights     Insights     `json:"insights"`
	Metadata     Metadata     `json:"metadata"`
}

// Overview recomputes every statistic over the whole catalog.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return Overview{}, unavailable(err)
	}
	genres, err := s.store.GroupByGenre(ctx)
	if err != nil {
		return Overview{}, unavailable(err)
	}
	artists, err := s.store.GroupByArtist(ctx)
	if err != nil {
		return Overview{}, unavailable(err)
	}
	types, err := s.store.GroupByType(ctx)
	if err != nil {
		return Overview{}, unavailable(err)
	}
	oldest, newest, err := s.store.CreatedRange(ctx)
	if err != nil {
		return Overview{}, unavailable(err)
	}

	dist := Distribution{
		SongsPerGenre:  make([]GenreStats, 0, len(genres)),
		SongsPerArtist: make([]ArtistStats, 0, len(artists)),
		SongsPerType:   types,
	}
	if types == nil {
		dist.SongsPerType = []store.TypeAgg{}
	}
	for _, g := range genres {
		dist.SongsPerGenre = append(dist.SongsPerGenre, GenreStats{
			GenreAgg:   g,
			Percentage: percentage(g.TotalCount, totals.Songs),
		})
	}
	for _, a := range artists {
		dist.SongsPerArtist = append(dist.SongsPerArtist, ArtistStats{
			ArtistAgg:  a,
			Percentage: percentage(a.SongCount, totals.Songs),
		})
	}

	insights := Insights{
		TopGenre:              TopGenre{Genre: "N/A"},
		TopArtist:             TopArtist{Artist: "N/A"},
		AverageSongsPerArtist: average(totals.Songs, totals.Artists),
		AverageSongsPerGenre:  average(totals.Songs, totals.Genres),
	}
	if len(genres) > 0 {
		insights.TopGenre = TopGenre{Genre: genres[0].Genre, TotalCount: genres[0].TotalCount}
	}
	if len(artists) > 0 {
		insights.TopArtist = TopArtist{Artist: artists[0].Artist, SongCount: artists[0].SongCount}
	}

	meta := Metadata{GeneratedAt: s.now().UTC()}
	if !oldest.IsZero() {
		meta.DataRange = DataRange{From: &oldest, To: &newest}
	}

	return Overview{
		Totals:       totals,
		Distribution: dist,
		Insights:     insights,
		Metadata:     meta,
	}, nil
}

// Recent returns the n most recently created songs, newest first.
func (s *Service) Recent(ctx context.Context, n int) ([]store.Song, error) {
	if n <= 0 {
		n = DefaultRecent
	}
	songs, err := s.store.Recent(ctx, n)
	if err != nil {
		return nil, unavailable(err)
	}
	return songs, nil
}

// percentage returns part's rounded share of total, 0 when total is 0.
func percentage(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// average returns the rounded mean group size, 0 when there are no groups.
func average(total, groups int64) int64 {
	if groups == 0 {
		return 0
	}
	return int64(math.Round(float64(total) / float64(groups)))
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
