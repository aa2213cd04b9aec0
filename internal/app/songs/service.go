// Package songs coordinates the song write path: input validation, the
// title-uniqueness check and change notification after successful mutations.
package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"songcatalog/internal/notify"
	"songcatalog/internal/store"
)

// Store captures the persistence operations the song workflows need.
type Store interface {
	Insert(ctx context.Context, song store.Song) (store.Song, error)
	Get(ctx context.Context, id string) (store.Song, error)
	FindByTitle(ctx context.Context, title, excludeID string) (store.Song, error)
	List(ctx context.Context, q store.ListQuery) ([]store.Song, error)
	Count(ctx context.Context, conds []store.Condition) (int64, error)
	Update(ctx context.Context, id string, changes store.SongUpdate) (store.Song, error)
	Delete(ctx context.Context, id string) (store.Song, error)
}

// Service exposes song-centric operations.
type Service struct {
	store  Store
	events notify.Broadcaster
}

// New constructs a song Service. events may be nil to disable notifications.
func New(s Store, events notify.Broadcaster) *Service {
	return &Service{store: s, events: events}
}

// CreateInput carries a create request. SongType defaults to single.
type CreateInput struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	SongType string `json:"songType"`
	Genre    string `json:"genre"`
	Album    string `json:"album"`
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title    *string `json:"title"`
	Artist   *string `json:"artist"`
	SongType *string `json:"songType"`
	Genre    *string `json:"genre"`
	Album    *string `json:"album"`
}

// Create validates and stores a new song, then notifies subscribers.
//
// The title-uniqueness check is check-then-act: two concurrent creates with
// the same title can both pass it before either insert lands. Acceptable for
// a catalog tool; the store itself does not enforce the invariant.
func (s *Service) Create(ctx context.Context, in CreateInput) (store.Song, error) {
	title := strings.TrimSpace(in.Title)
	artist := strings.TrimSpace(in.Artist)
	genre := strings.TrimSpace(in.Genre)
	album := strings.TrimSpace(in.Album)

	switch {
	case title == "":
		return store.Song{}, store.ValidationError{Field: "title", Message: "is required"}
	case artist == "":
		return store.Song{}, store.ValidationError{Field: "artist", Message: "is required"}
	case genre == "":
		return store.Song{}, store.ValidationError{Field: "genre", Message: "is required"}
	}

	songType := store.SongType(strings.TrimSpace(in.SongType))
	if songType == "" {
		songType = store.TypeSingle
	}
	if !songType.Valid() {
		return store.Song{}, store.ValidationError{Field: "songType", Message: "must be either 'single' or 'album'"}
	}
	if songType == store.TypeAlbum && album == "" {
		return store.Song{}, store.ValidationError{Field: "album", Message: "album name is required when song type is 'album'"}
	}

	if err := s.checkTitleFree(ctx, title, ""); err != nil {
		return store.Song{}, err
	}

	now := time.Now().UTC()
	song := store.Song{
		ID:        uuid.NewString(),
		Title:     title,
		Artist:    artist,
		SongType:  songType,
		Genre:     genre,
		Album:     album,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.store.Insert(ctx, song)
	if err != nil {
		return store.Song{}, err
	}

	s.publish(ctx, notify.Created(created))
	return created, nil
}

// List returns the requested page together with the total match count.
func (s *Service) List(ctx context.Context, q store.ListQuery) ([]store.Song, int64, error) {
	matched, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx, q.Conditions)
	if err != nil {
		return nil, 0, err
	}
	return matched, total, nil
}

// Get returns a single song by id.
func (s *Service) Get(ctx context.Context, id string) (store.Song, error) {
	return s.store.Get(ctx, id)
}

// Update applies a partial update after re-validating the songType/album
// pairing and, when the title changes, the uniqueness invariant.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (store.Song, error) {
	changes := store.SongUpdate{}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return store.Song{}, store.ValidationError{Field: "title", Message: "must not be empty"}
		}
		if err := s.checkTitleFree(ctx, title, id); err != nil {
			return store.Song{}, err
		}
		changes.Title = &title
	}
	if in.Artist != nil {
		artist := strings.TrimSpace(*in.Artist)
		if artist == "" {
			return store.Song{}, store.ValidationError{Field: "artist", Message: "must not be empty"}
		}
		changes.Artist = &artist
	}
	if in.Genre != nil {
		genre := strings.TrimSpace(*in.Genre)
		if genre == "" {
			return store.Song{}, store.ValidationError{Field: "genre", Message: "must not be empty"}
		}
		changes.Genre = &genre
	}
	if in.SongType != nil {
		songType := store.SongType(strings.TrimSpace(*in.SongType))
		if !songType.Valid() {
			return store.Song{}, store.ValidationError{Field: "songType", Message: "must be either 'single' or 'album'"}
		}
		if songType == store.TypeAlbum && (in.Album == nil || strings.TrimSpace(*in.Album) == "") {
			return store.Song{}, store.ValidationError{Field: "album", Message: "album name is required when song type is 'album'"}
		}
		changes.SongType = &songType
	}
	if in.Album != nil {
		album := strings.TrimSpace(*in.Album)
		changes.Album = &album
	}

	updated, err := s.store.Update(ctx, id, changes)
	if err != nil {
		return store.Song{}, err
	}

	s.publish(ctx, notify.Updated(updated))
	return updated, nil
}

// Delete removes a song and notifies subscribers with its last snapshot.
func (s *Service) Delete(ctx context.Context, id string) (store.Song, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return store.Song{}, err
	}

	s.publish(ctx, notify.Deleted(deleted))
	return deleted, nil
}

func (s *Service) checkTitleFree(ctx context.Context, title, excludeID string) error {
	_, err := s.store.FindByTitle(ctx, title, excludeID)
	if err == nil {
		return store.ErrDuplicateTitle
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check title: %w", err)
	}
	return nil
}

// publish emits the change event after the store write is acknowledged.
// Delivery is best-effort; a failed publish never fails the request.
func (s *Service) publish(ctx context.Context, event notify.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", event.Name()).Msg("change notification dropped")
	}
}
