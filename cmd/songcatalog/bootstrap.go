package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"songcatalog/internal/store"
)

// seedDemoData inserts a handful of songs so a fresh instance has something
// to show. It is a no-op when the collection already holds records.
func seedDemoData(ctx context.Context, dataStore *store.Mongo) error {
	total, err := dataStore.Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("count songs: %w", err)
	}
	if total > 0 {
		return nil
	}

	demo := []store.Song{
		{Title: "Sunrise Echoes", Artist: "Luna Rivers", SongType: store.TypeSingle, Genre: "Ambient"},
		{Title: "Golden Hour Groove", Artist: "The Vinyl Set", SongType: store.TypeSingle, Genre: "Indie"},
		{Title: "Neon Reflections", Artist: "City Ghosts", SongType: store.TypeAlbum, Genre: "Synthwave", Album: "After Dark"},
		{Title: "Echo Chamber", Artist: "Glass Waves", SongType: store.TypeSingle, Genre: "Electronic"},
		{Title: "Blue Midnight", Artist: "Ella Brooks", SongType: store.TypeAlbum, Genre: "Jazz", Album: "Skyline"},
		{Title: "Starfield", Artist: "City Ghosts", SongType: store.TypeAlbum, Genre: "Synthwave", Album: "After Dark"},
	}

	now := time.Now().UTC()
	for i, song := range demo {
		song.ID = uuid.NewString()
		// Spread creation times so the recent list has a stable order.
		song.CreatedAt = now.Add(time.Duration(i-len(demo)) * time.Minute)
		song.UpdatedAt = song.CreatedAt
		if _, err := dataStore.Insert(ctx, song); err != nil {
			return fmt.Errorf("seed song %q: %w", song.Title, err)
		}
	}

	log.Info().Int("songs", len(demo)).Msg("seeded demo data")
	return nil
}
