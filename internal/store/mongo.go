package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo provides persistence backed by a MongoDB collection.
type Mongo struct {
	songs *mongo.Collection
}

// NewMongo sets up a Mongo store using the provided database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{songs: db.Collection("songs")}
}

// filterDoc translates the store-agnostic conditions into their native
// MongoDB form. Contains conditions become escaped case-insensitive regexes,
// so regex metacharacters in user input match literally.
func filterDoc(conds []Condition) bson.D {
	doc := bson.D{}
	for _, c := range conds {
		switch c.Op {
		case OpContainsFold:
			doc = append(doc, bson.E{Key: c.Field, Value: primitive.Regex{
				Pattern: regexp.QuoteMeta(c.Value),
				Options: "i",
			}})
		default:
			doc = append(doc, bson.E{Key: c.Field, Value: c.Value})
		}
	}
	return doc
}

// Insert stores a new song as given.
func (m *Mongo) Insert(ctx context.Context, song Song) (Song, error) {
	if _, err := m.songs.InsertOne(ctx, song); err != nil {
		return Song{}, fmt.Errorf("insert song: %w", err)
	}
	return song, nil
}

// Get returns a single song by id.
func (m *Mongo) Get(ctx context.Context, id string) (Song, error) {
	var song Song
	err := m.songs.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&song)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Song{}, ErrNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// FindByTitle returns the song whose title matches case-insensitively,
// skipping excludeID when set. Returns ErrNotFound when no song matches.
func (m *Mongo) FindByTitle(ctx context.Context, title, excludeID string) (Song, error) {
	filter := bson.D{{Key: "title", Value: primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(title) + "$",
		Options: "i",
	}}}
	if excludeID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}})
	}

	var song Song
	err := m.songs.FindOne(ctx, filter).Decode(&song)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Song{}, ErrNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("find song by title: %w", err)
	}
	return song, nil
}

// List returns the page of songs described by the query.
func (m *Mongo) List(ctx context.Context, q ListQuery) ([]Song, error) {
	dir := 1
	if q.Sort.Desc {
		dir = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: q.Sort.Field, Value: dir}}).
		SetSkip(q.Skip()).
		SetLimit(q.Limit)

	if len(q.Fields) > 0 {
		projection := bson.D{}
		for _, f := range q.Fields {
			projection = append(projection, bson.E{Key: f, Value: 1})
		}
		opts = opts.SetProjection(projection)
	}

	cursor, err := m.songs.Find(ctx, filterDoc(q.Conditions), opts)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer cursor.Close(ctx)

	var songs []Song
	if err := cursor.All(ctx, &songs); err != nil {
		return nil, fmt.Errorf("decode songs: %w", err)
	}
	return songs, nil
}

// Count returns how many songs match the conditions.
func (m *Mongo) Count(ctx context.Context, conds []Condition) (int64, error) {
	total, err := m.songs.CountDocuments(ctx, filterDoc(conds))
	if err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return total, nil
}

// Update applies a partial update and returns the updated song. The revision
// counter is bumped and updatedAt refreshed on every call.
func (m *Mongo) Update(ctx context.Context, id string, changes SongUpdate) (Song, error) {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if changes.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *changes.Title})
	}
	if changes.Artist != nil {
		set = append(set, bson.E{Key: "artist", Value: *changes.Artist})
	}
	if changes.SongType != nil {
		set = append(set, bson.E{Key: "songType", Value: *changes.SongType})
	}
	if changes.Genre != nil {
		set = append(set, bson.E{Key: "genre", Value: *changes.Genre})
	}
	if changes.Album != nil {
		set = append(set, bson.E{Key: "album", Value: *changes.Album})
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.D{{Key: "rev", Value: 1}}},
	}

	var song Song
	err := m.songs.FindOneAndUpdate(
		ctx,
		bson.D{{Key: "_id", Value: id}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&song)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Song{}, ErrNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("update song: %w", err)
	}
	return song, nil
}

// Delete removes a song and returns its last-known snapshot.
func (m *Mongo) Delete(ctx context.Context, id string) (Song, error) {
	var song Song
	err := m.songs.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&song)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Song{}, ErrNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("delete song: %w", err)
	}
	return song, nil
}

// Totals computes the grand counts over the whole collection.
func (m *Mongo) Totals(ctx context.Context) (Totals, error) {
	songs, err := m.songs.CountDocuments(ctx, bson.D{})
	if err != nil {
		return Totals{}, fmt.Errorf("count songs: %w", err)
	}

	artists, err := m.songs.Distinct(ctx, "artist", bson.D{})
	if err != nil {
		return Totals{}, fmt.Errorf("distinct artists: %w", err)
	}

	genres, err := m.songs.Distinct(ctx, "genre", bson.D{})
	if err != nil {
		return Totals{}, fmt.Errorf("distinct genres: %w", err)
	}

	singles, err := m.songs.CountDocuments(ctx, bson.D{{Key: "songType", Value: TypeSingle}})
	if err != nil {
		return Totals{}, fmt.Errorf("count singles: %w", err)
	}

	albums, err := m.songs.CountDocuments(ctx, bson.D{{Key: "songType", Value: TypeAlbum}})
	if err != nil {
		return Totals{}, fmt.Errorf("count albums: %w", err)
	}

	return Totals{
		Songs:       songs,
		Artists:     int64(len(artists)),
		Genres:      int64(len(genres)),
		SingleSongs: singles,
		AlbumSongs:  albums,
	}, nil
}

func countByType(t SongType) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$songType", t}}}, 1, 0,
	}}}}}
}

// GroupByGenre groups the whole collection by genre, most songs first.
func (m *Mongo) GroupByGenre(ctx context.Context) ([]GenreAgg, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genre"},
			{Key: "totalCount", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "singleCount", Value: countByType(TypeSingle)},
			{Key: "albumCount", Value: countByType(TypeAlbum)},
			{Key: "artists", Value: bson.D{{Key: "$addToSet", Value: "$artist"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "genre", Value: "$_id"},
			{Key: "totalCount", Value: 1},
			{Key: "singleCount", Value: 1},
			{Key: "albumCount", Value: 1},
			{Key: "uniqueArtists", Value: bson.D{{Key: "$size", Value: "$artists"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "totalCount", Value: -1}}}},
	}

	var rows []GenreAgg
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("group by genre: %w", err)
	}
	return rows, nil
}

// GroupByArtist groups the whole collection by artist, most songs first.
func (m *Mongo) GroupByArtist(ctx context.Context) ([]ArtistAgg, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$artist"},
			{Key: "songCount", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "singleCount", Value: countByType(TypeSingle)},
			{Key: "albumCount", Value: countByType(TypeAlbum)},
			{Key: "genres", Value: bson.D{{Key: "$addToSet", Value: "$genre"}}},
			{Key: "songs", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: "title", Value: "$title"},
				{Key: "type", Value: "$songType"},
				{Key: "genre", Value: "$genre"},
			}}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "artist", Value: "$_id"},
			{Key: "songCount", Value: 1},
			{Key: "singleCount", Value: 1},
			{Key: "albumCount", Value: 1},
			{Key: "uniqueGenres", Value: bson.D{{Key: "$size", Value: "$genres"}}},
			{Key: "songs", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "songCount", Value: -1}}}},
	}

	var rows []ArtistAgg
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("group by artist: %w", err)
	}
	return rows, nil
}

// GroupByType groups the whole collection by song type, largest group first.
func (m *Mongo) GroupByType(ctx context.Context) ([]TypeAgg, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$songType"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "genres", Value: bson.D{{Key: "$addToSet", Value: "$genre"}}},
			{Key: "artists", Value: bson.D{{Key: "$addToSet", Value: "$artist"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "type", Value: "$_id"},
			{Key: "count", Value: 1},
			{Key: "uniqueGenres", Value: bson.D{{Key: "$size", Value: "$genres"}}},
			{Key: "uniqueArtists", Value: bson.D{{Key: "$size", Value: "$artists"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	var rows []TypeAgg
	if err := m.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("group by type: %w", err)
	}
	return rows, nil
}

func (m *Mongo) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := m.songs.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// Recent returns the n most recently created songs, newest first.
func (m *Mongo) Recent(ctx context.Context, n int) ([]Song, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(n))

	cursor, err := m.songs.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("recent songs: %w", err)
	}
	defer cursor.Close(ctx)

	var songs []Song
	if err := cursor.All(ctx, &songs); err != nil {
		return nil, fmt.Errorf("decode recent songs: %w", err)
	}
	return songs, nil
}

// CreatedRange returns the creation timestamps of the oldest and newest
// songs. Both are zero when the collection is empty.
func (m *Mongo) CreatedRange(ctx context.Context) (oldest, newest time.Time, err error) {
	var first, last Song

	err = m.songs.FindOne(ctx, bson.D{}, options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: 1}})).Decode(&first)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("oldest song: %w", err)
	}

	err = m.songs.FindOne(ctx, bson.D{}, options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&last)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("newest song: %w", err)
	}

	return first.CreatedAt, last.CreatedAt, nil
}
