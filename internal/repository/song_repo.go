package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkdirlove/song-server/internal/domain"
	"github.com/mkdirlove/song-server/pkg/errors"
)

type songRepository struct {
	col *mongo.Collection
}

// NewSongRepository creates the mongo-backed song repository.
func NewSongRepository(db *mongo.Database) SongRepository {
	return &songRepository{col: db.Collection(colSongs)}
}

func (r *songRepository) Insert(ctx context.Context, song *domain.Song) error {
	if song == nil {
		return errors.ErrRequestParseError
	}

	_, err := r.col.InsertOne(ctx, song.Document())
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrSongExists
		}
		return errors.ErrDBOperationFailure.WithError(err)
	}
	return nil
}

func (r *songRepository) List(ctx context.Context, filterExplicit bool, page, pageSize int) ([]*domain.Song, error) {
	if page < 1 {
		return nil, errors.ErrInvalidPageNumber
	}

	filter := bson.M{}
	if filterExplicit {
		filter["is_explicit"] = bson.M{"$ne": true}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: domain.FieldID, Value: 1}}).
		SetSkip(pageSkip(page, pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.ErrDBOperationFailure.WithError(err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.ErrDBOperationFailure.WithError(err)
	}

	songs := make([]*domain.Song, 0, len(docs))
	for _, doc := range docs {
		if song := domain.SongFromDocument(doc); song != nil {
			songs = append(songs, song)
		}
	}
	return songs, nil
}

func (r *songRepository) IncrementCounter(ctx context.Context, songID, counterField string) error {
	oid, err := primitive.ObjectIDFromHex(songID)
	if err != nil {
		// An id the storage layer could never have assigned.
		return errors.ErrSongNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$inc": bson.M{counterField: 1}})
	if err != nil {
		return errors.ErrDBOperationFailure.WithError(err)
	}
	if res.MatchedCount == 0 {
		return errors.ErrSongNotFound
	}
	return nil
}

func (r *songRepository) Remove(ctx context.Context, name, sourceURL string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"name": name, "source_url": sourceURL})
	if err != nil {
		return errors.ErrDBOperationFailure.WithError(err)
	}
	if res.DeletedCount == 0 {
		return errors.ErrSongNotFound
	}
	return nil
}
