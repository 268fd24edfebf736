package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkdirlove/song-server/internal/domain"
	"github.com/mkdirlove/song-server/pkg/errors"
)

type userRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates the mongo-backed user repository.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{col: db.Collection(colUsers)}
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.ErrRequestParseError
	}

	_, err := r.col.InsertOne(ctx, user.Document())
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.ErrUsernameExists
		}
		return errors.ErrDBOperationFailure.WithError(err)
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var doc bson.M
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.ErrDBOperationFailure.WithError(err)
	}
	return domain.UserFromDocument(doc), nil
}

func (r *userRepository) List(ctx context.Context, adminsOnly bool, page, pageSize int) ([]*domain.User, error) {
	if page < 1 {
		return nil, errors.ErrInvalidPageNumber
	}

	filter := bson.M{}
	if adminsOnly {
		filter["user_role"] = int(domain.RoleAdmin)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}, {Key: domain.FieldID, Value: 1}}).
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

	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		if user := domain.UserFromDocument(doc); user != nil {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *userRepository) Remove(ctx context.Context, username string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return errors.ErrDBOperationFailure.WithError(err)
	}
	if res.DeletedCount == 0 {
		return errors.ErrInvalidUserDetails
	}
	return nil
}

func (r *userRepository) HasAdmin(ctx context.Context) (bool, error) {
	count, err := r.col.CountDocuments(ctx,
		bson.M{"user_role": int(domain.RoleAdmin)},
		options.Count().SetLimit(1))
	if err != nil {
		return false, errors.ErrDBOperationFailure.WithError(err)
	}
	return count > 0, nil
}
