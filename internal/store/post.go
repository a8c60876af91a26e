package store

import (
	"context"
	"errors"
	"time"

	"ripple/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostStore defines the interface for post data operations
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindNewest(ctx context.Context, limit, offset int64) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, text string) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, id primitive.ObjectID, voter string) (bool, error)
	RemoveLike(ctx context.Context, id primitive.ObjectID, voter string) (bool, error)
	AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error)
}

// postStore implements PostStore against MongoDB.
type postStore struct {
	col *mongo.Collection
}

// NewPostStore creates a new post store backed by the given database.
func NewPostStore(db *mongo.Database) PostStore {
	return &postStore{col: db.Collection(postsCollection)}
}

func (s *postStore) Insert(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = now
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	res, err := s.col.InsertOne(ctx, post)
	if err != nil {
		return err
	}
	post.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *postStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *postStore) FindNewest(ctx context.Context, limit, offset int64) ([]*models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *postStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}

func (s *postStore) UpdateText(ctx context.Context, id primitive.ObjectID, text string) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"text":      text,
		"updatedAt": time.Now().UTC(),
	}}

	var post models.Post
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *postStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike records a like as an add-if-absent set update. The filter excludes
// documents already containing the voter, so concurrent toggles from the same
// voter cannot produce duplicate entries. Returns false when the voter was
// already present (or the post is missing; callers disambiguate with FindByID).
func (s *postStore) AddLike(ctx context.Context, id primitive.ObjectID, voter string) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "likes": bson.M{"$ne": voter}},
		bson.M{
			"$addToSet": bson.M{"likes": voter},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RemoveLike removes a like as a remove-if-present set update. Returns false
// when the voter was not in the like set.
func (s *postStore) RemoveLike(ctx context.Context, id primitive.ObjectID, voter string) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "likes": voter},
		bson.M{
			"$pull": bson.M{"likes": voter},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *postStore) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	var post models.Post
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}
