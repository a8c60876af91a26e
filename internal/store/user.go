package store

import (
	"context"
	"errors"
	"time"

	"ripple/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore defines the interface for user data operations
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type userStore struct {
	col *mongo.Collection
}

// NewUserStore creates a new user store backed by the given database.
func NewUserStore(db *mongo.Database) UserStore {
	return &userStore{col: db.Collection(usersCollection)}
}

func (s *userStore) Insert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *userStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail returns (nil, nil) when no user has the given email; callers
// use this for existence checks during signup.
func (s *userStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.findOne(ctx, bson.M{"email": email})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// FindByUsername returns (nil, nil) when no user has the given username.
func (s *userStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.findOne(ctx, bson.M{"username": username})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func (s *userStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
