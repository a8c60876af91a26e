package seed

import (
	"context"
	"fmt"
	"log"

	"ripple/internal/models"
	"ripple/internal/store"

	"go.mongodb.org/mongo-driver/mongo"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// Seed fixes the random source for reproducible runs; 0 uses the clock.
	Seed int64
}

// Seeder populates the database with generated users and posts.
type Seeder struct {
	db    *mongo.Database
	users store.UserStore
	posts store.PostStore
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *mongo.Database) *Seeder {
	return &Seeder{
		db:    db,
		users: store.NewUserStore(db),
		posts: store.NewPostStore(db),
	}
}

// ClearAll drops the seeded collections.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, name := range []string{"posts", "users"} {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("dropping %s: %w", name, err)
		}
	}
	return nil
}

// Run seeds the database per the options.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return err
		}
	}

	factory, err := NewFactory(opts.Seed)
	if err != nil {
		return err
	}

	users, err := s.seedUsers(ctx, factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	log.Printf("%d users created", len(users))

	created, err := s.seedPosts(ctx, factory, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	log.Printf("%d posts created", created)
	log.Printf("All seeded users have the password %q", DefaultPassword)

	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, factory *Factory, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := factory.BuildUser(i)
		if err := s.users.Insert(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, factory *Factory, users []*models.User, n int) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	usernames := make([]string, len(users))
	for i, u := range users {
		usernames[i] = u.Username
	}

	for i := 0; i < n; i++ {
		author := users[i%len(users)]
		post := factory.BuildPost(author, usernames)
		if err := s.posts.Insert(ctx, post); err != nil {
			return i, err
		}
	}
	return n, nil
}
