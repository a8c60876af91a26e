// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password every seeded user gets.
const DefaultPassword = "SeedPass123!"

// Factory builds domain entities with realistic fake content.
type Factory struct {
	rng *rand.Rand
	// one hash shared by all seeded users, bcrypt is too slow to run per user
	passwordHash string
}

// NewFactory creates a Factory. Pass 0 to seed from the current time.
func NewFactory(seedValue int64) (*Factory, error) {
	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}
	gofakeit.Seed(seedValue)

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hashing seed password: %w", err)
	}

	return &Factory{
		rng:          rand.New(rand.NewSource(seedValue)),
		passwordHash: string(hash),
	}, nil
}

// BuildUser constructs an unsaved user with a unique-ish username.
func (f *Factory) BuildUser(n int) *models.User {
	username := fmt.Sprintf("%s_%s%d",
		strings.ToLower(gofakeit.FirstName()),
		strings.ToLower(gofakeit.LastName()),
		n)

	return &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password: f.passwordHash,
	}
}

// BuildPost constructs an unsaved post by the given author, liked and
// commented on by a random subset of the other usernames.
func (f *Factory) BuildPost(author *models.User, usernames []string) *models.Post {
	post := &models.Post{
		AuthorID:   author.ID.Hex(),
		AuthorName: author.Username,
		Text:       gofakeit.Sentence(4 + f.rng.Intn(12)),
		Likes:      []string{},
		Comments:   []models.Comment{},
	}

	// About a third of posts carry an image.
	if f.rng.Intn(3) == 0 {
		post.ImageRef = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().UTC().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	post.UpdatedAt = post.CreatedAt

	for _, name := range f.pickUsernames(usernames, author.Username, 6) {
		post.Likes = append(post.Likes, name)
	}
	for _, name := range f.pickUsernames(usernames, author.Username, 3) {
		post.Comments = append(post.Comments, models.Comment{
			AuthorName: name,
			Text:       gofakeit.Sentence(2 + f.rng.Intn(8)),
			CreatedAt:  post.CreatedAt.Add(time.Duration(1+f.rng.Intn(48)) * time.Hour),
		})
	}

	return post
}

// pickUsernames picks up to max random usernames, excluding the author.
func (f *Factory) pickUsernames(usernames []string, exclude string, max int) []string {
	candidates := make([]string, 0, len(usernames))
	for _, name := range usernames {
		if name != exclude {
			candidates = append(candidates, name)
		}
	}
	f.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	n := f.rng.Intn(max + 1)
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}
