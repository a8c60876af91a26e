// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a feed item in the Ripple application. Likes and comments
// are embedded in the post document so every engagement update is a
// single-document write.
type Post struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID   string             `bson:"userId" json:"user_id"`
	AuthorName string             `bson:"username" json:"username"`
	Text       string             `bson:"text" json:"text"`
	// ImageRef is a relative path under /uploads; empty for text-only posts.
	// There is no image replacement operation, so it never changes after creation.
	ImageRef  string    `bson:"imageUrl" json:"image_url"`
	Likes     []string  `bson:"likes" json:"likes"`
	Comments  []Comment `bson:"comments" json:"comments"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// Comment is an embedded comment on a post. Comments are append-only; they
// are never edited or deleted once added.
type Comment struct {
	AuthorName string    `bson:"username" json:"username"`
	Text       string    `bson:"text" json:"text"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
}

// LikesCount returns the number of likes on the post.
func (p *Post) LikesCount() int { return len(p.Likes) }

// CommentsCount returns the number of comments on the post.
func (p *Post) CommentsCount() int { return len(p.Comments) }

// LikedBy reports whether the given username is in the post's like set.
func (p *Post) LikedBy(username string) bool {
	for _, name := range p.Likes {
		if name == username {
			return true
		}
	}
	return false
}

// FeedPage is one page of the newest-first feed.
type FeedPage struct {
	Posts       []*Post `json:"posts"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalPosts  int64   `json:"totalPosts"`
}
