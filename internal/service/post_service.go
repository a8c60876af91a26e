// Package service implements the application's business logic over the store layer.
package service

import (
	"context"
	"errors"
	"time"

	"ripple/internal/models"
	"ripple/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultPage and DefaultPageSize are applied when the request omits
	// pagination parameters or supplies non-positive values.
	DefaultPage     = 1
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// PostService implements create/list/edit/delete/like/comment against the post store.
type PostService struct {
	posts store.PostStore
}

// CreatePostInput carries the fields for a new post. AuthorID and AuthorName
// come from the authenticated session, never from client-supplied body fields.
type CreatePostInput struct {
	AuthorID   string
	AuthorName string
	Text       string
	ImageRef   string
}

// NewPostService creates a new post service.
func NewPostService(posts store.PostStore) *PostService {
	return &PostService{posts: posts}
}

// CreatePost persists a new post with empty likes and comments. A post must
// carry text, an image, or both.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Text == "" && in.ImageRef == "" {
		return nil, models.NewValidationError("Text or image is required")
	}

	post := &models.Post{
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Text:       in.Text,
		ImageRef:   in.ImageRef,
		Likes:      []string{},
		Comments:   []models.Comment{},
	}
	if err := s.posts.Insert(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns one page of the feed, newest first. Non-positive page and
// limit values are clamped to the defaults; limit is capped at MaxPageSize.
// Offset pagination is not stable under concurrent writes: a post inserted
// between two page fetches may shift the boundary by one item.
func (s *PostService) ListPosts(ctx context.Context, page, limit int) (*models.FeedPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, err
	}

	offset := int64(page-1) * int64(limit)
	posts, err := s.posts.FindNewest(ctx, int64(limit), offset)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &models.FeedPage{
		Posts:       posts,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalPosts:  total,
	}, nil
}

// GetPost fetches a single post by id.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	id, err := s.parsePostID(postID)
	if err != nil {
		return nil, err
	}
	return s.findPost(ctx, id, postID)
}

// EditText overwrites the post's text. Only the owner may edit, and only the
// text field changes; likes, comments and the image are untouched.
func (s *PostService) EditText(ctx context.Context, postID, requesterID, text string) (*models.Post, error) {
	if text == "" {
		return nil, models.NewValidationError("Text is required to edit post")
	}

	id, err := s.parsePostID(postID)
	if err != nil {
		return nil, err
	}

	post, err := s.findPost(ctx, id, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requesterID {
		return nil, models.NewForbiddenError("Not authorized to edit this post")
	}

	updated, err := s.posts.UpdateText(ctx, id, text)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePost removes the post permanently. Owner-only; no soft delete.
func (s *PostService) DeletePost(ctx context.Context, postID, requesterID string) error {
	id, err := s.parsePostID(postID)
	if err != nil {
		return err
	}

	post, err := s.findPost(ctx, id, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID {
		return models.NewForbiddenError("Not authorized to delete this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return err
	}
	return nil
}

// ToggleLike flips the voter's membership in the post's like set. The store
// performs the flip as an atomic add-if-absent / remove-if-present update, so
// concurrent toggles from the same voter converge to set semantics.
func (s *PostService) ToggleLike(ctx context.Context, postID, voterName string) (*models.Post, error) {
	if voterName == "" {
		return nil, models.NewValidationError("Username required")
	}

	id, err := s.parsePostID(postID)
	if err != nil {
		return nil, err
	}

	removed, err := s.posts.RemoveLike(ctx, id, voterName)
	if err != nil {
		return nil, err
	}
	if !removed {
		// Either the voter had not liked the post yet, or the post is
		// missing; the final fetch distinguishes the two.
		if _, err := s.posts.AddLike(ctx, id, voterName); err != nil {
			return nil, err
		}
	}

	return s.findPost(ctx, id, postID)
}

// AddComment appends a comment to the post. Comments are append-only and are
// validated only for presence of both fields.
func (s *PostService) AddComment(ctx context.Context, postID, authorName, text string) (*models.Post, error) {
	if authorName == "" || text == "" {
		return nil, models.NewValidationError("Username & text required")
	}

	id, err := s.parsePostID(postID)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.AppendComment(ctx, id, models.Comment{
		AuthorName: authorName,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// parsePostID converts the route parameter into an ObjectID. Malformed ids
// cannot refer to any post, so they map to not-found rather than a server error.
func (s *PostService) parsePostID(postID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return primitive.NilObjectID, models.NewNotFoundError("Post", postID)
	}
	return id, nil
}

func (s *PostService) findPost(ctx context.Context, id primitive.ObjectID, postID string) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}
