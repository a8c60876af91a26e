package feed

import (
	"sort"
	"strings"

	"ripple/internal/models"
)

// Filter selects the ordering applied to the visible feed.
type Filter string

const (
	// FilterAll keeps fetch order.
	FilterAll Filter = "all"
	// FilterLiked orders by like count, most liked first.
	FilterLiked Filter = "liked"
	// FilterCommented orders by comment count, most discussed first.
	FilterCommented Filter = "commented"
	// FilterForYou orders by an engagement score of 2*likes + comments.
	FilterForYou Filter = "forYou"
)

// Visible returns the posts matching the search query, ordered per the
// filter. The input slice is never modified and nothing is fetched; ties
// keep their fetch order.
func Visible(posts []*models.Post, query string, filter Filter) []*models.Post {
	out := make([]*models.Post, 0, len(posts))

	q := strings.ToLower(strings.TrimSpace(query))
	for _, p := range posts {
		if q == "" ||
			strings.Contains(strings.ToLower(p.AuthorName), q) ||
			strings.Contains(strings.ToLower(p.Text), q) {
			out = append(out, p)
		}
	}

	score := scoreFor(filter)
	if score == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) > score(out[j])
	})
	return out
}

func scoreFor(filter Filter) func(*models.Post) int {
	switch filter {
	case FilterLiked:
		return func(p *models.Post) int { return p.LikesCount() }
	case FilterCommented:
		return func(p *models.Post) int { return p.CommentsCount() }
	case FilterForYou:
		return func(p *models.Post) int { return 2*p.LikesCount() + p.CommentsCount() }
	default:
		return nil
	}
}
