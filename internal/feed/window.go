// Package feed implements the client-side feed state: a loaded window of
// posts, local filtering and ordering, and an HTTP client for loading pages.
package feed

import (
	"ripple/internal/models"
)

// Window is the contiguous slice of the feed a client has loaded so far.
// Mutations reconcile local state with server responses without refetching.
type Window struct {
	posts       []*models.Post
	currentPage int
	totalPages  int
	totalPosts  int64
}

// NewWindow returns an empty window.
func NewWindow() *Window {
	return &Window{}
}

// Append merges the next page into the window. Posts already present (by id)
// are skipped so an overlapping page cannot introduce duplicates.
func (w *Window) Append(page *models.FeedPage) {
	if page == nil {
		return
	}
	seen := make(map[string]struct{}, len(w.posts))
	for _, p := range w.posts {
		seen[p.ID.Hex()] = struct{}{}
	}
	for _, p := range page.Posts {
		if _, ok := seen[p.ID.Hex()]; ok {
			continue
		}
		w.posts = append(w.posts, p)
	}
	w.currentPage = page.CurrentPage
	w.totalPages = page.TotalPages
	w.totalPosts = page.TotalPosts
}

// Prepend puts a newly created post at the front of the window.
func (w *Window) Prepend(post *models.Post) {
	if post == nil {
		return
	}
	w.posts = append([]*models.Post{post}, w.posts...)
	w.totalPosts++
}

// Replace swaps the stored post with the same id for the given one. Posts
// outside the window are ignored.
func (w *Window) Replace(post *models.Post) {
	if post == nil {
		return
	}
	for i, p := range w.posts {
		if p.ID == post.ID {
			w.posts[i] = post
			return
		}
	}
}

// Remove drops the post with the given hex id from the window.
func (w *Window) Remove(id string) {
	for i, p := range w.posts {
		if p.ID.Hex() == id {
			w.posts = append(w.posts[:i], w.posts[i+1:]...)
			if w.totalPosts > 0 {
				w.totalPosts--
			}
			return
		}
	}
}

// snapshot returns a copy of the window with its own posts slice, so the
// copy is unaffected by later mutations of the original and vice versa.
func (w *Window) snapshot() *Window {
	cp := *w
	cp.posts = append([]*models.Post(nil), w.posts...)
	return &cp
}

// Posts returns the loaded posts in fetch order.
func (w *Window) Posts() []*models.Post {
	return w.posts
}

// CurrentPage returns the last page merged into the window, 0 when empty.
func (w *Window) CurrentPage() int { return w.currentPage }

// TotalPages returns the page count reported by the last response.
func (w *Window) TotalPages() int { return w.totalPages }

// TotalPosts returns the post count reported by the last response, adjusted
// for local prepends and removals.
func (w *Window) TotalPosts() int64 { return w.totalPosts }

// HasMore reports whether pages beyond the current one remain.
func (w *Window) HasMore() bool {
	return w.currentPage == 0 || w.currentPage < w.totalPages
}
