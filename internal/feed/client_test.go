package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// feedServer serves a fixed set of posts through the paginated feed API.
func feedServer(t *testing.T, total int, pageSize int, requests *atomic.Int32) *httptest.Server {
	t.Helper()

	posts := make([]*models.Post, total)
	for i := range posts {
		posts[i] = &models.Post{
			ID:         primitive.NewObjectID(),
			AuthorName: "alice",
			Text:       fmt.Sprintf("post %d", i),
		}
	}
	totalPages := (total + pageSize - 1) / pageSize

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		require.Equal(t, "/api/posts", r.URL.Path)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		start := (page - 1) * pageSize
		end := start + pageSize
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		_ = json.NewEncoder(w).Encode(models.FeedPage{
			Posts:       posts[start:end],
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalPosts:  int64(total),
		})
	}))
}

func TestClientLoadMore(t *testing.T) {
	srv := feedServer(t, 12, 5, nil)
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	loaded, err := c.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Len(t, c.Window().Posts(), 5)
	assert.Equal(t, 1, c.Window().CurrentPage())

	loaded, err = c.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Len(t, c.Window().Posts(), 10)

	loaded, err = c.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Len(t, c.Window().Posts(), 12)
	assert.False(t, c.Window().HasMore())

	// All pages loaded; further calls are no-ops.
	loaded, err = c.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Len(t, c.Window().Posts(), 12)
}

func TestClientLoadMoreSingleFlight(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		_ = json.NewEncoder(w).Encode(models.FeedPage{
			Posts:       []*models.Post{{ID: primitive.NewObjectID(), Text: "only"}},
			CurrentPage: 1,
			TotalPages:  1,
			TotalPosts:  1,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	var wg sync.WaitGroup
	results := make([]bool, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loaded, err := c.LoadMore(context.Background())
			assert.NoError(t, err)
			results[i] = loaded
		}(i)
	}

	// Let the in-flight request finish once all goroutines had a chance to
	// pile up behind it.
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), requests.Load(), "concurrent LoadMore must collapse into one request")
	loadedCount := 0
	for _, r := range results {
		if r {
			loadedCount++
		}
	}
	assert.Equal(t, 1, loadedCount)
	assert.Len(t, c.Window().Posts(), 1)
}

func TestClientLoadMoreErrors(t *testing.T) {
	t.Run("server error surfaces and does not advance", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		loaded, err := c.LoadMore(context.Background())
		assert.Error(t, err)
		assert.False(t, loaded)
		assert.Equal(t, 0, c.Window().CurrentPage())
	})

	t.Run("retry after error succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(models.FeedPage{
				Posts:       []*models.Post{{ID: primitive.NewObjectID(), Text: "ok"}},
				CurrentPage: 1,
				TotalPages:  1,
				TotalPosts:  1,
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.LoadMore(context.Background())
		require.Error(t, err)

		loaded, err := c.LoadMore(context.Background())
		require.NoError(t, err)
		assert.True(t, loaded)
		assert.Len(t, c.Window().Posts(), 1)
	})
}

func TestClientWindowIsSnapshot(t *testing.T) {
	srv := feedServer(t, 12, 5, nil)
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)
	before := c.Window()
	require.Len(t, before.Posts(), 5)

	// A later load must not show up in an already taken snapshot.
	_, err = c.LoadMore(ctx)
	require.NoError(t, err)
	assert.Len(t, before.Posts(), 5)
	assert.Equal(t, 1, before.CurrentPage())
	assert.Len(t, c.Window().Posts(), 10)

	// Mutating a snapshot must not reach the client's state.
	before.Prepend(&models.Post{ID: primitive.NewObjectID(), Text: "local only"})
	before.Remove(before.Posts()[1].ID.Hex())
	assert.Len(t, c.Window().Posts(), 10)
	assert.Equal(t, int64(12), c.Window().TotalPosts())
}

func TestClientVisible(t *testing.T) {
	srv := feedServer(t, 3, 5, nil)
	defer srv.Close()

	c := NewClient(srv.URL, WithPageSize(5))
	_, err := c.LoadMore(context.Background())
	require.NoError(t, err)

	got := c.Visible("post 1", FilterAll)
	require.Len(t, got, 1)
	assert.Equal(t, "post 1", got[0].Text)
}
