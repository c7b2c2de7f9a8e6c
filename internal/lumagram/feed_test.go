package lumagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedBackend(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	likeCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/feed", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"posts": []Post{
			{ID: 1, Username: "alice", LikesCount: 3, CommentsCount: 4, Comments: []Comment{
				{ID: 11, Username: "bob", CommentText: "nice"},
				{ID: 12, Username: "carol", CommentText: "wow"},
				{ID: 13, Username: "dave", CommentText: "cool"},
			}},
			{ID: 2, Username: "bob", LikesCount: 0},
		}})
	})
	mux.HandleFunc("/api/posts/1/like", func(w http.ResponseWriter, r *http.Request) {
		likeCalls++
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "is_liked": true, "likes_count": 4})
	})
	mux.HandleFunc("/api/posts/1/comment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success":        true,
			"comment":        Comment{ID: 99, Username: "me", CommentText: "fresh"},
			"comments_count": 5,
		})
	})
	return httptest.NewServer(mux), &likeCalls
}

func TestFeedLoadAndLike(t *testing.T) {
	srv, likeCalls := feedBackend(t)
	defer srv.Close()

	fc := NewFeedController(newTestClient(t, srv), zerolog.Nop())
	posts, err := fc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	res, err := fc.ToggleLike(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsLiked)
	assert.Equal(t, 1, *likeCalls)

	// cache reflects the toggle
	p, ok := fc.Post(1)
	require.True(t, ok)
	assert.True(t, p.IsLiked)
	assert.Equal(t, 4, p.LikesCount)
}

func TestFeedCommentPrependsAndTrims(t *testing.T) {
	srv, _ := feedBackend(t)
	defer srv.Close()

	fc := NewFeedController(newTestClient(t, srv), zerolog.Nop())
	_, err := fc.Load(context.Background())
	require.NoError(t, err)

	res, err := fc.AddComment(context.Background(), 1, "  fresh  ")
	require.NoError(t, err)
	require.NotNil(t, res)

	p, ok := fc.Post(1)
	require.True(t, ok)
	require.Len(t, p.Comments, FeedPreviewComments, "preview stays capped")
	assert.Equal(t, "fresh", p.Comments[0].CommentText, "new comment leads the preview")
	assert.Equal(t, 5, p.CommentsCount)
	assert.True(t, fc.HasMoreComments(p))
}

func TestFeedCommentRejectsEmpty(t *testing.T) {
	srv, _ := feedBackend(t)
	defer srv.Close()

	fc := NewFeedController(newTestClient(t, srv), zerolog.Nop())
	_, err := fc.AddComment(context.Background(), 1, "   ")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestFeedLikeRollsBackOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/feed", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"posts": []Post{{ID: 1, Username: "alice", LikesCount: 3}}})
	})
	mux.HandleFunc("/api/posts/1/like", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"error": "Failed to update like"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fc := NewFeedController(newTestClient(t, srv), zerolog.Nop())
	_, err := fc.Load(context.Background())
	require.NoError(t, err)

	_, err = fc.ToggleLike(context.Background(), 1)
	require.Error(t, err)

	p, ok := fc.Post(1)
	require.True(t, ok)
	assert.False(t, p.IsLiked, "optimistic like must be rolled back")
	assert.Equal(t, 3, p.LikesCount)
}

func TestFeedDuplicateLikeSuppressed(t *testing.T) {
	block := make(chan struct{})
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts/1/like", func(w http.ResponseWriter, r *http.Request) {
		calls++
		<-block
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "is_liked": true, "likes_count": 1})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fc := NewFeedController(newTestClient(t, srv), zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := fc.ToggleLike(context.Background(), 1)
		assert.NoError(t, err)
	}()

	// wait until the first toggle is inside the request
	require.Eventually(t, func() bool { return calls == 1 }, testWait, testTick)

	res, err := fc.ToggleLike(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, res, "second toggle while in flight is a no-op")

	close(block)
	<-done
	assert.Equal(t, 1, calls)
}
