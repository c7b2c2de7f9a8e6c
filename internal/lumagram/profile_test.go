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

func profileBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"user": User{
			ID: 1, Username: "me", FullName: "Me Myself", FollowersCount: 2, PostsCount: 1,
		}})
	})
	mux.HandleFunc("/api/user/1/posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"posts": []Post{{ID: 5, ImageURL: "posts/a.jpg"}}})
	})
	mux.HandleFunc("/api/user/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"user": User{
			ID: 2, Username: "alice", IsFollowing: false, FollowersCount: 7,
		}})
	})
	mux.HandleFunc("/api/user/2/posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"posts": []Post{}})
	})
	mux.HandleFunc("/api/user/404", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"user": nil})
	})
	mux.HandleFunc("/api/follow/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "is_following": true, "followers_count": 8, "following_count": 3})
	})
	return httptest.NewServer(mux)
}

func TestProfileLoadSelf(t *testing.T) {
	srv := profileBackend(t)
	defer srv.Close()

	pc := NewProfileController(newTestClient(t, srv), zerolog.Nop())
	view, err := pc.LoadSelf(context.Background())
	require.NoError(t, err)
	assert.True(t, view.User.IsSelf)
	assert.Equal(t, "me", view.User.Username)
	require.Len(t, view.Posts, 1)
	assert.Same(t, view, pc.Current())
}

func TestProfileLoadOther(t *testing.T) {
	srv := profileBackend(t)
	defer srv.Close()

	pc := NewProfileController(newTestClient(t, srv), zerolog.Nop())
	view, err := pc.Load(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, view.User.IsSelf)
	assert.Equal(t, "alice", view.User.Username)
	assert.Empty(t, view.Posts)
}

func TestProfileLoadMissingUser(t *testing.T) {
	srv := profileBackend(t)
	defer srv.Close()

	pc := NewProfileController(newTestClient(t, srv), zerolog.Nop())
	_, err := pc.Load(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestProfileFollowUpdatesHeader(t *testing.T) {
	srv := profileBackend(t)
	defer srv.Close()

	pc := NewProfileController(newTestClient(t, srv), zerolog.Nop())
	_, err := pc.Load(context.Background(), 2)
	require.NoError(t, err)

	res, err := pc.ToggleFollow(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, res)

	cur := pc.Current()
	require.NotNil(t, cur)
	assert.True(t, cur.User.IsFollowing)
	assert.Equal(t, 8, cur.User.FollowersCount)
}

func TestProfileUpdateRejectsOverlongBio(t *testing.T) {
	srv := profileBackend(t)
	defer srv.Close()

	pc := NewProfileController(newTestClient(t, srv), zerolog.Nop())
	long := make([]byte, MaxBioLength+1)
	for i := range long {
		long[i] = 'b'
	}
	_, err := pc.Update(context.Background(), ProfileUpdate{Bio: string(long)})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bio", verr.Field)
}
