package lumagram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// peopleBackend serves `total` suggestions across pages of PeoplePerPage.
func peopleBackend(t *testing.T, total int, failFollow bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/people-you-may-know", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		require.Equal(t, PeoplePerPage, perPage)

		start := (page - 1) * perPage
		users := []User{}
		for i := start; i < start+perPage && i < total; i++ {
			users = append(users, User{
				ID:             int64(i + 1),
				Username:       fmt.Sprintf("user%d", i+1),
				FollowersCount: 10,
			})
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"users": users, "page": page, "per_page": perPage})
	})
	mux.HandleFunc("/api/follow/", func(w http.ResponseWriter, r *http.Request) {
		if failFollow {
			writeJSON(t, w, http.StatusInternalServerError, map[string]any{"error": "Failed to update follow state"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "is_following": true, "followers_count": 11, "following_count": 1})
	})
	return httptest.NewServer(mux)
}

func TestPeoplePagination(t *testing.T) {
	srv := peopleBackend(t, 30, false)
	defer srv.Close()

	pc := NewPeopleController(newTestClient(t, srv), zerolog.Nop())
	users, err := pc.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, PeoplePerPage)
	assert.False(t, pc.Exhausted())

	users, err = pc.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2*PeoplePerPage)
	assert.False(t, pc.Exhausted())

	// third page is short (30 - 24 = 6), marking the list done
	users, err = pc.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 30)
	assert.True(t, pc.Exhausted())

	// further calls are no-ops
	users, err = pc.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 30)
}

func TestPeopleShortFirstPageExhausts(t *testing.T) {
	srv := peopleBackend(t, 5, false)
	defer srv.Close()

	pc := NewPeopleController(newTestClient(t, srv), zerolog.Nop())
	users, err := pc.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 5)
	assert.True(t, pc.Exhausted())
}

func TestPeoplePageCounterRollsBackOnFailure(t *testing.T) {
	fail := true
	var pagesRequested []int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/people-you-may-know", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pagesRequested = append(pagesRequested, page)
		if page > 1 && fail {
			writeJSON(t, w, http.StatusInternalServerError, map[string]any{"error": "boom"})
			return
		}
		users := make([]User, PeoplePerPage)
		for i := range users {
			users[i] = User{ID: int64((page-1)*PeoplePerPage + i + 1)}
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"users": users, "page": page, "per_page": PeoplePerPage})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pc := NewPeopleController(newTestClient(t, srv), zerolog.Nop())
	_, err := pc.Load(context.Background())
	require.NoError(t, err)

	_, err = pc.LoadMore(context.Background())
	require.Error(t, err)

	// the failed page is re-requested, not skipped
	fail = false
	users, err := pc.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2*PeoplePerPage)
	assert.Equal(t, []int{1, 2, 2}, pagesRequested)
}

func TestPeopleFollowUpdatesCard(t *testing.T) {
	srv := peopleBackend(t, 3, false)
	defer srv.Close()

	pc := NewPeopleController(newTestClient(t, srv), zerolog.Nop())
	_, err := pc.Load(context.Background())
	require.NoError(t, err)

	res, err := pc.ToggleFollow(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsFollowing)

	users := pc.Users()
	assert.True(t, users[1].IsFollowing)
	assert.Equal(t, 11, users[1].FollowersCount)
}

func TestPeopleFollowRollsBackOnFailure(t *testing.T) {
	srv := peopleBackend(t, 3, true)
	defer srv.Close()

	pc := NewPeopleController(newTestClient(t, srv), zerolog.Nop())
	_, err := pc.Load(context.Background())
	require.NoError(t, err)

	before := pc.Users()[1]
	_, err = pc.ToggleFollow(context.Background(), 2)
	require.Error(t, err)

	after := pc.Users()[1]
	assert.Equal(t, before.IsFollowing, after.IsFollowing, "optimistic flip must be rolled back")
	assert.Equal(t, before.FollowersCount, after.FollowersCount)
}
