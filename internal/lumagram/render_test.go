package lumagram

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func renderToString(fn func(r *Renderer)) string {
	color.NoColor = true
	var buf bytes.Buffer
	fn(NewRenderer(&buf, "http://localhost:5000"))
	return buf.String()
}

func TestRenderFeedPost(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	post := Post{
		ID:            1,
		Username:      "alice",
		FullName:      "Alice Example",
		ImageURL:      "posts/a.jpg",
		Caption:       "golden hour",
		LikesCount:    1234,
		CommentsCount: 5,
		IsLiked:       true,
		CreatedAt:     "2026-08-31 11:30:00",
		Comments: []Comment{
			{Username: "bob", CommentText: "nice"},
		},
	}

	out := renderToString(func(r *Renderer) { r.FeedPost(post, now) })
	assert.Contains(t, out, "@alice")
	assert.Contains(t, out, "30 MINUTES AGO")
	assert.Contains(t, out, "http://localhost:5000/assets/images/posts/a.jpg")
	assert.Contains(t, out, "golden hour")
	assert.Contains(t, out, "1,234 likes")
	assert.Contains(t, out, "bob nice")
	assert.Contains(t, out, "View all 5 comments")
}

func TestRenderEmptyStates(t *testing.T) {
	out := renderToString(func(r *Renderer) { r.Feed(nil, time.Now()) })
	assert.Contains(t, out, "No posts yet")

	out = renderToString(func(r *Renderer) { r.StoryTray(nil, nil, time.Now()) })
	assert.Contains(t, out, "Your story")
	assert.Contains(t, out, "No stories")

	out = renderToString(func(r *Renderer) { r.Conversations(nil, 0, time.Now()) })
	assert.Contains(t, out, "No conversations")

	out = renderToString(func(r *Renderer) { r.People(nil, false) })
	assert.Contains(t, out, "No suggestions")
}

func TestRenderProfileUsesDefaultPicture(t *testing.T) {
	view := &ProfileView{User: User{ID: 1, Username: "me", IsSelf: true}}
	out := renderToString(func(r *Renderer) { r.Profile(view, time.Now()) })
	assert.Contains(t, out, "profiles/default.jpg")
	assert.Contains(t, out, "(you)")
	assert.Contains(t, out, "No posts yet")
}

func TestRenderSession(t *testing.T) {
	out := renderToString(func(r *Renderer) { r.Session(nil) })
	assert.Contains(t, out, "Not logged in")

	out = renderToString(func(r *Renderer) {
		r.Session(&SessionInfo{LoggedIn: true, UserID: 3, Username: "alice"})
	})
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "#3")
}
