package lumagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pic.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpegdata"), 0o644))
	return path
}

func TestCreatePublishPost(t *testing.T) {
	var gotKind, gotCaption, gotAllow string
	var gotImage bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/create", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotKind = r.FormValue("kind")
		gotCaption = r.FormValue("caption")
		gotAllow = r.FormValue("allow_comments")
		_, _, err := r.FormFile("image")
		gotImage = err == nil
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"type": "post",
			"post": Post{ID: 42, ImageURL: "posts/x.jpg"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cc := NewCreateController(newTestClient(t, srv), zerolog.Nop())
	res, err := cc.Publish(context.Background(), CreateRequest{
		Kind:          KindPost,
		Caption:       "sunset <b>vibes</b>",
		AllowComments: true,
		ImagePath:     writeTempImage(t),
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "post", res.Type)
	assert.Equal(t, int64(42), res.Post.ID)

	assert.Equal(t, "post", gotKind)
	assert.Equal(t, "sunset bvibes/b", gotCaption, "caption is sanitized before upload")
	assert.Equal(t, "1", gotAllow)
	assert.True(t, gotImage)
}

func TestCreateStoryDisablesComments(t *testing.T) {
	var gotAllow, gotKind string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/create", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotKind = r.FormValue("kind")
		gotAllow = r.FormValue("allow_comments")
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"type":  "story",
			"story": Story{ID: 7, ImageURL: "stories/s.jpg"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cc := NewCreateController(newTestClient(t, srv), zerolog.Nop())
	res, err := cc.Publish(context.Background(), CreateRequest{
		Kind:          KindStory,
		AllowComments: true, // must be overridden for stories
		ImagePath:     writeTempImage(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "story", res.Type)
	assert.Equal(t, "story", gotKind)
	assert.Equal(t, "0", gotAllow)
}

func TestCreateValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be reached on local validation failure")
	}))
	defer srv.Close()

	cc := NewCreateController(newTestClient(t, srv), zerolog.Nop())

	t.Run("Unknown kind", func(t *testing.T) {
		_, err := cc.Publish(context.Background(), CreateRequest{Kind: "reel", ImagePath: "x.jpg"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "kind", verr.Field)
	})

	t.Run("Missing image path", func(t *testing.T) {
		_, err := cc.Publish(context.Background(), CreateRequest{Kind: KindPost})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "image", verr.Field)
	})

	t.Run("Nonexistent image file", func(t *testing.T) {
		_, err := cc.Publish(context.Background(), CreateRequest{Kind: KindPost, ImagePath: "/no/such/file.jpg"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "image", verr.Field)
	})
}
