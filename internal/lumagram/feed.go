// Package lumagram implements the home feed.
//
// This file holds the feed controller: loading posts, toggling likes,
// and adding comments with duplicate-action suppression.
package lumagram

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// FeedPreviewComments is how many recent comments a feed card shows
// before collapsing the rest behind a view-all affordance.
const FeedPreviewComments = 3

// FeedController manages the home feed state.
type FeedController struct {
	client *Client
	guard  *InflightGuard
	log    zerolog.Logger

	mu    sync.Mutex
	posts []Post
	gen   Generation
}

// NewFeedController builds a feed controller over the given client.
func NewFeedController(client *Client, log zerolog.Logger) *FeedController {
	return &FeedController{
		client: client,
		guard:  NewInflightGuard(),
		log:    log.With().Str("component", "feed").Logger(),
	}
}

// Load fetches the feed and replaces the cached posts. A response from a
// load that was superseded by a newer one is discarded.
func (f *FeedController) Load(ctx context.Context) ([]Post, error) {
	gen := f.gen.Bump()
	posts, err := f.client.Feed(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.gen.IsCurrent(gen) {
		return f.clonePosts(), nil
	}
	f.posts = posts
	return f.clonePosts(), nil
}

// Posts returns a copy of the cached feed.
func (f *FeedController) Posts() []Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clonePosts()
}

func (f *FeedController) clonePosts() []Post {
	out := make([]Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// Post returns the cached post with the given id.
func (f *FeedController) Post(postID int64) (Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.ID == postID {
			return p, true
		}
	}
	return Post{}, false
}

// ToggleLike flips the viewer's like on a post. The card is patched
// optimistically, then reconciled against the response, or rolled back
// if the request fails. While a toggle for the same post is still in
// flight, further toggles are ignored.
func (f *FeedController) ToggleLike(ctx context.Context, postID int64) (*LikeResult, error) {
	if !f.guard.Begin(GuardLike, postID) {
		return nil, nil
	}
	defer f.guard.End(GuardLike, postID)

	f.mu.Lock()
	idx := -1
	var prevLiked bool
	var prevCount int
	for i := range f.posts {
		if f.posts[i].ID == postID {
			idx = i
			prevLiked = f.posts[i].IsLiked
			prevCount = f.posts[i].LikesCount
			f.posts[i].IsLiked = !prevLiked
			if prevLiked {
				f.posts[i].LikesCount--
			} else {
				f.posts[i].LikesCount++
			}
			break
		}
	}
	f.mu.Unlock()

	res, err := f.client.ToggleLike(ctx, postID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		if idx >= 0 && idx < len(f.posts) && f.posts[idx].ID == postID {
			f.posts[idx].IsLiked = prevLiked
			f.posts[idx].LikesCount = prevCount
		}
		f.log.Warn().Int64("post_id", postID).Err(err).Msg("like toggle failed")
		return nil, err
	}
	if idx >= 0 && idx < len(f.posts) && f.posts[idx].ID == postID {
		f.posts[idx].IsLiked = res.IsLiked
		f.posts[idx].LikesCount = res.LikesCount
	}
	return res, nil
}

// AddComment posts a comment and prepends it to the post's preview
// comments. Empty or whitespace-only text is rejected locally. A second
// comment on the same post while one is in flight is ignored.
func (f *FeedController) AddComment(ctx context.Context, postID int64, text string) (*CommentResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &APIError{StatusCode: 400, Message: "Comment text required"}
	}
	if !f.guard.Begin(GuardComment, postID) {
		return nil, nil
	}
	defer f.guard.End(GuardComment, postID)

	res, err := f.client.AddComment(ctx, postID, text)
	if err != nil {
		f.log.Warn().Int64("post_id", postID).Err(err).Msg("comment failed")
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID != postID {
			continue
		}
		comments := append([]Comment{res.Comment}, f.posts[i].Comments...)
		if len(comments) > FeedPreviewComments {
			comments = comments[:FeedPreviewComments]
		}
		f.posts[i].Comments = comments
		f.posts[i].CommentsCount = res.CommentsCount
		break
	}
	return res, nil
}

// HasMoreComments reports whether the post has comments beyond the
// preview shown on the card.
func (f *FeedController) HasMoreComments(p Post) bool {
	return p.CommentsCount > len(p.Comments)
}
