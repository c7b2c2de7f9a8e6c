// Package lumagram implements profile pages.
//
// This file holds the profile controller: loading the viewer's own or
// another user's profile with its gallery, editing the profile, and
// toggling follow from the profile header.
package lumagram

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// ProfileView is a loaded profile page: the user plus their gallery.
type ProfileView struct {
	User  User
	Posts []Post
}

// ProfileController manages profile pages.
type ProfileController struct {
	client *Client
	guard  *InflightGuard
	log    zerolog.Logger

	mu      sync.Mutex
	current *ProfileView
	gen     Generation
}

// NewProfileController builds a profile controller over the given client.
func NewProfileController(client *Client, log zerolog.Logger) *ProfileController {
	return &ProfileController{
		client: client,
		guard:  NewInflightGuard(),
		log:    log.With().Str("component", "profile").Logger(),
	}
}

// LoadSelf loads the viewer's own profile and gallery.
func (p *ProfileController) LoadSelf(ctx context.Context) (*ProfileView, error) {
	gen := p.gen.Bump()
	user, err := p.client.Me(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	user.IsSelf = true
	return p.finishLoad(ctx, gen, *user)
}

// Load loads another user's profile and gallery. A missing user surfaces
// as a 404 APIError.
func (p *ProfileController) Load(ctx context.Context, userID int64) (*ProfileView, error) {
	gen := p.gen.Bump()
	user, err := p.client.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &APIError{StatusCode: 404, Message: "User not found"}
	}
	return p.finishLoad(ctx, gen, *user)
}

func (p *ProfileController) finishLoad(ctx context.Context, gen uint64, user User) (*ProfileView, error) {
	posts, err := p.client.UserPosts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{User: user, Posts: posts}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen.IsCurrent(gen) {
		p.current = view
	}
	return view, nil
}

// Current returns the last loaded profile view, if any.
func (p *ProfileController) Current() *ProfileView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Update submits profile edits and refreshes the cached view. The bio is
// validated and sanitized first.
func (p *ProfileController) Update(ctx context.Context, upd ProfileUpdate) (*User, error) {
	bio := ValidateBio(upd.Bio)
	if !bio.Valid {
		return nil, bio.Err("bio")
	}
	upd.Bio = bio.Value

	user, err := p.client.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && user != nil && p.current.User.ID == user.ID {
		p.current.User.Bio = user.Bio
		p.current.User.ProfilePic = user.ProfilePic
		p.current.User.IsPrivate = user.IsPrivate
	}
	return user, nil
}

// ToggleFollow flips the follow state on the loaded profile and updates
// its follower count from the response. Duplicate toggles are suppressed
// while one is in flight.
func (p *ProfileController) ToggleFollow(ctx context.Context, userID int64) (*FollowResult, error) {
	if !p.guard.Begin(GuardFollow, userID) {
		return nil, nil
	}
	defer p.guard.End(GuardFollow, userID)

	res, err := p.client.ToggleFollow(ctx, userID)
	if err != nil {
		p.log.Warn().Int64("user_id", userID).Err(err).Msg("follow toggle failed")
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.User.ID == userID {
		p.current.User.IsFollowing = res.IsFollowing
		p.current.User.FollowersCount = res.FollowersCount
	}
	return res, nil
}
