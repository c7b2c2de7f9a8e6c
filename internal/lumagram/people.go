// Package lumagram implements follow suggestions.
//
// This file holds the people controller: paged suggestions, and follow
// toggles applied optimistically with rollback on failure.
package lumagram

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// PeoplePerPage is the suggestion page size.
const PeoplePerPage = 12

// PeopleController manages the people-you-may-know page.
type PeopleController struct {
	client *Client
	guard  *InflightGuard
	log    zerolog.Logger

	mu        sync.Mutex
	users     []User
	page      int
	exhausted bool
	gen       Generation
}

// NewPeopleController builds a people controller over the given client.
func NewPeopleController(client *Client, log zerolog.Logger) *PeopleController {
	return &PeopleController{
		client: client,
		guard:  NewInflightGuard(),
		log:    log.With().Str("component", "people").Logger(),
	}
}

// Load fetches the first page, replacing any cached suggestions.
func (p *PeopleController) Load(ctx context.Context) ([]User, error) {
	gen := p.gen.Bump()
	page, err := p.client.PeopleYouMayKnow(ctx, 1, PeoplePerPage)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.gen.IsCurrent(gen) {
		return p.cloneUsers(), nil
	}
	p.users = page.Users
	p.page = 1
	p.exhausted = len(page.Users) < PeoplePerPage
	return p.cloneUsers(), nil
}

// LoadMore fetches the next page and appends it. A short page marks the
// list exhausted. Overlapping LoadMore calls are ignored while one is in
// flight.
func (p *PeopleController) LoadMore(ctx context.Context) ([]User, error) {
	p.mu.Lock()
	if p.exhausted || p.page == 0 {
		out := p.cloneUsers()
		p.mu.Unlock()
		return out, nil
	}
	next := p.page + 1
	p.mu.Unlock()

	if !p.guard.Begin(GuardPage, int64(next)) {
		return p.Users(), nil
	}
	defer p.guard.End(GuardPage, int64(next))

	page, err := p.client.PeopleYouMayKnow(ctx, next, PeoplePerPage)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, page.Users...)
	p.page = next
	if len(page.Users) < PeoplePerPage {
		p.exhausted = true
	}
	return p.cloneUsers(), nil
}

// Users returns a copy of the loaded suggestions.
func (p *PeopleController) Users() []User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cloneUsers()
}

func (p *PeopleController) cloneUsers() []User {
	out := make([]User, len(p.users))
	copy(out, p.users)
	return out
}

// Exhausted reports whether all suggestion pages have been loaded.
func (p *PeopleController) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}

// ToggleFollow flips the follow state for a suggested user. The card is
// updated optimistically before the request, then corrected from the
// response, or rolled back if the request fails. Duplicate toggles on
// the same user are suppressed while one is in flight.
func (p *PeopleController) ToggleFollow(ctx context.Context, userID int64) (*FollowResult, error) {
	if !p.guard.Begin(GuardFollow, userID) {
		return nil, nil
	}
	defer p.guard.End(GuardFollow, userID)

	p.mu.Lock()
	idx := -1
	for i := range p.users {
		if p.users[i].ID == userID {
			idx = i
			break
		}
	}
	var prevFollowing bool
	var prevFollowers int
	if idx >= 0 {
		prevFollowing = p.users[idx].IsFollowing
		prevFollowers = p.users[idx].FollowersCount
		p.users[idx].IsFollowing = !prevFollowing
		if prevFollowing {
			p.users[idx].FollowersCount--
		} else {
			p.users[idx].FollowersCount++
		}
	}
	p.mu.Unlock()

	res, err := p.client.ToggleFollow(ctx, userID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if idx >= 0 && idx < len(p.users) && p.users[idx].ID == userID {
			p.users[idx].IsFollowing = prevFollowing
			p.users[idx].FollowersCount = prevFollowers
		}
		p.log.Warn().Int64("user_id", userID).Err(err).Msg("follow toggle failed")
		return nil, err
	}
	if idx >= 0 && idx < len(p.users) && p.users[idx].ID == userID {
		p.users[idx].IsFollowing = res.IsFollowing
		p.users[idx].FollowersCount = res.FollowersCount
	}
	return res, nil
}
