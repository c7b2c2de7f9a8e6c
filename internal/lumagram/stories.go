// Package lumagram implements the stories tray and viewer.
//
// This file holds the story controller: caching the tray, and a viewer
// that steps through stories with wrap-around navigation.
package lumagram

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// StoryController manages the story tray and the open viewer.
type StoryController struct {
	client *Client
	log    zerolog.Logger

	mu      sync.Mutex
	stories []Story
	self    *User
	gen     Generation
	selfGen Generation

	viewerOpen bool
	viewerIdx  int
}

// NewStoryController builds a story controller over the given client.
func NewStoryController(client *Client, log zerolog.Logger) *StoryController {
	return &StoryController{
		client: client,
		log:    log.With().Str("component", "stories").Logger(),
	}
}

// Load fetches the story tray and replaces the cache. Stale responses
// are discarded.
func (s *StoryController) Load(ctx context.Context) ([]Story, error) {
	gen := s.gen.Bump()
	stories, err := s.client.Stories(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gen.IsCurrent(gen) {
		return s.cloneStories(), nil
	}
	s.stories = stories
	if s.viewerIdx >= len(s.stories) {
		s.viewerOpen = false
		s.viewerIdx = 0
	}
	return s.cloneStories(), nil
}

// LoadSelf fetches the viewer's profile for the leading "your story"
// tile. The tray renders a placeholder until this resolves; the calls
// are independent and may complete in either order.
func (s *StoryController) LoadSelf(ctx context.Context) (*User, error) {
	gen := s.selfGen.Bump()
	user, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selfGen.IsCurrent(gen) {
		s.self = user
	}
	return user, nil
}

// Self returns the cached viewer profile, or nil while it is loading.
func (s *StoryController) Self() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.self
}

// Stories returns a copy of the cached tray.
func (s *StoryController) Stories() []Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneStories()
}

func (s *StoryController) cloneStories() []Story {
	out := make([]Story, len(s.stories))
	copy(out, s.stories)
	return out
}

// Open opens the viewer at the story with the given id. An unknown id is
// a silent no-op.
func (s *StoryController) Open(storyID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, st := range s.stories {
		if st.ID == storyID {
			s.viewerOpen = true
			s.viewerIdx = i
			return
		}
	}
}

// Close closes the viewer.
func (s *StoryController) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewerOpen = false
	s.viewerIdx = 0
}

// Current returns the story the viewer is showing, if open.
func (s *StoryController) Current() (Story, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.viewerOpen || len(s.stories) == 0 {
		return Story{}, false
	}
	return s.stories[s.viewerIdx], true
}

// Next advances the viewer, wrapping from the last story to the first.
func (s *StoryController) Next() (Story, bool) {
	return s.step(1)
}

// Prev steps the viewer back, wrapping from the first story to the last.
func (s *StoryController) Prev() (Story, bool) {
	return s.step(-1)
}

func (s *StoryController) step(delta int) (Story, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.viewerOpen || len(s.stories) == 0 {
		return Story{}, false
	}
	n := len(s.stories)
	s.viewerIdx = ((s.viewerIdx+delta)%n + n) % n
	return s.stories[s.viewerIdx], true
}
