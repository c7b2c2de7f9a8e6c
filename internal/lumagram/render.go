// Package lumagram renders views for the terminal.
//
// This file formats feed cards, the story tray, conversation lists,
// message threads, suggestion cards, and profile pages using ANSI
// colors. Each user gets a stable accent color derived from their
// gradient palette index.
package lumagram

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Renderer writes formatted views to an output stream.
type Renderer struct {
	out       io.Writer
	assetBase string

	bold  *color.Color
	dim   *color.Color
	liked *color.Color
	link  *color.Color
}

// NewRenderer builds a renderer writing to out, resolving asset paths
// against assetBase.
func NewRenderer(out io.Writer, assetBase string) *Renderer {
	return &Renderer{
		out:       out,
		assetBase: assetBase,
		bold:      color.New(color.Bold),
		dim:       color.New(color.Faint),
		liked:     color.New(color.FgRed),
		link:      color.New(color.FgBlue, color.Underline),
	}
}

func (r *Renderer) username(name, seed string) string {
	return AccentColor(seed).Sprint("@" + name)
}

// FeedPost renders one feed card.
func (r *Renderer) FeedPost(p Post, now time.Time) {
	seed := p.Username
	fmt.Fprintf(r.out, "%s %s\n", r.username(p.Username, seed), r.dim.Sprint(FormatTimeAgo(ParseBackendTime(p.CreatedAt), now)))
	if p.FullName != "" {
		fmt.Fprintf(r.out, "%s\n", p.FullName)
	}
	fmt.Fprintf(r.out, "%s\n", r.link.Sprint(ResolveAsset(r.assetBase, AssetPost, p.ImageURL)))
	if p.Caption != "" {
		fmt.Fprintf(r.out, "%s\n", p.Caption)
	}

	heart := "♡"
	likes := FormatCount(p.LikesCount)
	if p.IsLiked {
		fmt.Fprintf(r.out, "%s %s likes   💬 %s comments\n", r.liked.Sprint("♥"), likes, FormatCount(p.CommentsCount))
	} else {
		fmt.Fprintf(r.out, "%s %s likes   💬 %s comments\n", heart, likes, FormatCount(p.CommentsCount))
	}

	for _, c := range p.Comments {
		fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(c.Username), c.CommentText)
	}
	if p.CommentsCount > len(p.Comments) {
		fmt.Fprintf(r.out, "  %s\n", r.dim.Sprintf("View all %s comments", FormatCount(p.CommentsCount)))
	}
	fmt.Fprintln(r.out)
}

// Feed renders the whole feed, or a placeholder when empty.
func (r *Renderer) Feed(posts []Post, now time.Time) {
	if len(posts) == 0 {
		fmt.Fprintln(r.out, "No posts yet. Follow people to fill your feed.")
		return
	}
	for _, p := range posts {
		r.FeedPost(p, now)
	}
}

// StoryTray renders the story tray, leading with the viewer's own tile.
// A nil self renders a placeholder until the profile resolves.
func (r *Renderer) StoryTray(self *User, stories []Story, now time.Time) {
	if self != nil {
		fmt.Fprintf(r.out, " ●  Your story (%s)\n", r.username(self.Username, self.ThemeSeed()))
	} else {
		fmt.Fprintf(r.out, " ●  Your story\n")
	}
	if len(stories) == 0 {
		fmt.Fprintln(r.out, "No stories right now.")
		return
	}
	for i, s := range stories {
		fmt.Fprintf(r.out, "%2d. %s %s\n", i+1, r.username(s.Username, s.Username), r.dim.Sprint(FormatTimeAgoShort(ParseBackendTime(s.CreatedAt), now)))
	}
}

// StoryView renders the open story in the viewer.
func (r *Renderer) StoryView(s Story, position, total int, now time.Time) {
	fmt.Fprintf(r.out, "[%d/%d] %s %s\n", position, total, r.username(s.Username, s.Username), r.dim.Sprint(FormatTimeAgo(ParseBackendTime(s.CreatedAt), now)))
	fmt.Fprintf(r.out, "%s\n", r.link.Sprint(ResolveAsset(r.assetBase, AssetStory, s.ImageURL)))
}

// Conversations renders the conversation list with last-message previews.
func (r *Renderer) Conversations(convos []Conversation, selectedID int64, now time.Time) {
	if len(convos) == 0 {
		fmt.Fprintln(r.out, "No conversations yet.")
		return
	}
	for _, c := range convos {
		marker := "  "
		if c.ID == selectedID {
			marker = r.bold.Sprint("> ")
		}
		name := "unknown"
		seed := ""
		if c.OtherUser != nil {
			name = c.OtherUser.Username
			seed = c.OtherUser.ThemeSeed()
		}
		preview := r.dim.Sprint("No messages yet")
		if c.LastMessage != nil {
			preview = fmt.Sprintf("%s %s", Truncate(c.LastMessage.MessageText, 40), r.dim.Sprint(FormatTimeAgoShort(ParseBackendTime(c.LastMessage.CreatedAt), now)))
		}
		fmt.Fprintf(r.out, "%s#%d %s  %s\n", marker, c.ID, r.username(name, seed), preview)
	}
}

// Thread renders a message thread chronologically. The viewer's own
// messages are right-aligned.
func (r *Renderer) Thread(msgs []Message, viewerID int64, now time.Time) {
	if len(msgs) == 0 {
		fmt.Fprintln(r.out, "No messages yet. Say hello!")
		return
	}
	const width = 72
	for _, m := range msgs {
		line := fmt.Sprintf("%s  %s", m.MessageText, r.dim.Sprint(FormatTimeAgoShort(ParseBackendTime(m.CreatedAt), now)))
		if m.SenderID == viewerID {
			pad := width - len(m.MessageText)
			if pad < 0 {
				pad = 0
			}
			fmt.Fprintf(r.out, "%s%s\n", strings.Repeat(" ", pad), line)
		} else {
			fmt.Fprintf(r.out, "%s %s\n", r.username(m.SenderUsername, m.SenderUsername), line)
		}
	}
}

// PeopleCard renders one follow suggestion.
func (r *Renderer) PeopleCard(u User) {
	fmt.Fprintf(r.out, "%s", r.username(u.Username, u.ThemeSeed()))
	if u.FullName != "" {
		fmt.Fprintf(r.out, "  %s", u.FullName)
	}
	fmt.Fprintln(r.out)
	if u.Bio != "" {
		fmt.Fprintf(r.out, "  %s\n", Truncate(u.Bio, 60))
	}
	state := "Follow"
	if u.IsFollowing {
		state = "Following"
	}
	fmt.Fprintf(r.out, "  %s followers · %s posts · [%s]\n\n", FormatCount(u.FollowersCount), FormatCount(u.PostsCount), state)
}

// People renders a page of suggestions.
func (r *Renderer) People(users []User, exhausted bool) {
	if len(users) == 0 {
		fmt.Fprintln(r.out, "No suggestions right now.")
		return
	}
	for _, u := range users {
		r.PeopleCard(u)
	}
	if exhausted {
		fmt.Fprintln(r.out, r.dim.Sprint("You're all caught up."))
	}
}

// Profile renders a profile header and gallery.
func (r *Renderer) Profile(view *ProfileView, now time.Time) {
	u := view.User
	fmt.Fprintf(r.out, "%s", r.username(u.Username, u.ThemeSeed()))
	if u.FullName != "" {
		fmt.Fprintf(r.out, "  %s", r.bold.Sprint(u.FullName))
	}
	if u.IsSelf {
		fmt.Fprintf(r.out, "  %s", r.dim.Sprint("(you)"))
	} else if u.IsFollowing {
		fmt.Fprintf(r.out, "  %s", r.dim.Sprint("(following)"))
	}
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s\n", r.link.Sprint(ResolveAsset(r.assetBase, AssetProfile, u.ProfilePic)))
	if u.Bio != "" {
		fmt.Fprintf(r.out, "%s\n", u.Bio)
	}
	fmt.Fprintf(r.out, "%s posts · %s followers · %s following\n\n",
		FormatCount(u.PostsCount), FormatCount(u.FollowersCount), FormatCount(u.FollowingCount))

	for _, p := range view.Posts {
		fmt.Fprintf(r.out, "  %s  %s likes  %s comments  %s\n",
			r.link.Sprint(ResolveAsset(r.assetBase, AssetPost, p.ImageURL)),
			FormatCount(p.LikesCount), FormatCount(p.CommentsCount),
			r.dim.Sprint(FormatTimeAgoShort(ParseBackendTime(p.CreatedAt), now)))
	}
	if len(view.Posts) == 0 {
		fmt.Fprintln(r.out, r.dim.Sprint("  No posts yet."))
	}
}

// Session renders the current login state.
func (r *Renderer) Session(info *SessionInfo) {
	if info == nil || !info.LoggedIn {
		fmt.Fprintln(r.out, "Not logged in.")
		return
	}
	fmt.Fprintf(r.out, "Logged in as %s (user #%d)\n", r.bold.Sprint(info.Username), info.UserID)
}
