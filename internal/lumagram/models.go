// Package lumagram defines the view models mirrored from backend JSON.
//
// All entities here are transient and UI-local: they live for the duration
// of a page controller and are discarded on navigation. Mutating actions
// (like, comment, follow, send) patch these structs in place so the page
// does not need a full reload.
package lumagram

import "strconv"

// User mirrors the backend user object. IsFollowing and IsSelf are only
// populated by endpoints that know the viewer.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	FullName       string `json:"full_name,omitempty"`
	Bio            string `json:"bio,omitempty"`
	ProfilePic     string `json:"profile_pic,omitempty"`
	IsFollowing    bool   `json:"is_following,omitempty"`
	IsSelf         bool   `json:"is_self,omitempty"`
	IsPrivate      bool   `json:"is_private,omitempty"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	PostsCount     int    `json:"posts_count"`
	// ConversationID is set by the messaging followings endpoint when a
	// conversation with this user already exists.
	ConversationID int64 `json:"conversation_id,omitempty"`
}

// ThemeSeed returns the gradient seed for a user: the numeric id when
// present, else the username, else "0".
func (u *User) ThemeSeed() string {
	if u == nil {
		return "0"
	}
	if u.ID != 0 {
		return strconv.FormatInt(u.ID, 10)
	}
	if u.Username != "" {
		return u.Username
	}
	return "0"
}

// Post mirrors a feed or gallery post. Comments holds at most the three
// most recent comments; CommentsCount is the authoritative total.
type Post struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name,omitempty"`
	ProfilePic    string    `json:"profile_pic,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	LikesCount    int       `json:"likes_count"`
	IsLiked       bool      `json:"is_liked"`
	CommentsCount int       `json:"comments_count"`
	Comments      []Comment `json:"comments,omitempty"`
	CreatedAt     string    `json:"created_at,omitempty"`
}

// Comment is a single post comment.
type Comment struct {
	ID          int64  `json:"id,omitempty"`
	Username    string `json:"username"`
	CommentText string `json:"comment_text"`
	CreatedAt   string `json:"created_at,omitempty"`
	ProfilePic  string `json:"profile_pic,omitempty"`
}

// Story is an ephemeral single-image post shown in the story viewer.
type Story struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id,omitempty"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}

// Conversation is a two-party message thread.
type Conversation struct {
	ID          int64    `json:"id"`
	OtherUser   *User    `json:"other_user,omitempty"`
	LastMessage *Message `json:"last_message,omitempty"`
}

// Message is a single chat message within a conversation.
type Message struct {
	ID             int64  `json:"id,omitempty"`
	SenderID       int64  `json:"sender_id"`
	SenderUsername string `json:"sender_username,omitempty"`
	MessageText    string `json:"message_text"`
	ImageURL       string `json:"image_url,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	ProfilePic     string `json:"profile_pic,omitempty"`
}

// SessionInfo is the result of a session check.
type SessionInfo struct {
	LoggedIn bool   `json:"logged_in"`
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
