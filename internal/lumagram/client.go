// Package lumagram talks to the Lumagram backend.
//
// This file implements the HTTP client: one method per backend endpoint,
// JSON envelope decoding, session cookie handling, and request logging.
package lumagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConnectionFailedMessage is shown for any transport-level failure.
const ConnectionFailedMessage = "Unable to connect. Please check your connection and try again."

// ErrNotLoggedIn is returned when the backend rejects a request for lack
// of a valid session.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a structured error response from the backend. Field, when
// set, names the form field the message belongs to.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is the Lumagram API client. It carries the session cookie jar
// and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	jar     http.CookieJar
	log     zerolog.Logger
}

// NewClient builds a client against the given backend origin using the
// supplied cookie jar.
func NewClient(cfg *Config, jar http.CookieJar, log zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.APIBase,
		jar:     jar,
		http: &http.Client{
			Jar:     jar,
			Timeout: cfg.RequestTimeout(),
		},
		log: log.With().Str("component", "client").Logger(),
	}
}

// BaseURL returns the backend origin the client was built against.
func (c *Client) BaseURL() string { return c.baseURL }

// Jar exposes the cookie jar so the session can be persisted.
func (c *Client) Jar() http.CookieJar { return c.jar }

// errorEnvelope covers both error shapes the backend uses:
// {"status":"error","message":...} and {"error":...}.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field"`
}

// do sends a request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("x-request-id", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("method", method).Str("path", path).Str("request_id", reqID).Err(err).Msg("request failed")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &APIError{StatusCode: 0, Message: ConnectionFailedMessage}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: ConnectionFailedMessage}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request complete")

	if resp.StatusCode >= 400 {
		var env errorEnvelope
		msg := ""
		if json.Unmarshal(data, &env) == nil {
			if env.Message != "" {
				msg = env.Message
			} else if env.Error != "" {
				msg = env.Error
			}
		}
		// The backend guards every session endpoint with the same 401
		// payload; credential failures carry their own message.
		if resp.StatusCode == http.StatusUnauthorized && (msg == "" || msg == "Authentication required") {
			return ErrNotLoggedIn
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, Field: env.Field}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json", out)
}

// --- Auth ---

// SignupRequest is the payload for account registration.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Bio      string `json:"bio,omitempty"`
}

// Signup registers a new account. The backend creates the user but does
// not log it in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.postJSON(ctx, "/api/signup", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, username, password string) (*SessionInfo, error) {
	payload := map[string]string{"username": username, "password": password}
	var resp struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	if err := c.postJSON(ctx, "/api/login", payload, &resp); err != nil {
		return nil, err
	}
	return &SessionInfo{LoggedIn: true, UserID: resp.UserID, Username: resp.Username}, nil
}

// Logout clears the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/api/logout", nil, nil)
}

// CheckSession reports whether the stored cookie is still valid.
func (c *Client) CheckSession(ctx context.Context) (*SessionInfo, error) {
	var resp SessionInfo
	if err := c.getJSON(ctx, "/api/check-session", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Feed and stories ---

// Feed returns posts from followed users plus the viewer's own, newest
// first, each with up to three recent comments.
func (c *Client) Feed(ctx context.Context) ([]Post, error) {
	var resp struct {
		Posts []Post `json:"posts"`
	}
	if err := c.getJSON(ctx, "/api/feed", &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// Stories returns unexpired stories from followed users plus the viewer.
func (c *Client) Stories(ctx context.Context) ([]Story, error) {
	var resp struct {
		Stories []Story `json:"stories"`
	}
	if err := c.getJSON(ctx, "/api/stories", &resp); err != nil {
		return nil, err
	}
	return resp.Stories, nil
}

// LikeResult is the backend's response to a like toggle.
type LikeResult struct {
	IsLiked    bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}

// ToggleLike flips the viewer's like on a post and returns the new state.
func (c *Client) ToggleLike(ctx context.Context, postID int64) (*LikeResult, error) {
	var resp LikeResult
	path := fmt.Sprintf("/api/posts/%d/like", postID)
	if err := c.postJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CommentResult is the backend's response to adding a comment.
type CommentResult struct {
	Comment       Comment `json:"comment"`
	CommentsCount int     `json:"comments_count"`
}

// AddComment posts a comment and returns the stored comment with the new
// total count.
func (c *Client) AddComment(ctx context.Context, postID int64, text string) (*CommentResult, error) {
	var resp CommentResult
	path := fmt.Sprintf("/api/posts/%d/comment", postID)
	if err := c.postJSON(ctx, path, map[string]string{"comment_text": text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Users and follow graph ---

// Me returns the logged-in user's profile with aggregate counts.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.getJSON(ctx, "/api/user/me", &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UserByID returns another user's profile, including follow state
// relative to the viewer.
func (c *Client) UserByID(ctx context.Context, userID int64) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/user/%d", userID), &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UserPosts returns a user's gallery posts, newest first.
func (c *Client) UserPosts(ctx context.Context, userID int64) ([]Post, error) {
	var resp struct {
		Posts []Post `json:"posts"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/user/%d/posts", userID), &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// PeoplePage is one page of follow suggestions.
type PeoplePage struct {
	Users   []User `json:"users"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// PeopleYouMayKnow returns a page of users the viewer does not yet follow.
func (c *Client) PeopleYouMayKnow(ctx context.Context, page, perPage int) (*PeoplePage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	var resp PeoplePage
	if err := c.getJSON(ctx, "/api/people-you-may-know?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FollowResult is the backend's response to a follow toggle.
type FollowResult struct {
	IsFollowing    bool `json:"is_following"`
	FollowersCount int  `json:"followers_count"`
	FollowingCount int  `json:"following_count"`
}

// ToggleFollow flips the viewer's follow state on the target user.
func (c *Client) ToggleFollow(ctx context.Context, userID int64) (*FollowResult, error) {
	var resp FollowResult
	if err := c.postJSON(ctx, fmt.Sprintf("/api/follow/%d", userID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProfileUpdate carries the editable profile fields. ProfilePicPath, when
// set, names a local image file to upload.
type ProfileUpdate struct {
	Bio            string
	IsPrivate      bool
	ProfilePicPath string
}

// UpdateProfile submits the edit-profile form as multipart form data and
// returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*User, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("bio", upd.Bio); err != nil {
		return nil, fmt.Errorf("encoding form: %w", err)
	}
	private := "0"
	if upd.IsPrivate {
		private = "1"
	}
	if err := w.WriteField("is_private", private); err != nil {
		return nil, fmt.Errorf("encoding form: %w", err)
	}
	if upd.ProfilePicPath != "" {
		if err := attachFile(w, "profile_pic", upd.ProfilePicPath); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encoding form: %w", err)
	}

	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/user/me/profile", &buf, w.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// --- Create ---

// CreateRequest describes a new post or story upload.
type CreateRequest struct {
	Kind          string // "post" or "story"
	Caption       string
	Location      string
	AllowComments bool
	ImagePath     string
}

// CreateResult is the backend's response to /api/create. Exactly one of
// Post or Story is set, matching Type.
type CreateResult struct {
	Type  string `json:"type"`
	Post  *Post  `json:"post,omitempty"`
	Story *Story `json:"story,omitempty"`
}

// Create uploads a new post or story.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"kind":     req.Kind,
		"caption":  req.Caption,
		"location": req.Location,
	}
	allow := "0"
	if req.AllowComments {
		allow = "1"
	}
	fields["allow_comments"] = allow
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("encoding form: %w", err)
		}
	}
	if err := attachFile(w, "image", req.ImagePath); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encoding form: %w", err)
	}

	var resp CreateResult
	if err := c.do(ctx, http.MethodPost, "/api/create", &buf, w.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("encoding form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// --- Messaging ---

// Conversations lists the viewer's conversations, most recent first.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var resp struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.getJSON(ctx, "/api/messages/conversations", &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// ConversationMessages returns a conversation's messages in chronological
// order along with the refreshed conversation summary.
func (c *Client) ConversationMessages(ctx context.Context, conversationID int64) ([]Message, *Conversation, error) {
	var resp struct {
		Messages     []Message     `json:"messages"`
		Conversation *Conversation `json:"conversation"`
	}
	path := fmt.Sprintf("/api/messages/conversations/%d/messages", conversationID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Messages, resp.Conversation, nil
}

// SendMessage posts a text message to a conversation and returns the
// stored message.
func (c *Client) SendMessage(ctx context.Context, conversationID int64, text string) (*Message, error) {
	var resp struct {
		Message *Message `json:"message"`
	}
	path := fmt.Sprintf("/api/messages/conversations/%d/messages", conversationID)
	if err := c.postJSON(ctx, path, map[string]string{"message_text": text}, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}

// StartConversation creates or reuses a 1:1 conversation with the target
// user.
func (c *Client) StartConversation(ctx context.Context, userID int64) (*Conversation, error) {
	var resp struct {
		Conversation *Conversation `json:"conversation"`
	}
	if err := c.postJSON(ctx, "/api/messages/start", map[string]int64{"user_id": userID}, &resp); err != nil {
		return nil, err
	}
	return resp.Conversation, nil
}

// MessagingFollowings lists mutual followings available to message, each
// annotated with an existing conversation id when one exists.
func (c *Client) MessagingFollowings(ctx context.Context) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.getJSON(ctx, "/api/messages/following", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
