// Package lumagram implements authentication flows.
//
// This file holds the auth controller: signup form validation, login,
// logout, and session persistence across CLI invocations.
package lumagram

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// SignupForm carries the raw signup submission before validation.
type SignupForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Bio             string
}

// Validate checks every field and returns one error per failing field.
// On success the returned request carries the sanitized values. The
// password is never sanitized, only checked.
func (f SignupForm) Validate() (SignupRequest, []*ValidationError) {
	var errs []*ValidationError
	req := SignupRequest{}

	if r := ValidateUsername(f.Username); r.Valid {
		req.Username = r.Value
	} else {
		errs = append(errs, r.Err("username"))
	}
	if r := ValidateEmail(f.Email); r.Valid {
		req.Email = r.Value
	} else {
		errs = append(errs, r.Err("email"))
	}
	if r := ValidatePassword(f.Password); r.Valid {
		req.Password = f.Password
	} else {
		errs = append(errs, r.Err("password"))
	}
	if f.ConfirmPassword != f.Password {
		errs = append(errs, &ValidationError{Field: "confirm_password", Message: "Passwords do not match"})
	}
	if r := ValidateFullName(f.FullName); r.Valid {
		req.FullName = r.Value
	} else {
		errs = append(errs, r.Err("full_name"))
	}
	if r := ValidateBio(f.Bio); r.Valid {
		req.Bio = r.Value
	} else {
		errs = append(errs, r.Err("bio"))
	}
	return req, errs
}

// AuthController manages login state and the persisted session.
type AuthController struct {
	client   *Client
	stateDir string
	log      zerolog.Logger
}

// NewAuthController builds an auth controller over the given client.
// stateDir is where the session cookie is persisted.
func NewAuthController(client *Client, stateDir string, log zerolog.Logger) *AuthController {
	return &AuthController{
		client:   client,
		stateDir: stateDir,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// Signup validates the form and registers the account. Validation
// failures are returned without hitting the backend.
func (a *AuthController) Signup(ctx context.Context, form SignupForm) (*User, []*ValidationError, error) {
	req, errs := form.Validate()
	if len(errs) > 0 {
		return nil, errs, nil
	}
	user, err := a.client.Signup(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	a.log.Info().Str("username", req.Username).Msg("account created")
	return user, nil, nil
}

// Login checks that both fields are present, authenticates, and persists
// the session cookie. Unlike signup, login fields are not shape-checked
// so existing accounts predating the current rules can still sign in.
func (a *AuthController) Login(ctx context.Context, username, password string) (*SessionInfo, error) {
	username = Sanitize(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Message: "Username is required"}
	}
	if strings.TrimSpace(password) == "" {
		return nil, &ValidationError{Field: "password", Message: "Password is required"}
	}

	info, err := a.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := SaveCookies(a.stateDir, a.client.Jar(), a.client.BaseURL()); err != nil {
		a.log.Warn().Err(err).Msg("persisting session failed")
	}
	a.log.Info().Str("username", info.Username).Msg("logged in")
	return info, nil
}

// Logout clears the server session and removes the persisted cookie.
// The local cookie file is cleared even if the server call fails.
func (a *AuthController) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	if clearErr := ClearCookies(a.stateDir); clearErr != nil {
		a.log.Warn().Err(clearErr).Msg("clearing persisted session failed")
	}
	return err
}

// Session reports the current session state from the backend.
func (a *AuthController) Session(ctx context.Context) (*SessionInfo, error) {
	return a.client.CheckSession(ctx)
}
