// Package lumagram persists the session cookie jar.
//
// This file saves the backend session cookie to disk so the CLI stays
// logged in across invocations, and restores it on startup.
package lumagram

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const cookieFileName = "session.json"

// storedCookie is the on-disk form of a single cookie.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// cookieFile pairs the backend origin with its cookies so a jar saved
// against one server is not replayed against another.
type cookieFile struct {
	Origin  string         `json:"origin"`
	SavedAt time.Time      `json:"saved_at"`
	Cookies []storedCookie `json:"cookies"`
}

// SaveCookies writes the jar's cookies for the given origin to
// stateDir/session.json.
func SaveCookies(stateDir string, jar http.CookieJar, origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("parsing origin %q: %w", origin, err)
	}

	cf := cookieFile{Origin: origin, SavedAt: time.Now().UTC()}
	for _, c := range jar.Cookies(u) {
		cf.Cookies = append(cf.Cookies, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}

	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling cookies: %w", err)
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	path := filepath.Join(stateDir, cookieFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing cookies to %s: %w", path, err)
	}
	return nil
}

// LoadCookies builds a cookie jar and restores any cookies previously
// saved for the given origin. A missing file or an origin mismatch
// yields an empty jar, not an error.
func LoadCookies(stateDir, origin string) (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	path := filepath.Join(stateDir, cookieFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return jar, nil
		}
		return nil, fmt.Errorf("reading cookies from %s: %w", path, err)
	}

	var cf cookieFile
	if err := json.Unmarshal(data, &cf); err != nil {
		// A corrupt file means a fresh session, not a hard failure.
		return jar, nil
	}
	if cf.Origin != origin {
		return jar, nil
	}

	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parsing origin %q: %w", origin, err)
	}
	cookies := make([]*http.Cookie, 0, len(cf.Cookies))
	for _, sc := range cf.Cookies {
		if !sc.Expires.IsZero() && sc.Expires.Before(time.Now()) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Domain:   sc.Domain,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HTTPOnly,
		})
	}
	jar.SetCookies(u, cookies)
	return jar, nil
}

// ClearCookies removes the persisted session file. Missing files are fine.
func ClearCookies(stateDir string) error {
	path := filepath.Join(stateDir, cookieFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
