package lumagram

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookiesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	const origin = "http://localhost:5000"
	u, err := url.Parse(origin)
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})

	require.NoError(t, SaveCookies(dir, jar, origin))

	restored, err := LoadCookies(dir, origin)
	require.NoError(t, err)
	cookies := restored.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
}

func TestCookiesOriginMismatchYieldsEmptyJar(t *testing.T) {
	dir := t.TempDir()
	const origin = "http://localhost:5000"
	u, _ := url.Parse(origin)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})
	require.NoError(t, SaveCookies(dir, jar, origin))

	restored, err := LoadCookies(dir, "http://other:9000")
	require.NoError(t, err)
	other, _ := url.Parse("http://other:9000")
	assert.Empty(t, restored.Cookies(other))
	assert.Empty(t, restored.Cookies(u))
}

func TestCookiesMissingFileIsEmptyJar(t *testing.T) {
	restored, err := LoadCookies(t.TempDir(), "http://localhost:5000")
	require.NoError(t, err)
	u, _ := url.Parse("http://localhost:5000")
	assert.Empty(t, restored.Cookies(u))
}

func TestCookiesCorruptFileIsEmptyJar(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600))

	restored, err := LoadCookies(dir, "http://localhost:5000")
	require.NoError(t, err)
	u, _ := url.Parse("http://localhost:5000")
	assert.Empty(t, restored.Cookies(u))
}

func TestCookiesExpiredAreDropped(t *testing.T) {
	dir := t.TempDir()
	const origin = "http://localhost:5000"
	u, _ := url.Parse(origin)

	// a stored file whose only cookie expired long ago
	path := filepath.Join(dir, "session.json")
	expired := `{"origin":"` + origin + `","cookies":[{"name":"session","value":"old","expires":"2000-01-01T00:00:00Z"}]}`
	require.NoError(t, os.WriteFile(path, []byte(expired), 0o600))

	restored, err := LoadCookies(dir, origin)
	require.NoError(t, err)
	assert.Empty(t, restored.Cookies(u))
}

func TestClearCookies(t *testing.T) {
	dir := t.TempDir()
	const origin = "http://localhost:5000"
	u, _ := url.Parse(origin)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})
	require.NoError(t, SaveCookies(dir, jar, origin))

	require.NoError(t, ClearCookies(dir))
	_, err = os.Stat(filepath.Join(dir, "session.json"))
	assert.True(t, os.IsNotExist(err))

	// clearing again is fine
	require.NoError(t, ClearCookies(dir))
}
