// Package lumagram resolves backend-supplied asset paths to absolute URLs.
//
// The backend stores image paths inconsistently: sometimes rooted at
// /assets, sometimes relative to the images folder, sometimes as a bare
// filename, and occasionally with Windows-style separators. This file is the
// single shared resolver for all page contexts; every rendered image goes
// through it so the conventions cannot drift between pages.
package lumagram

import "strings"

// AssetKind selects the default subfolder for an asset.
type AssetKind int

const (
	AssetProfile AssetKind = iota
	AssetPost
	AssetStory
)

// DefaultProfilePic is served when a user has no profile picture path.
const DefaultProfilePic = "profiles/default.jpg"

// folder returns the asset subfolder for the kind.
func (k AssetKind) folder() string {
	switch k {
	case AssetProfile:
		return "profiles"
	case AssetStory:
		return "stories"
	default:
		return "posts"
	}
}

// knownPrefix reports whether the cleaned path already sits under a
// recognized kind folder. Stories share the posts folder historically, so
// the story kind accepts both.
func (k AssetKind) knownPrefix(clean string) bool {
	if strings.HasPrefix(clean, k.folder()+"/") {
		return true
	}
	if k == AssetStory && strings.HasPrefix(clean, "posts/") {
		return true
	}
	return false
}

// ResolveAsset maps a possibly-relative, possibly backslash-delimited path
// to an absolute URL under the given base. Already-absolute http(s) URLs
// pass through unchanged. A missing profile path yields the default image;
// a missing post or story path yields an empty string.
func ResolveAsset(base string, kind AssetKind, raw string) string {
	base = strings.TrimSuffix(base, "/")

	if raw == "" {
		if kind == AssetProfile {
			return base + "/assets/images/" + DefaultProfilePic
		}
		return ""
	}

	clean := strings.ReplaceAll(raw, `\`, "/")

	switch {
	case strings.HasPrefix(clean, "http://") || strings.HasPrefix(clean, "https://"):
		return clean
	case strings.HasPrefix(clean, "/assets/"):
		return base + clean
	case strings.HasPrefix(clean, "assets/"):
		return base + "/" + clean
	case strings.HasPrefix(clean, "images/"):
		return base + "/assets/" + clean
	case kind.knownPrefix(clean):
		return base + "/assets/images/" + clean
	}

	// Bare filename (or an unrecognized prefix): place the final segment
	// under the kind's default subfolder.
	parts := strings.Split(clean, "/")
	return base + "/assets/images/" + kind.folder() + "/" + parts[len(parts)-1]
}
