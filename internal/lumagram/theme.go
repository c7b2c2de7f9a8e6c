// Package lumagram assigns a stable visual theme per user identifier.
//
// Every avatar and card background is themed with a gradient picked
// deterministically from the user's id (or username as a fallback seed), so
// a user keeps the same colors across pages and sessions.
package lumagram

import "github.com/fatih/color"

// Gradient is a cosmetic color pair derived from a user identifier.
type Gradient struct {
	Background string
	Accent     string
}

// palettes is the fixed theme table. Order matters: the hash indexes into it.
var palettes = []Gradient{
	{Background: "linear-gradient(135deg, #ff758c 0%, #ff7eb3 100%)", Accent: "#ff8fb1"},
	{Background: "linear-gradient(135deg, #7f00ff 0%, #e100ff 100%)", Accent: "#c46bff"},
	{Background: "linear-gradient(135deg, #00c6ff 0%, #0072ff 100%)", Accent: "#32b1ff"},
	{Background: "linear-gradient(135deg, #11998e 0%, #38ef7d 100%)", Accent: "#2adf90"},
	{Background: "linear-gradient(135deg, #f83600 0%, #f9d423 100%)", Accent: "#f9a51a"},
	{Background: "linear-gradient(135deg, #fc5c7d 0%, #6a82fb 100%)", Accent: "#8f7bff"},
	{Background: "linear-gradient(135deg, #141e30 0%, #243b55 100%)", Accent: "#4f81ff"},
	{Background: "linear-gradient(135deg, #834d9b 0%, #d04ed6 100%)", Accent: "#d86ae8"},
}

// accentColors maps each palette slot to a terminal color for CLI rendering.
var accentColors = []*color.Color{
	color.New(color.FgHiMagenta),
	color.New(color.FgMagenta),
	color.New(color.FgHiCyan),
	color.New(color.FgHiGreen),
	color.New(color.FgHiYellow),
	color.New(color.FgHiBlue),
	color.New(color.FgBlue),
	color.New(color.FgHiRed),
}

// gradientHash computes the 32-bit polynomial hash used for palette
// selection. It must stay byte-for-byte compatible with the backend's
// definition: hash = hash*31 + byte with uint32 wraparound.
func gradientHash(seed string) uint32 {
	var hash uint32
	for i := 0; i < len(seed); i++ {
		hash = hash*31 + uint32(seed[i])
	}
	return hash
}

// PickGradient returns the gradient for a seed string. Same seed, same
// palette, across calls and processes.
func PickGradient(seed string) Gradient {
	return palettes[int(gradientHash(seed)%uint32(len(palettes)))]
}

// PaletteIndex returns the palette slot for a seed. Exposed for rendering
// layers that map slots onto their own color spaces.
func PaletteIndex(seed string) int {
	return int(gradientHash(seed) % uint32(len(palettes)))
}

// AccentColor returns the terminal color corresponding to a seed's palette
// slot.
func AccentColor(seed string) *color.Color {
	return accentColors[PaletteIndex(seed)]
}
