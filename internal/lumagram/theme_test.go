package lumagram

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientHashKnownValues(t *testing.T) {
	assert.Equal(t, uint32(0), gradientHash(""))
	assert.Equal(t, uint32('a'), gradientHash("a"))
	// hash("ab") = 'a'*31 + 'b'
	assert.Equal(t, uint32('a')*31+uint32('b'), gradientHash("ab"))
}

func TestPickGradientDeterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		seed := strconv.Itoa(i)
		first := PickGradient(seed)
		assert.Equal(t, first, PickGradient(seed), "seed %q must be stable", seed)
		assert.Equal(t, PaletteIndex(seed), PaletteIndex(seed))
	}
}

func TestPaletteIndexInRange(t *testing.T) {
	seeds := []string{"", "0", "42", "alice", "bob_the_builder", "किरण"}
	for _, seed := range seeds {
		idx := PaletteIndex(seed)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(palettes))
		assert.Equal(t, palettes[idx], PickGradient(seed))
		assert.Same(t, accentColors[idx], AccentColor(seed))
	}
}

func TestThemeSeedFallback(t *testing.T) {
	assert.Equal(t, "7", (&User{ID: 7, Username: "alice"}).ThemeSeed())
	assert.Equal(t, "alice", (&User{Username: "alice"}).ThemeSeed())
	assert.Equal(t, "0", (&User{}).ThemeSeed())
}
