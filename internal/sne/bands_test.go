package sne

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandAliases(t *testing.T) {
	assert.Equal(t, "g (SDSS)", BandAlias("g_SDSS"))
	assert.Equal(t, "V", BandAlias("V"))
	assert.Equal(t, "z", BandShortAlias("z_SDSS"))
	assert.Equal(t, "", BandShortAlias("G"))
	assert.Equal(t, "Ks", BandShortAlias("Ks"))
}

func TestBandWavelength(t *testing.T) {
	assert.Equal(t, 445.0, BandWavelength("B"))
	assert.Equal(t, 913.4, BandWavelength("z_SDSS"))
	assert.Equal(t, 0.0, BandWavelength("CR"))
	assert.Equal(t, 0.0, BandWavelength("W1"))
}

func TestNewPalette(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)

	p := NewPalette(101)
	assert.Len(t, p, len(BandCodes))

	seen := make(map[string]bool)
	for _, code := range BandCodes {
		c := p.Color(code)
		assert.Regexp(t, hex, c)
		assert.False(t, seen[c], "colour %s assigned twice", c)
		seen[c] = true
	}
	assert.True(t, seen["#000000"], "first evenly spaced colour is black")

	assert.Equal(t, p, NewPalette(101), "same seed, same palette")
	assert.Equal(t, UnknownBandColor, p.Color("W1"))
}
