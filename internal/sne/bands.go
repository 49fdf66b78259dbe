package sne

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// BandCodes lists the photometric bands that get a palette colour.
var BandCodes = []string{
	"u", "g", "r", "i", "z",
	"u'", "g'", "r'", "i'", "z'",
	"u_SDSS", "g_SDSS", "r_SDSS", "i_SDSS", "z_SDSS",
	"U", "B", "V", "R", "I",
	"G", "Y", "J", "H", "K",
	"C", "CR", "CV",
}

var bandAliases = map[string]string{
	"u_SDSS": "u (SDSS)",
	"g_SDSS": "g (SDSS)",
	"r_SDSS": "r (SDSS)",
	"i_SDSS": "i (SDSS)",
	"z_SDSS": "z (SDSS)",
}

var bandShortAliases = map[string]string{
	"u_SDSS": "u",
	"g_SDSS": "g",
	"r_SDSS": "r",
	"i_SDSS": "i",
	"z_SDSS": "z",
	"G":      "",
}

// Effective wavelengths in nm.
var bandWavelengths = map[string]float64{
	"u": 354, "g": 475, "r": 622, "i": 763, "z": 905,
	"u'": 354, "g'": 475, "r'": 622, "i'": 763, "z'": 905,
	"u_SDSS": 354.3, "g_SDSS": 477.0, "r_SDSS": 623.1, "i_SDSS": 762.5, "z_SDSS": 913.4,
	"U": 365, "B": 445, "V": 551, "R": 658, "I": 806,
	"Y": 1020, "J": 1220, "H": 1630, "K": 2190,
}

// BandAlias returns the display name of a band code, e.g. "g (SDSS)".
func BandAlias(code string) string {
	if a, ok := bandAliases[code]; ok {
		return a
	}
	return code
}

// BandShortAlias returns the compact name used in instrument summaries.
// An empty result means the band is left out of summaries.
func BandShortAlias(code string) string {
	if a, ok := bandShortAliases[code]; ok {
		return a
	}
	return code
}

// BandWavelength returns the band's wavelength in nm, or 0 when unknown.
func BandWavelength(code string) float64 {
	return bandWavelengths[code]
}

// UnknownBandColor is used for bands outside BandCodes.
const UnknownBandColor = "black"

// Palette maps band codes to hex colours.
type Palette map[string]string

// NewPalette spaces len(BandCodes) colours evenly over the RGB range and
// deals them to the bands in an order shuffled by seed. The same seed
// always yields the same palette.
func NewPalette(seed uint64) Palette {
	n := len(BandCodes)
	colors := make([]string, n)
	for i := range colors {
		v := math.RoundToEven(float64(i) / float64(n) * 0xFFFEFF)
		colors[i] = fmt.Sprintf("#%06x", int64(v))
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(n, func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })

	p := make(Palette, n)
	for i, code := range BandCodes {
		p[code] = colors[i]
	}
	return p
}

// Color returns the colour for band.
func (p Palette) Color(band string) string {
	if c, ok := p[band]; ok {
		return c
	}
	return UnknownBandColor
}
