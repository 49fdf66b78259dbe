package lightcurve

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotPNG(t *testing.T) {
	tbl := Pivot([]Observation{
		{Time: 1, Mag: 15.0, Err: math.NaN(), Band: "V"},
		{Time: 1, Mag: 15.5, Err: 0.1, Band: "B"},
		{Time: 2, Mag: 14.8, Err: math.NaN(), Band: "V"},
		{Time: 3, Mag: math.NaN(), Err: math.NaN(), Band: "R"},
	})

	var buf bytes.Buffer
	require.NoError(t, PlotPNG(&buf, "SN2011fe", tbl))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "output is a PNG")
}

func TestBandColors(t *testing.T) {
	assert.Nil(t, bandColors(0))

	colors := bandColors(4)
	require.Len(t, colors, 4)
	seen := make(map[any]bool)
	for _, c := range colors {
		assert.False(t, seen[c], "colours are distinct")
		seen[c] = true
	}
}
