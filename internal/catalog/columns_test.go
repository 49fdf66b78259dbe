package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrotransients/sne-tools/internal/sne"
)

var testFolders = []string{"sne-pre-1990", "sne-1990-1999", "sne-2000-2004", "sne-2005-2009", "sne-2010-2014", "sne-2015-2019"}

func mustDecode(t *testing.T, doc string) *sne.Record {
	t.Helper()
	rec, err := sne.Decode([]byte(doc))
	require.NoError(t, err)
	return rec
}

func TestRepoFolder(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"string year", `{"SN1": {"discoveryear": "2011"}}`, "sne-2010-2014"},
		{"numeric year", `{"SN1": {"discoveryear": 1987}}`, "sne-pre-1990"},
		{"boundary year", `{"SN1": {"discoveryear": "2004"}}`, "sne-2000-2004"},
		{"missing year", `{"SN1": {}}`, "sne-pre-1990"},
		{"null year", `{"SN1": {"discoveryear": null}}`, "sne-pre-1990"},
		{"after last folder", `{"SN1": {"discoveryear": "2024"}}`, "sne-pre-1990"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RepoFolder(mustDecode(t, tt.doc), testFolders)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepoFolder_NonNumeric(t *testing.T) {
	for _, doc := range []string{
		`{"SN1": {"discoveryear": "20xx"}}`,
		`{"SN1": {"discoveryear": ["2011"]}}`,
	} {
		_, err := RepoFolder(mustDecode(t, doc), testFolders)
		assert.True(t, errors.Is(err, ErrNonNumericYear), "%s: got %v", doc, err)
	}
}

func TestRepoFolder_NoFolders(t *testing.T) {
	_, err := RepoFolder(mustDecode(t, `{"SN1": {}}`), nil)
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{`{"SN1": {"discoveryear": "2011", "discovermonth": "8", "discoverday": 24}}`, "2011-08-24"},
		{`{"SN1": {"discoveryear": "2011", "discovermonth": 12}}`, "2011-12"},
		{`{"SN1": {"discoveryear": 2011}}`, "2011"},
		{`{"SN1": {"discoveryear": "2011", "discoverday": "3"}}`, "2011"},
		{`{"SN1": {"discovermonth": "8"}}`, ""},
		{`{"SN1": {"discoveryear": null}}`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate(mustDecode(t, tt.doc), "discover"), tt.doc)
	}
}

func TestZeroPad(t *testing.T) {
	assert.Equal(t, "05", zeroPad("5"))
	assert.Equal(t, "12", zeroPad("12"))
	assert.Equal(t, "-5", zeroPad("-5"))
	assert.Equal(t, "00", zeroPad(""))
}

func TestInstruments(t *testing.T) {
	rec := mustDecode(t, `{"SN1": {"photometry": [
		{"time": 1, "band": "V", "instrument": "Swift"},
		{"time": 2, "band": "B", "instrument": "Swift"},
		{"time": 3, "band": "g_SDSS", "instrument": "SDSS"},
		{"time": 4, "band": "V", "instrument": "Swift"},
		{"time": 5, "band": "G", "instrument": "Gaia"}
	]}}`)
	got, ok := Instruments(rec)
	require.True(t, ok)
	assert.Equal(t, "Gaia, SDSS (g), Swift (B, V)", got)
}

func TestInstruments_BandsOnly(t *testing.T) {
	rec := mustDecode(t, `{"SN1": {"photometry": [
		{"time": 1, "band": "R"},
		{"time": 2, "band": "U"},
		{"time": 3, "band": "R"}
	]}}`)
	got, ok := Instruments(rec)
	require.True(t, ok)
	assert.Equal(t, "U, R", got)

	_, ok = Instruments(mustDecode(t, `{"SN1": {}}`))
	assert.False(t, ok)
}

func TestPlotLink(t *testing.T) {
	assert.Equal(t, "sne/SN2011fe.html", PlotLink("SN2011fe"))
	assert.Equal(t, "sne/SNLS-04D3fq_b.html", PlotLink("SNLS-04D3fq/b"))
}

func TestDataLinks(t *testing.T) {
	got := DataLinks("SN2011fe", "sne-2010-2014", "https://example.org/repos/", 10, 2)
	want := "<span class='ics'>" +
		"<a class='dci' href='https://example.org/repos/sne-2010-2014/SN2011fe.json' download></a>" +
		"<a class='lci' href='sne/SN2011fe.html' target='_blank'></a>" +
		"<a class='sci' href='sne/SN2011fe.html' target='_blank'></a>" +
		" 10 (2)</span>"
	assert.Equal(t, want, got)

	bare := DataLinks("SN1", "sne-pre-1990", "https://example.org", 0, 0)
	assert.Equal(t, "<span class='ics'><a class='dci' href='https://example.org/sne-pre-1990/SN1.json' download></a></span>", bare)
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"Ia":    "Ia",
		"Ibc?":  "Ib/c",
		"IIP*":  "II P",
		" Ia? ": "Ia",
		"":      "Unknown",
		"?":     "Unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeType(in), "NormalizeType(%q)", in)
	}

	assert.Equal(t, "Unknown", ClaimedType(mustDecode(t, `{"SN1": {}}`)))
	assert.Equal(t, "Ib/c", ClaimedType(mustDecode(t, `{"SN1": {"claimedtype": "Ibc"}}`)))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Smith et al. (2011)", StripTags("<a href='x'>Smith et al.</a> (2011)"))
	assert.Equal(t, "a < b", StripTags("a < b"))
}
