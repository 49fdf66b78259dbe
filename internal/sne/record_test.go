package sne

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrotransients/sne-tools/internal/fsutil"
)

const sn2011fe = `{
  "SN2011fe": {
    "name": "SN2011fe",
    "aliases": ["SN2011fe", "PTF11kly"],
    "discoveryear": "2011",
    "discovermonth": 8,
    "redshift": "0.000804",
    "host": "M101",
    "sources": [
      {"name": "Nugent et al. (2011)", "alias": "1"},
      {"name": "Pereira et al. (2013)", "alias": 2, "secondary": true}
    ],
    "photometry": [
      {"time": "55800.1", "band": "B", "magnitude": "14.2", "e_magnitude": "0.05", "source": "2,1"},
      {"time": 55801.2, "band": "V", "abmag": 13.9, "instrument": "Swift"},
      {"time": "55802", "band": "R", "magnitude": 15.1, "upperlimit": true}
    ],
    "spectra": [
      {"waveunit": "Angstrom", "fluxunit": "erg/s/cm^2/Angstrom", "time": "55805",
       "data": [["3000", "1.5e-15"], ["3010", null], ["3020", "2.0e-15", "1e-17"]]}
    ]
  }
}`

func TestDecode(t *testing.T) {
	rec, err := Decode([]byte(sn2011fe))
	require.NoError(t, err)

	assert.Equal(t, "SN2011fe", rec.Name)
	assert.Equal(t, []string{"SN2011fe", "PTF11kly"}, rec.Aliases)
	require.Len(t, rec.Photometry, 3)
	require.Len(t, rec.Spectra, 1)
	require.Len(t, rec.Sources, 2)

	p := rec.Photometry[0]
	assert.Equal(t, Float(55800.1), p.Time)
	assert.Equal(t, Float(14.2), p.Mag())
	assert.Equal(t, Float(0.05), p.Err())
	assert.Equal(t, []string{"1", "2"}, p.SourceIDs())

	legacy := rec.Photometry[1]
	assert.Equal(t, Float(13.9), legacy.Mag())
	assert.False(t, legacy.Err().Valid)
	assert.Equal(t, "Swift", legacy.Instrument)

	assert.True(t, bool(rec.Photometry[2].UpperLimit))

	assert.Equal(t, Text("2"), rec.Sources[1].Alias)
	assert.True(t, bool(rec.Sources[1].Secondary))

	wave, flux := rec.Spectra[0].Series()
	assert.Equal(t, []float64{3000, 3020}, wave)
	assert.Equal(t, []float64{1.5e-15, 2.0e-15}, flux)
}

func TestDecode_NotSingleObject(t *testing.T) {
	for _, in := range []string{`{}`, `{"a": {}, "b": {}}`} {
		_, err := Decode([]byte(in))
		assert.True(t, errors.Is(err, ErrNotSingleObject), "input %s: got %v", in, err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"SN1": [1, 2]}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"SN1": {"photometry": [{"time": "soon"}]}}`))
	assert.Error(t, err)
}

func TestRecordText(t *testing.T) {
	rec, err := Decode([]byte(sn2011fe))
	require.NoError(t, err)

	got, ok := rec.Text("discoveryear")
	assert.True(t, ok)
	assert.Equal(t, "2011", got)

	got, ok = rec.Text("discovermonth")
	assert.True(t, ok)
	assert.Equal(t, "8", got)

	_, ok = rec.Text("aliases")
	assert.False(t, ok)

	_, ok = rec.Text("maxdate")
	assert.False(t, ok)
}

func TestRecordRow(t *testing.T) {
	rec, err := Decode([]byte(sn2011fe))
	require.NoError(t, err)
	rec.Set("data", "<span class='ics'></span>")

	row := rec.Row([]string{"name", "redshift", "maxdate", "data"})
	assert.Equal(t, []string{"name", "redshift", "maxdate", "data"}, row.Keys())

	v, ok := row.Get("maxdate")
	assert.True(t, ok)
	assert.Nil(t, v)

	b, err := Marshal(row)
	require.NoError(t, err)
	want := `{"name":"SN2011fe","redshift":"0.000804","maxdate":null,"data":"<span class='ics'></span>"}`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("row JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestRowPreservesNumbers(t *testing.T) {
	rec, err := Decode([]byte(`{"SN1": {"redshift": 0.0100, "lumdist": [1, "2"]}}`))
	require.NoError(t, err)

	b, err := Marshal(rec.Row([]string{"redshift", "lumdist"}))
	require.NoError(t, err)
	assert.Equal(t, `{"redshift":0.0100,"lumdist":[1,"2"]}`, string(b))
}

func TestLoadRecord(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("/data/SN2011fe.json", []byte(sn2011fe), 0644))

	rec, err := LoadRecord(fs, "/data/SN2011fe.json")
	require.NoError(t, err)
	assert.Equal(t, "SN2011fe", rec.Name)

	_, err = LoadRecord(fs, "/data/missing.json")
	assert.Error(t, err)

	require.NoError(t, fs.WriteFile("/data/bad.json", []byte(`{"a":{},"b":{}}`), 0644))
	_, err = LoadRecord(fs, "/data/bad.json")
	assert.ErrorIs(t, err, ErrNotSingleObject)
	assert.Contains(t, err.Error(), "/data/bad.json")
}

func TestFlag(t *testing.T) {
	tests := []struct {
		in   string
		want Flag
	}{
		{`true`, true},
		{`false`, false},
		{`"yes"`, true},
		{`"YES"`, true},
		{`"no"`, false},
		{`"true"`, true},
		{`"1"`, true},
		{`1`, true},
		{`0`, false},
		{`null`, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f := Flag(!tt.want)
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f)
		})
	}

	var f Flag
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &f))
}
