package catalog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrotransients/sne-tools/internal/sne"
)

func TestTableSkeleton(t *testing.T) {
	html := TableSkeleton()

	assert.True(t, strings.HasPrefix(html, `<table id="example" class="display" cellspacing="0" width="100%">`))
	assert.Equal(t, len(Columns), strings.Count(html, "<th class="))
	assert.Equal(t, len(Columns), strings.Count(html, "<th>"))
	assert.Equal(t, 1, strings.Count(html, "<thead>"))
	assert.Contains(t, html, `<th class="name">Name</th>`)
	assert.Contains(t, html, `<th class="lumdist"><em>d</em><sub>L</sub> (Mpc)</th>`)
	assert.Contains(t, html, "\t\t\t<th>Claimed Type</th>\n")
	assert.Equal(t, 1, strings.Count(html, "</thead>"))
	assert.Equal(t, 1, strings.Count(html, "</tfoot>"))
	assert.True(t, strings.HasSuffix(html, "</table>\n"))
}

func TestHeaderLabelsMatchColumns(t *testing.T) {
	assert.Len(t, HeaderLabels, len(Columns))
}

func TestEncodeCatalog(t *testing.T) {
	b, err := EncodeCatalog(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, string(b))

	rows := []sne.Row{
		{{Key: "name", Value: "SN1"}, {Key: "data", Value: "<span class='ics'>&</span>"}},
		{{Key: "name", Value: "Supernova é"}, {Key: "data", Value: nil}},
	}
	b, err = EncodeCatalog(rows)
	require.NoError(t, err)
	assert.Equal(t, `{"data":[{"name":"SN1","data":"<span class='ics'>&</span>"},{"name":"Supernova é","data":null}]}`, string(b))
}

func TestCountsCSV(t *testing.T) {
	got := countsCSV("Source", []Count{
		{Name: "Smith, J. (2011)", Number: 4},
		{Name: "ATel 1234", Number: 1},
	})
	assert.Equal(t, "Source,Number\r\n\"Smith, J. (2011)\",4\r\nATel 1234,1\r\n", string(got))
}

func TestQuoteAllCSV(t *testing.T) {
	got := quoteAllCSV([][]string{
		{"SN1", `say "hi"`},
		{"SN2"},
	})
	assert.Equal(t, "\"SN1\",\"say \"\"hi\"\"\"\r\n\"SN2\"\r\n", string(got))
	assert.Empty(t, quoteAllCSV(nil))
}

func TestWriteReport(t *testing.T) {
	res := &Result{
		Objects:      3,
		HasPhoto:     1,
		NoPhoto:      2,
		PagesWritten: 2,
		Sources:      []Count{{Name: "Nugent et al. (2011)", Number: 2}},
		Types:        []Count{{Name: "Ia", Number: 2}, {Name: "II P", Number: 1}},
		Outputs:      []string{"/out/a", "/out/b"},
		Elapsed:      1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	WriteReport(&buf, res, 1)
	// Header cells may be upper-cased by the table style.
	out := strings.ToLower(buf.String())

	assert.Contains(t, out, "catalog build")
	assert.Contains(t, out, "has light curve")
	assert.Contains(t, out, "pages written")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "claimed type")
	assert.Contains(t, out, "ia")
	assert.NotContains(t, out, "ii p")

	buf.Reset()
	WriteReport(&buf, &Result{}, 5)
	assert.NotContains(t, strings.ToLower(buf.String()), "claimed type")
}
