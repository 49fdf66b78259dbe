// Package plotpage renders the static per-object HTML page: interactive
// photometry and spectrum charts followed by the object's data download
// link and source attributions.
package plotpage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/astrotransients/sne-tools/internal/sne"
)

// ErrNothingToPlot is returned for records with neither photometry nor
// spectra.
var ErrNothingToPlot = errors.New("record has no photometry or spectra")

// Options configures page rendering.
type Options struct {
	// Palette assigns band colours.
	Palette sne.Palette
	// AssetsHost is where the page loads echarts.min.js from. Empty uses
	// the go-echarts default CDN.
	AssetsHost string
	// DataURL prefixes "<repo folder>/<name>.json" in the download link.
	DataURL string
	// CatalogURL is the target of the return link.
	CatalogURL string
}

// Renderer renders plot pages.
type Renderer struct {
	opts Options
}

// NewRenderer returns a Renderer using o.
func NewRenderer(o Options) *Renderer {
	if o.Palette == nil {
		o.Palette = sne.NewPalette(0)
	}
	return &Renderer{opts: o}
}

// Render writes rec's page to w. repoFolder names the data repository
// holding the record, for the download link.
func (r *Renderer) Render(w io.Writer, rec *sne.Record, repoFolder string) error {
	hasPhoto, hasSpectra := len(rec.Photometry) > 0, len(rec.Spectra) > 0
	if !hasPhoto && !hasSpectra {
		return fmt.Errorf("%s: %w", rec.Name, ErrNothingToPlot)
	}

	page := components.NewPage()
	page.SetPageTitle(rec.Name)
	page.SetLayout(components.PageFlexLayout)
	if r.opts.AssetsHost != "" {
		page.SetAssetsHost(r.opts.AssetsHost)
	}
	if hasPhoto {
		page.AddCharts(r.photometryChart(rec))
	}
	if hasSpectra {
		page.AddCharts(r.spectraChart(rec))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", rec.Name, err)
	}

	doc, err := InjectFooter(buf.String(), r.footer(rec, repoFolder))
	if err != nil {
		return fmt.Errorf("render %s: %w", rec.Name, err)
	}
	if _, err := io.WriteString(w, doc); err != nil {
		return fmt.Errorf("write %s: %w", rec.Name, err)
	}
	return nil
}

// footer builds the markup appended to the page body.
func (r *Renderer) footer(rec *sne.Record, repoFolder string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "    <a href=\"%s/%s/%s.json\" download>Download datafile</a><br><br>\n",
		strings.TrimRight(r.opts.DataURL, "/"), repoFolder, rec.Name)

	if len(rec.Sources) > 0 {
		sb.WriteString("<em>Sources of data:</em><br><table><tr><th width=30px>ID</th><th>Source</th></tr>\n")
		for _, s := range rec.Sources {
			fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td></tr>\n", string(s.Alias), XMLCharRefs(s.Name))
		}
		sb.WriteString("</table>\n")
	}

	fmt.Fprintf(&sb, "    <br><a href=\"%s\">&lt;&lt; Return to supernova catalog</a>\n", r.opts.CatalogURL)
	return sb.String()
}

// InjectFooter inserts footer immediately before the closing body tag.
func InjectFooter(doc, footer string) (string, error) {
	i := strings.LastIndex(doc, "</body>")
	if i < 0 {
		return "", errors.New("document has no </body>")
	}
	return doc[:i] + footer + doc[i:], nil
}

// XMLCharRefs replaces every non-ASCII character with a numeric character
// reference, leaving existing markup untouched.
func XMLCharRefs(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			sb.WriteRune(r)
		} else {
			fmt.Fprintf(&sb, "&#%d;", r)
		}
	}
	return sb.String()
}
