package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/astrotransients/sne-tools/internal/config"
	"github.com/astrotransients/sne-tools/internal/security"
	"github.com/astrotransients/sne-tools/internal/sne"
)

// Columns is the fixed row schema of the published catalog.
var Columns = []string{
	"check",
	"name",
	"aliases",
	"discoverdate",
	"maxdate",
	"maxappmag",
	"maxabsmag",
	"host",
	"instruments",
	"redshift",
	"hvel",
	"lumdist",
	"claimedtype",
	"data",
	"responsive",
}

// HeaderLabels are the table header cells, one per entry of Columns.
var HeaderLabels = []string{
	"",
	"Name",
	"Aliases",
	"Discovery Date",
	"Date of Max",
	"<em>m</em><sub>max</sub>",
	"<em>M</em><sub>max</sub>",
	"Host Name",
	"Instruments/Bands",
	"<em>z</em>",
	"<em>v</em><sub>&#9737;</sub> (km/s)",
	"<em>d</em><sub>L</sub> (Mpc)",
	"Claimed Type",
	"Data",
	"",
}

// PlotLinkPrefix is the site-relative directory of object pages.
const PlotLinkPrefix = "sne/"

// ErrNonNumericYear aborts a run: an object's discovery year is present
// but not a number, so its data repository cannot be determined.
var ErrNonNumericYear = errors.New("discovery year is not a number")

// fieldString renders a metadata value the way it appears in the source
// file, reporting false when the field is absent or null.
func fieldString(rec *sne.Record, key string) (string, bool) {
	if s, ok := rec.Text(key); ok {
		return s, true
	}
	v, ok := rec.Field(key)
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

// RepoFolder picks the data repository holding rec: the first folder whose
// final year is not before the discovery year. Records without a year, or
// dated after every folder, belong to the first folder.
func RepoFolder(rec *sne.Record, folders []string) (string, error) {
	if len(folders) == 0 {
		return "", errors.New("no repo folders configured")
	}
	v, ok := rec.Field("discoveryear")
	if !ok || v == nil {
		return folders[0], nil
	}
	s, isText := rec.Text("discoveryear")
	if !isText {
		return "", fmt.Errorf("%s: %w: %v", rec.Name, ErrNonNumericYear, v)
	}
	year, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %q", rec.Name, ErrNonNumericYear, s)
	}

	for _, folder := range folders {
		last, err := config.FolderYear(folder)
		if err != nil {
			return "", err
		}
		if year <= float64(last) {
			return folder, nil
		}
	}
	return folders[0], nil
}

// FormatDate joins <prefix>year, <prefix>month and <prefix>day into
// YYYY[-MM[-DD]]. Month is only used with a year, day only with a month.
func FormatDate(rec *sne.Record, prefix string) string {
	year, ok := fieldString(rec, prefix+"year")
	if !ok {
		return ""
	}
	date := year
	month, ok := fieldString(rec, prefix+"month")
	if !ok {
		return date
	}
	date += "-" + zeroPad(month)
	if day, ok := fieldString(rec, prefix+"day"); ok {
		date += "-" + zeroPad(day)
	}
	return date
}

// zeroPad left-pads s with zeros to two characters, after any sign.
func zeroPad(s string) string {
	if len(s) >= 2 {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	return sign + strings.Repeat("0", 2-len(sign)-len(s)) + s
}

// Instruments summarises which instruments observed which bands, e.g.
// "Swift (U, B, V), UVOT". Bands appear under their short alias, ordered by
// wavelength. Without instrument data the summary is just the band list;
// ok is false when there is nothing to report.
func Instruments(rec *sne.Record) (summary string, ok bool) {
	instSet := make(map[string]bool)
	for _, p := range rec.Photometry {
		if p.Instrument != "" {
			instSet[p.Instrument] = true
		}
	}

	if len(instSet) == 0 {
		bands := shortBands(rec.Photometry, func(sne.Photometry) bool { return true })
		if len(bands) == 0 {
			return "", false
		}
		return strings.Join(bands, ", "), true
	}

	instruments := make([]string, 0, len(instSet))
	for inst := range instSet {
		instruments = append(instruments, inst)
	}
	sort.Strings(instruments)

	parts := make([]string, len(instruments))
	for i, inst := range instruments {
		bands := shortBands(rec.Photometry, func(p sne.Photometry) bool { return p.Instrument == inst })
		parts[i] = inst
		if len(bands) > 0 {
			parts[i] += " (" + strings.Join(bands, ", ") + ")"
		}
	}
	return strings.Join(parts, ", "), true
}

func shortBands(photometry []sne.Photometry, keep func(sne.Photometry) bool) []string {
	seen := make(map[string]bool)
	var bands []string
	for _, p := range photometry {
		if !keep(p) {
			continue
		}
		b := sne.BandShortAlias(p.Band)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		bands = append(bands, b)
	}
	sort.Slice(bands, func(i, j int) bool {
		wi, wj := sne.BandWavelength(bands[i]), sne.BandWavelength(bands[j])
		if wi != wj {
			return wi < wj
		}
		return bands[i] < bands[j]
	})
	return bands
}

// PlotLink is the site-relative link to an object's page.
func PlotLink(name string) string {
	return PlotLinkPrefix + security.EventFilename(name) + ".html"
}

// DataLinks builds the catalog's data column: icon links to the raw file,
// the light curve and the spectra, then the photometry count and the
// spectra count in parentheses.
func DataLinks(name, repoFolder, dataURL string, numPhoto, numSpectra int) string {
	var sb strings.Builder
	sb.WriteString("<span class='ics'>")
	fmt.Fprintf(&sb, "<a class='dci' href='%s/%s/%s.json' download></a>",
		strings.TrimRight(dataURL, "/"), repoFolder, name)
	if numPhoto > 0 {
		fmt.Fprintf(&sb, "<a class='lci' href='%s' target='_blank'></a>", PlotLink(name))
	}
	if numSpectra > 0 {
		fmt.Fprintf(&sb, "<a class='sci' href='%s' target='_blank'></a>", PlotLink(name))
	}
	if numPhoto > 0 {
		fmt.Fprintf(&sb, " %d", numPhoto)
	}
	if numSpectra > 0 {
		fmt.Fprintf(&sb, " (%d)", numSpectra)
	}
	sb.WriteString("</span>")
	return sb.String()
}

// NormalizeType cleans a claimed type for the type tally: uncertainty
// marks are trimmed, two legacy spellings are unified, and an empty type
// becomes "Unknown".
func NormalizeType(claimed string) string {
	t := strings.Trim(claimed, "?* ")
	t = strings.ReplaceAll(t, "Ibc", "Ib/c")
	t = strings.ReplaceAll(t, "IIP", "II P")
	if t == "" {
		return "Unknown"
	}
	return t
}

// ClaimedType returns rec's normalized claimed type.
func ClaimedType(rec *sne.Record) string {
	s, _ := fieldString(rec, "claimedtype")
	return NormalizeType(s)
}
