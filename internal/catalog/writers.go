package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/astrotransients/sne-tools/internal/sne"
)

// Output file names, relative to the output directory.
const (
	SNEPagesFile = "snepages.csv"
	SourcesFile  = "sources.csv"
	PieFile      = "pie.csv"
	TypesFile    = "types.csv"
	HasPhotoFile = "hasphoto.html"
	CountFile    = "snecount.html"
	CatalogJSON  = "sne-catalog.json"
	CatalogHTML  = "catalog.html"
)

var tagPattern = regexp.MustCompile(`<[^<]+?>`)

// StripTags removes markup tags from s.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

func (b *Builder) writeSummaries(entries []*entry, res *Result) error {
	if err := b.fs.MkdirAll(b.opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pages := make([][]string, 0, len(entries))
	for _, e := range entries {
		if !e.hasPhoto() {
			continue
		}
		row := append([]string(nil), e.rec.Aliases...)
		row = append(row, strings.TrimRight(b.opts.SiteURL, "/")+"/"+PlotLink(e.rec.Name))
		pages = append(pages, row)
	}

	catalogJSON, err := EncodeCatalog(res.Rows)
	if err != nil {
		return err
	}

	outputs := []struct {
		name string
		data []byte
	}{
		{SNEPagesFile, quoteAllCSV(pages)},
		{SourcesFile, countsCSV("Source", res.Sources)},
		{PieFile, countsCSV("Category", []Count{
			{Name: "Has light curve", Number: res.HasPhoto},
			{Name: "No light curve", Number: res.NoPhoto},
		})},
		{HasPhotoFile, []byte(strconv.Itoa(res.HasPhoto))},
		{CountFile, []byte(strconv.Itoa(res.Objects))},
		{TypesFile, countsCSV("Type", res.Types)},
		{CatalogJSON, catalogJSON},
		{CatalogHTML, []byte(TableSkeleton())},
	}

	for _, o := range outputs {
		path := b.outputPath(o.name)
		if err := b.fs.WriteFile(path, o.data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		res.Outputs = append(res.Outputs, path)
	}
	return nil
}

// countsCSV writes a two-column frequency table with a header row.
func countsCSV(label string, counts []Count) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	_ = w.Write([]string{label, "Number"})
	for _, c := range counts {
		_ = w.Write([]string{c.Name, strconv.Itoa(c.Number)})
	}
	w.Flush()
	return buf.Bytes()
}

// quoteAllCSV writes rows with every field quoted, which encoding/csv
// only does for fields that need it.
func quoteAllCSV(rows [][]string) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		}
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// EncodeCatalog renders rows as the compact {"data": [...]} document read
// by the catalog table.
func EncodeCatalog(rows []sne.Row) ([]byte, error) {
	if rows == nil {
		rows = []sne.Row{}
	}
	data, err := sne.Marshal(struct {
		Data []sne.Row `json:"data"`
	}{rows})
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return data, nil
}

// TableSkeleton is the empty HTML table the catalog page fills in from
// the JSON document.
func TableSkeleton() string {
	var sb strings.Builder
	sb.WriteString("<table id=\"example\" class=\"display\" cellspacing=\"0\" width=\"100%\">\n")
	sb.WriteString("\t<thead>\n\t\t<tr>\n")
	for i, col := range Columns {
		fmt.Fprintf(&sb, "\t\t\t<th class=\"%s\">%s</th>\n", col, HeaderLabels[i])
	}
	sb.WriteString("\t\t</tr>\n\t</thead>\n")
	sb.WriteString("\t<tfoot>\n\t\t<tr>\n")
	for _, label := range HeaderLabels {
		fmt.Fprintf(&sb, "\t\t\t<th>%s</th>\n", label)
	}
	sb.WriteString("\t\t</tr>\n\t</tfoot>\n")
	sb.WriteString("</table>\n")
	return sb.String()
}
