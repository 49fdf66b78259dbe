package catalog

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteReport prints a run summary: headline counts, then the topTypes
// most common claimed types.
func WriteReport(w io.Writer, res *Result, topTypes int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Catalog build")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Objects", res.Objects})
	t.AppendRow(table.Row{"Has light curve", res.HasPhoto})
	t.AppendRow(table.Row{"No light curve", res.NoPhoto})
	t.AppendRow(table.Row{"Pages written", res.PagesWritten})
	t.AppendRow(table.Row{"Pages up to date", res.PagesSkipped})
	t.AppendRow(table.Row{"Sources cited", len(res.Sources)})
	t.AppendRow(table.Row{"Files written", len(res.Outputs)})
	t.AppendRow(table.Row{"Elapsed", res.Elapsed.Round(time.Millisecond).String()})
	t.Render()

	if len(res.Types) == 0 || topTypes <= 0 {
		return
	}
	types := res.Types
	if len(types) > topTypes {
		types = types[:topTypes]
	}

	tt := table.NewWriter()
	tt.SetOutputMirror(w)
	tt.SetStyle(table.StyleLight)
	tt.AppendHeader(table.Row{"Claimed type", "Objects"})
	for _, c := range types {
		tt.AppendRow(table.Row{c.Name, c.Number})
	}
	tt.Render()
}
