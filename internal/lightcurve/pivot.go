// Package lightcurve pivots an object's photometry into a wide table with
// one row per observation time and a magnitude/error column pair per band.
package lightcurve

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/astrotransients/sne-tools/internal/monitoring"
	"github.com/astrotransients/sne-tools/internal/sne"
)

// Observation is one photometric point. Err is NaN when no uncertainty was
// recorded.
type Observation struct {
	Time float64
	Mag  float64
	Err  float64
	Band string
}

// Table is the pivoted light curve. Cells[i] has 2*len(Bands) entries:
// magnitude then error for each band in Bands order. Missing cells are NaN.
type Table struct {
	Bands []string
	Times []float64
	Cells [][]float64
}

// Observations extracts the photometry of rec. Points without a time are
// dropped; a missing magnitude is kept as NaN.
func Observations(rec *sne.Record) []Observation {
	obs := make([]Observation, 0, len(rec.Photometry))
	for i, p := range rec.Photometry {
		if !p.Time.Valid {
			monitoring.Debugf("%s: photometry point %d has no time, skipped", rec.Name, i)
			continue
		}
		o := Observation{
			Time: p.Time.Value,
			Mag:  math.NaN(),
			Err:  math.NaN(),
			Band: p.Band,
		}
		if m := p.Mag(); m.Valid {
			o.Mag = m.Value
		}
		if e := p.Err(); e.Valid {
			o.Err = e.Value
		}
		obs = append(obs, o)
	}
	return obs
}

// Pivot builds the table. Bands are the sorted unique band labels and
// times the sorted unique observation times. When two observations share a
// time and band the later one wins.
func Pivot(obs []Observation) Table {
	bandSet := make(map[string]struct{})
	timeSet := make(map[float64]struct{})
	for _, o := range obs {
		bandSet[o.Band] = struct{}{}
		timeSet[o.Time] = struct{}{}
	}

	bands := make([]string, 0, len(bandSet))
	for b := range bandSet {
		bands = append(bands, b)
	}
	sort.Strings(bands)

	times := make([]float64, 0, len(timeSet))
	for t := range timeSet {
		times = append(times, t)
	}
	sort.Float64s(times)

	bandIdx := make(map[string]int, len(bands))
	for i, b := range bands {
		bandIdx[b] = i
	}
	timeIdx := make(map[float64]int, len(times))
	for i, t := range times {
		timeIdx[t] = i
	}

	cells := make([][]float64, len(times))
	for i := range cells {
		row := make([]float64, 2*len(bands))
		for j := range row {
			row[j] = math.NaN()
		}
		cells[i] = row
	}
	for _, o := range obs {
		row := cells[timeIdx[o.Time]]
		col := 2 * bandIdx[o.Band]
		row[col] = o.Mag
		row[col+1] = o.Err
	}

	return Table{Bands: bands, Times: times, Cells: cells}
}

// Columns is the number of columns in the written table: time plus a
// magnitude/error pair per band.
func (t Table) Columns() int {
	return 1 + 2*len(t.Bands)
}

// Mag returns the magnitude cell for row i and band index b.
func (t Table) Mag(i, b int) float64 { return t.Cells[i][2*b] }

// Err returns the error cell for row i and band index b.
func (t Table) Err(i, b int) float64 { return t.Cells[i][2*b+1] }

// WriteTable writes t as tab-separated text with a "#Time" header.
// Numbers use two decimals; missing cells are written as "nan".
func WriteTable(w io.Writer, t Table) error {
	var sb strings.Builder
	sb.WriteString("#Time")
	for _, b := range t.Bands {
		sb.WriteString("\t")
		sb.WriteString(b)
		sb.WriteString("\terr")
	}
	sb.WriteString("\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, tm := range t.Times {
		sb.Reset()
		sb.WriteString(formatCell(tm))
		for _, v := range t.Cells[i] {
			sb.WriteString("\t")
			sb.WriteString(formatCell(v))
		}
		sb.WriteString("\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return nil
}

func formatCell(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// OutputBase derives the output name stem from an input path: the file
// name up to its first dot, kept in the input's directory.
func OutputBase(path string) string {
	dir, file := filepath.Split(path)
	if i := strings.Index(file, "."); i >= 0 {
		file = file[:i]
	}
	return filepath.Join(dir, file)
}
