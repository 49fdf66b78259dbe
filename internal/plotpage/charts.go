package plotpage

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"

	"github.com/astrotransients/sne-tools/internal/sne"
)

const (
	chartWidth  = "700px"
	chartHeight = "500px"

	detectionSize  = 6
	upperLimitSize = 10
)

// photoPoint is one plottable photometry measurement.
type photoPoint struct {
	time, mag, err float64
	hasErr         bool
	band           string
	instrument     string
	sources        string
	upperLimit     bool
}

func photoPoints(rec *sne.Record) []photoPoint {
	pts := make([]photoPoint, 0, len(rec.Photometry))
	for _, p := range rec.Photometry {
		mag := p.Mag()
		if !p.Time.Valid || !mag.Valid {
			continue
		}
		pt := photoPoint{
			time:       p.Time.Value,
			mag:        mag.Value,
			band:       p.Band,
			instrument: p.Instrument,
			sources:    strings.Join(p.SourceIDs(), ", "),
			upperLimit: bool(p.UpperLimit),
		}
		// A "nan" uncertainty is as good as none.
		if e := p.Err(); e.Valid && !math.IsNaN(e.Value) {
			pt.err, pt.hasErr = e.Value, true
		}
		pts = append(pts, pt)
	}
	return pts
}

// axisRange is a [Min, Max] pair for a chart axis.
type axisRange struct {
	Min, Max float64
}

// photometryRanges pads the time axis by 10% of the observed span (1.0
// for a single epoch) and the magnitude axis by 0.5 beyond the error
// extremes.
func photometryRanges(pts []photoPoint) (x, y axisRange) {
	times := make([]float64, len(pts))
	upper := make([]float64, len(pts))
	lower := make([]float64, len(pts))
	for i, p := range pts {
		times[i] = p.time
		upper[i] = p.mag + p.err
		lower[i] = p.mag - p.err
	}

	tmin, tmax := floats.Min(times), floats.Max(times)
	buffer := 1.0
	if len(pts) > 1 {
		buffer = 0.1 * (tmax - tmin)
	}
	x = axisRange{Min: tmin - buffer, Max: tmax + buffer}
	y = axisRange{Min: floats.Min(lower) - 0.5, Max: floats.Max(upper) + 0.5}
	return x, y
}

// bandsByAlias returns the distinct bands ordered by display name.
func bandsByAlias(pts []photoPoint) []string {
	seen := make(map[string]bool)
	var bands []string
	for _, p := range pts {
		if !seen[p.band] {
			seen[p.band] = true
			bands = append(bands, p.band)
		}
	}
	sort.Slice(bands, func(i, j int) bool {
		ai, aj := sne.BandAlias(bands[i]), sne.BandAlias(bands[j])
		if ai != aj {
			return ai < aj
		}
		return bands[i] < bands[j]
	})
	return bands
}

func tooltip(p photoPoint, withInstrument bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Source ID: %s<br/>", html.EscapeString(p.sources))
	fmt.Fprintf(&sb, "MJD: %.2f<br/>", p.time)
	fmt.Fprintf(&sb, "Magnitude: %.3f<br/>", p.mag)
	if p.hasErr {
		fmt.Fprintf(&sb, "Error: %.3f<br/>", p.err)
	} else {
		sb.WriteString("Error: n/a<br/>")
	}
	fmt.Fprintf(&sb, "Band: %s", html.EscapeString(p.band))
	if withInstrument {
		fmt.Fprintf(&sb, "<br/>Instrument: %s", html.EscapeString(p.instrument))
	}
	return sb.String()
}

func (r *Renderer) photometryChart(rec *sne.Record) *charts.Scatter {
	pts := photoPoints(rec)

	timeUnit := ""
	if len(rec.Photometry) > 0 {
		timeUnit = rec.Photometry[0].TimeUnit
	}

	xAxis := opts.XAxis{Type: "value", Name: fmt.Sprintf("Time (%s)", timeUnit), NameLocation: "middle", NameGap: 25}
	yAxis := opts.YAxis{Type: "value", Name: "AB Magnitude", NameLocation: "middle", NameGap: 40, Inverse: opts.Bool(true)}
	if len(pts) > 0 {
		xr, yr := photometryRanges(pts)
		xAxis.Min, xAxis.Max = xr.Min, xr.Max
		yAxis.Min, yAxis.Max = yr.Min, yr.Max
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  rec.Name,
			Width:      chartWidth,
			Height:     chartHeight,
			ChartID:    chartID("photometry", rec.Name),
			AssetsHost: r.opts.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Photometry for " + rec.Name}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithToolboxOpts(toolbox()),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	)

	withInstrument := false
	for _, p := range pts {
		if p.instrument != "" {
			withInstrument = true
			break
		}
	}

	bars := charts.NewLine()
	for _, band := range bandsByAlias(pts) {
		name := sne.BandAlias(band)
		color := r.opts.Palette.Color(band)

		var detections, limits []opts.ScatterData
		var errBars []opts.LineData
		for _, p := range pts {
			if p.band != band {
				continue
			}
			if p.upperLimit {
				limits = append(limits, opts.ScatterData{
					Name:         tooltip(p, withInstrument),
					Value:        []interface{}{p.time, p.mag},
					Symbol:       "triangle",
					SymbolRotate: 180,
					SymbolSize:   upperLimitSize,
				})
				continue
			}
			detections = append(detections, opts.ScatterData{
				Name:  tooltip(p, withInstrument),
				Value: []interface{}{p.time, p.mag},
			})
			if p.err > 0 {
				errBars = append(errBars,
					opts.LineData{Value: []interface{}{p.time, p.mag - p.err}},
					opts.LineData{Value: []interface{}{p.time, p.mag + p.err}},
					opts.LineData{Value: "-"},
				)
			}
		}

		if len(detections) > 0 {
			scatter.AddSeries(name, detections,
				charts.WithScatterChartOpts(opts.ScatterChart{Symbol: "circle", SymbolSize: detectionSize}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			)
		}
		if len(errBars) > 0 {
			bars.AddSeries(name, errBars,
				charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			)
		}
		if len(limits) > 0 {
			scatter.AddSeries(name, limits,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			)
		}
	}
	scatter.Overlap(bars)

	return scatter
}

// offsetSpectra shifts each flux series up by the accumulated
// 0.8*max-min of the series before it, in place, and returns the largest
// single-series flux span.
func offsetSpectra(fluxes [][]float64) float64 {
	height, maxSpan := 0.0, 0.0
	for _, flux := range fluxes {
		if len(flux) == 0 {
			continue
		}
		lo, hi := floats.Min(flux), floats.Max(flux)
		floats.AddConst(height, flux)
		height += 0.8*hi - lo
		if span := hi - lo; span > maxSpan {
			maxSpan = span
		}
	}
	return maxSpan
}

func (r *Renderer) spectraChart(rec *sne.Record) *charts.Line {
	waves := make([][]float64, 0, len(rec.Spectra))
	fluxes := make([][]float64, 0, len(rec.Spectra))
	for _, s := range rec.Spectra {
		w, f := s.Series()
		waves = append(waves, w)
		fluxes = append(fluxes, f)
	}
	maxSpan := offsetSpectra(fluxes)

	waveUnit, fluxUnit := "", ""
	if len(rec.Spectra) > 0 {
		waveUnit, fluxUnit = rec.Spectra[0].WaveUnit, rec.Spectra[0].FluxUnit
	}
	yName := ""
	if len(rec.Spectra) > 1 {
		yName = fmt.Sprintf("Flux (%s) + offset", fluxUnit)
	}

	xAxis := opts.XAxis{Type: "value", Name: fmt.Sprintf("Wavelength (%s)", waveUnit), NameLocation: "middle", NameGap: 25}
	yAxis := opts.YAxis{Type: "value", Name: yName, NameLocation: "middle", NameGap: 50}

	var allWave, allFlux []float64
	for i := range waves {
		allWave = append(allWave, waves[i]...)
		allFlux = append(allFlux, fluxes[i]...)
	}
	if len(allWave) > 0 {
		buffer := 0.1 * maxSpan
		xAxis.Min, xAxis.Max = floats.Min(allWave), floats.Max(allWave)
		yAxis.Min, yAxis.Max = floats.Min(allFlux)-buffer, floats.Max(allFlux)+buffer
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  rec.Name,
			Width:      chartWidth,
			Height:     chartHeight,
			ChartID:    chartID("spectra", rec.Name),
			AssetsHost: r.opts.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Spectra for " + rec.Name}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithToolboxOpts(toolbox()),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	)

	for i := range waves {
		if len(waves[i]) == 0 {
			continue
		}
		data := make([]opts.LineData, len(waves[i]))
		for j := range waves[i] {
			data[j] = opts.LineData{Value: []interface{}{waves[i][j], fluxes[i][j]}}
		}
		line.AddSeries(fmt.Sprintf("Spectrum %d", i+1), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: 1}),
		)
	}

	return line
}

func toolbox() opts.Toolbox {
	return opts.Toolbox{
		Show: opts.Bool(true),
		Feature: &opts.ToolBoxFeature{
			SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{Show: opts.Bool(true)},
			DataZoom:    &opts.ToolBoxFeatureDataZoom{Show: opts.Bool(true)},
			Restore:     &opts.ToolBoxFeatureRestore{Show: opts.Bool(true)},
		},
	}
}

// chartID turns an object name into a stable identifier; go-echarts uses
// it as both a DOM id and a JavaScript variable suffix.
func chartID(kind, name string) string {
	var sb strings.Builder
	sb.WriteString(kind)
	sb.WriteByte('_')
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
