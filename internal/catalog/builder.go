// Package catalog builds the published supernova catalog from the per-era
// data repositories: a JSON table of every object, summary CSVs for the
// site's charts, and a plot page per object with data to show.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/astrotransients/sne-tools/internal/db"
	"github.com/astrotransients/sne-tools/internal/fsutil"
	"github.com/astrotransients/sne-tools/internal/monitoring"
	"github.com/astrotransients/sne-tools/internal/plotpage"
	"github.com/astrotransients/sne-tools/internal/security"
	"github.com/astrotransients/sne-tools/internal/sne"
	"github.com/astrotransients/sne-tools/internal/timeutil"
)

// Options controls a build.
type Options struct {
	InputRoot   string
	RepoFolders []string
	OutputDir   string
	PlotDir     string
	SiteURL     string
	DataURL     string

	WriteCatalog bool
	WriteHTML    bool
	// Test stops after the first object with both photometry and spectra
	// and suffixes summary outputs with ".test".
	Test bool
}

// PageRenderer writes an object's plot page.
type PageRenderer interface {
	Render(w io.Writer, rec *sne.Record, repoFolder string) error
}

// Index receives every catalog row of a run.
type Index interface {
	UpsertObject(o db.Object) error
}

// Builder runs catalog builds.
type Builder struct {
	fs    fsutil.FileSystem
	opts  Options
	pages PageRenderer
	index Index
	runID string
	clock timeutil.Clock
}

// NewBuilder returns a Builder reading and writing through fs.
func NewBuilder(fs fsutil.FileSystem, opts Options, pages PageRenderer) *Builder {
	return &Builder{
		fs:    fs,
		opts:  opts,
		pages: pages,
		clock: timeutil.RealClock{},
	}
}

// SetClock replaces the clock used for index timestamps and run timing.
func (b *Builder) SetClock(c timeutil.Clock) {
	b.clock = c
}

// SetIndex records every object row into idx under runID.
func (b *Builder) SetIndex(idx Index, runID string) {
	b.index = idx
	b.runID = runID
}

// entry is one loaded object with its derived fields set.
type entry struct {
	path   string
	rec    *sne.Record
	folder string
}

func (e *entry) hasPhoto() bool   { return len(e.rec.Photometry) > 0 }
func (e *entry) hasSpectra() bool { return len(e.rec.Spectra) > 0 }

// Count is one line of a frequency table.
type Count struct {
	Name   string
	Number int
}

// Result summarises a build.
type Result struct {
	Objects      int
	PagesWritten int
	PagesSkipped int
	HasPhoto     int
	NoPhoto      int
	Sources      []Count
	Types        []Count
	Rows         []sne.Row
	Outputs      []string
	Elapsed      time.Duration
}

// Run builds the catalog. All inputs are loaded and validated before the
// first output is written, so a fatal input error leaves the output
// directory untouched.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := b.clock.Now()
	files, err := b.discover()
	if err != nil {
		return nil, err
	}

	entries, err := b.load(ctx, files)
	if err != nil {
		return nil, err
	}

	res := &Result{Objects: len(entries)}

	if b.opts.WriteHTML {
		if err := b.writePages(ctx, entries, res); err != nil {
			return nil, err
		}
	}

	if err := b.summarize(entries, res); err != nil {
		return nil, err
	}

	if b.opts.WriteCatalog {
		if err := b.writeSummaries(entries, res); err != nil {
			return nil, err
		}
	}

	res.Elapsed = b.clock.Since(start)
	return res, nil
}

// discover lists every object file across the repo folders, ordered by
// lower-cased path.
func (b *Builder) discover() ([]string, error) {
	var files []string
	for _, folder := range b.opts.RepoFolders {
		matches, err := b.fs.Glob(filepath.Join(b.opts.InputRoot, folder, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, err)
		}
		files = append(files, matches...)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})
	return files, nil
}

func (b *Builder) load(ctx context.Context, files []string) ([]*entry, error) {
	var entries []*entry
	byName := make(map[string]int)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		monitoring.Debugf("%s", path)

		rec, err := sne.LoadRecord(b.fs, path)
		if err != nil {
			return nil, err
		}
		folder, err := RepoFolder(rec, b.opts.RepoFolders)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		e := &entry{path: path, rec: rec, folder: folder}
		b.derive(e)

		if i, dup := byName[rec.Name]; dup {
			monitoring.Logf("warning: %s redefines %s (first seen in %s)", path, rec.Name, entries[i].path)
			entries[i] = e
		} else {
			byName[rec.Name] = len(entries)
			entries = append(entries, e)
		}

		if b.opts.Test && e.hasPhoto() && e.hasSpectra() {
			break
		}
	}
	return entries, nil
}

// derive sets the computed catalog fields on e's record.
func (b *Builder) derive(e *entry) {
	rec := e.rec
	nphoto, nspec := len(rec.Photometry), len(rec.Spectra)

	rec.Set("data", DataLinks(rec.Name, e.folder, b.opts.DataURL, nphoto, nspec))
	rec.Set("numphoto", nphoto)
	rec.Set("numspectra", nspec)
	if nphoto > 0 {
		rec.Set("photoplot", PlotLink(rec.Name))
	}
	if nspec > 0 {
		rec.Set("spectraplot", PlotLink(rec.Name))
	}
	if inst, ok := Instruments(rec); ok {
		rec.Set("instruments", inst)
	}
	rec.Set("discoverdate", FormatDate(rec, "discover"))
	rec.Set("maxdate", FormatDate(rec, "max"))
}

// PagePath is where name's plot page is written.
func (b *Builder) PagePath(name string) string {
	return filepath.Join(b.opts.PlotDir, security.EventFilename(name)+".html")
}

func (b *Builder) writePages(ctx context.Context, entries []*entry, res *Result) error {
	if err := b.fs.MkdirAll(b.opts.PlotDir, 0755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}

	for _, e := range entries {
		if !e.hasPhoto() && !e.hasSpectra() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		out := b.PagePath(e.rec.Name)
		if err := security.ValidatePathWithinDirectory(out, b.opts.PlotDir); err != nil {
			return fmt.Errorf("%s: %w", e.rec.Name, err)
		}

		stale, err := NeedsHTML(b.fs, e.path, out)
		if err != nil {
			return err
		}
		if !stale {
			res.PagesSkipped++
			continue
		}

		var buf bytes.Buffer
		if err := b.pages.Render(&buf, e.rec, e.folder); err != nil {
			return err
		}
		if err := b.fs.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		monitoring.Logf("%s", out)
		res.PagesWritten++
	}
	return nil
}

// NeedsHTML reports whether the page at out must be regenerated from src:
// true unless out exists and src was last modified strictly before it.
func NeedsHTML(fs fsutil.FileSystem, src, out string) (bool, error) {
	outInfo, err := fs.Stat(out)
	if err != nil {
		if fs.Exists(out) {
			return false, fmt.Errorf("stat %s: %w", out, err)
		}
		return true, nil
	}
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}
	return !srcInfo.ModTime().Before(outInfo.ModTime()), nil
}

// summarize fills the tallies and rows of res and feeds the index.
func (b *Builder) summarize(entries []*entry, res *Result) error {
	sourceIdx := make(map[string]int)
	typeIdx := make(map[string]int)
	now := b.clock.Now()

	for _, e := range entries {
		rec := e.rec

		for _, s := range rec.Sources {
			name := StripTags(plotpage.XMLCharRefs(s.Name))
			if i, ok := sourceIdx[name]; ok {
				res.Sources[i].Number++
			} else {
				sourceIdx[name] = len(res.Sources)
				res.Sources = append(res.Sources, Count{Name: name, Number: 1})
			}
		}

		if len(rec.Photometry) < 3 {
			res.NoPhoto++
		}

		ctype := ClaimedType(rec)
		if i, ok := typeIdx[ctype]; ok {
			res.Types[i].Number++
		} else {
			typeIdx[ctype] = len(res.Types)
			res.Types = append(res.Types, Count{Name: ctype, Number: 1})
		}

		row := rec.Row(Columns)
		res.Rows = append(res.Rows, row)

		if b.index != nil {
			raw, err := sne.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode %s: %w", rec.Name, err)
			}
			err = b.index.UpsertObject(db.Object{
				Name:        rec.Name,
				RunID:       b.runID,
				RepoFolder:  e.folder,
				Row:         raw,
				NumPhoto:    len(rec.Photometry),
				NumSpectra:  len(rec.Spectra),
				ClaimedType: ctype,
				UpdatedAt:   now,
			})
			if err != nil {
				return err
			}
		}
	}

	res.HasPhoto = res.Objects - res.NoPhoto
	sortCounts(res.Sources)
	sortCounts(res.Types)
	return nil
}

// sortCounts orders by descending count; equal counts keep first-seen order.
func sortCounts(c []Count) {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Number > c[j].Number })
}

func (b *Builder) outputPath(name string) string {
	if b.opts.Test {
		name += ".test"
	}
	return filepath.Join(b.opts.OutputDir, name)
}
