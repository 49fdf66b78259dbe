// Command json-to-phot pivots one object's photometry into a time by band
// table, written as <object>_lc.txt, and plots it as <object>_lc.png.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrotransients/sne-tools/internal/fsutil"
	"github.com/astrotransients/sne-tools/internal/lightcurve"
	"github.com/astrotransients/sne-tools/internal/sne"
	"github.com/astrotransients/sne-tools/internal/version"
)

var (
	outDir      = flag.String("outdir", "", "Directory for the table and plot (default: next to the input)")
	noPlot      = flag.Bool("no-plot", false, "Write the table only")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	path := flag.Arg(0)
	if path == "" {
		var err error
		path, err = promptPath(os.Stdin, os.Stdout)
		if err != nil {
			log.Fatalf("failed to read file name: %v", err)
		}
	}

	written, err := run(fsutil.OSFileSystem{}, path, *outDir, !*noPlot)
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range written {
		log.Printf("wrote %s", f)
	}
}

// promptPath asks for the input file on stdin.
func promptPath(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "File to read:  ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", fmt.Errorf("no file given")
	}
	return path, nil
}

// run pivots path and writes the outputs, returning their paths.
func run(fs fsutil.FileSystem, path, outDir string, plot bool) ([]string, error) {
	rec, err := sne.LoadRecord(fs, path)
	if err != nil {
		return nil, err
	}
	table := lightcurve.Pivot(lightcurve.Observations(rec))

	base := lightcurve.OutputBase(path)
	if outDir != "" {
		if err := fs.MkdirAll(outDir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		base = filepath.Join(outDir, filepath.Base(base))
	}

	var buf bytes.Buffer
	if err := lightcurve.WriteTable(&buf, table); err != nil {
		return nil, err
	}
	txt := base + "_lc.txt"
	if err := fs.WriteFile(txt, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", txt, err)
	}
	written := []string{txt}

	if !plot {
		return written, nil
	}
	if len(table.Times) == 0 {
		log.Printf("%s has no timed photometry, skipping plot", rec.Name)
		return written, nil
	}

	buf.Reset()
	if err := lightcurve.PlotPNG(&buf, rec.Name, table); err != nil {
		return nil, fmt.Errorf("plot %s: %w", rec.Name, err)
	}
	png := base + "_lc.png"
	if err := fs.WriteFile(png, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", png, err)
	}
	return append(written, png), nil
}
