// Command make-sne-catalog builds the supernova catalog from the per-era
// data repositories: the catalog table, its summary files, and a plot
// page for every object with photometry or spectra.
//
// "make-sne-catalog -db <path> migrate <action>" manages the schema of the
// optional catalog index instead of building.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/astrotransients/sne-tools/internal/catalog"
	"github.com/astrotransients/sne-tools/internal/config"
	"github.com/astrotransients/sne-tools/internal/db"
	"github.com/astrotransients/sne-tools/internal/fsutil"
	"github.com/astrotransients/sne-tools/internal/monitoring"
	"github.com/astrotransients/sne-tools/internal/plotpage"
	"github.com/astrotransients/sne-tools/internal/sne"
	"github.com/astrotransients/sne-tools/internal/timeutil"
	"github.com/astrotransients/sne-tools/internal/version"
)

var (
	noWriteCatalog bool
	noWriteHTML    bool
	testMode       bool
)

var (
	configPath  = flag.String("config", "", "Path to a JSON catalog config")
	inputRoot   = flag.String("input-root", "", "Directory holding the repo folders (overrides config)")
	outputDir   = flag.String("output-dir", "", "Directory for catalog outputs (overrides config)")
	dbPath      = flag.String("db", "", "SQLite catalog index to record the run in (overrides config)")
	seed        = flag.Uint64("seed", 0, "Band palette shuffle seed (overrides config)")
	topTypes    = flag.Int("top-types", 10, "Claimed types listed in the run summary")
	verbose     = flag.Bool("verbose", false, "Log every file as it is read")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func init() {
	flag.BoolVar(&noWriteCatalog, "no-write-catalog", false, "Skip the catalog table and summary files")
	flag.BoolVar(&noWriteCatalog, "wc", false, "Shorthand for -no-write-catalog")
	flag.BoolVar(&noWriteHTML, "no-write-html", false, "Skip the per-object plot pages")
	flag.BoolVar(&noWriteHTML, "wh", false, "Shorthand for -no-write-html")
	flag.BoolVar(&testMode, "test", false, "Stop after the first object with photometry and spectra; suffix outputs with .test")
	flag.BoolVar(&testMode, "t", false, "Shorthand for -test")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	monitoring.SetVerbose(*verbose)

	cfg := config.EmptyCatalogConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadCatalogConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyOverrides(cfg, set)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if flag.Arg(0) == "migrate" {
		if err := db.RunMigrateCommand(flag.Args()[1:], cfg.GetDBPath(), os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, fsutil.OSFileSystem{}, cfg); err != nil {
		log.Fatal(err)
	}
}

// applyOverrides copies the explicitly set command-line flags into cfg.
func applyOverrides(cfg *config.CatalogConfig, set map[string]bool) {
	if set["input-root"] {
		cfg.InputRoot = inputRoot
	}
	if set["output-dir"] {
		cfg.OutputDir = outputDir
	}
	if set["db"] {
		cfg.DBPath = dbPath
	}
	if set["seed"] {
		cfg.PaletteSeed = seed
	}
}

// builderOptions combines cfg with the output switches.
func builderOptions(cfg *config.CatalogConfig) catalog.Options {
	return catalog.Options{
		InputRoot:    cfg.GetInputRoot(),
		RepoFolders:  cfg.GetRepoFolders(),
		OutputDir:    cfg.GetOutputDir(),
		PlotDir:      cfg.GetPlotDir(),
		SiteURL:      cfg.GetSiteURL(),
		DataURL:      cfg.GetDataURL(),
		WriteCatalog: !noWriteCatalog,
		WriteHTML:    !noWriteHTML,
		Test:         testMode,
	}
}

func run(ctx context.Context, fs fsutil.FileSystem, cfg *config.CatalogConfig) error {
	pages := plotpage.NewRenderer(plotpage.Options{
		Palette:    sne.NewPalette(cfg.GetPaletteSeed()),
		AssetsHost: cfg.GetAssetsHost(),
		DataURL:    cfg.GetDataURL(),
		CatalogURL: cfg.GetSiteURL(),
	})
	opts := builderOptions(cfg)
	clock := timeutil.RealClock{}
	builder := catalog.NewBuilder(fs, opts, pages)
	builder.SetClock(clock)

	// The run and its object rows commit only after a successful build.
	var rt *db.RunTx
	if path := cfg.GetDBPath(); path != "" {
		index, err := db.NewDB(path)
		if err != nil {
			return fmt.Errorf("failed to open catalog index: %w", err)
		}
		defer index.Close()

		rt, err = index.BeginRun(version.Version, opts.Test, clock.Now())
		if err != nil {
			return err
		}
		defer rt.Rollback()
		builder.SetIndex(rt, rt.Run.ID)
		log.Printf("recording run %s in %s", rt.Run.ID, path)
	}

	res, err := builder.Run(ctx)
	if err != nil {
		return err
	}

	if rt != nil {
		rt.Run.ObjectCount = res.Objects
		rt.Run.PagesWritten = res.PagesWritten
		rt.Run.PagesSkipped = res.PagesSkipped
		if err := rt.Finish(clock.Now()); err != nil {
			return err
		}
	}

	catalog.WriteReport(os.Stdout, res, *topTypes)
	return nil
}
