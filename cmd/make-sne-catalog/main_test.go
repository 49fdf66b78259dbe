package main

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrotransients/sne-tools/internal/catalog"
	"github.com/astrotransients/sne-tools/internal/config"
	"github.com/astrotransients/sne-tools/internal/db"
	"github.com/astrotransients/sne-tools/internal/fsutil"
)

// TestShorthandFlags verifies each short switch shares its long form's value.
func TestShorthandFlags(t *testing.T) {
	pairs := [][2]string{
		{"no-write-catalog", "wc"},
		{"no-write-html", "wh"},
		{"test", "t"},
	}
	for _, p := range pairs {
		long, short := flag.Lookup(p[0]), flag.Lookup(p[1])
		if long == nil || short == nil {
			t.Fatalf("flag pair %v not defined", p)
		}
		if long.DefValue != "false" || short.DefValue != "false" {
			t.Errorf("expected %v to default to false", p)
		}

		require.NoError(t, short.Value.Set("true"))
		if long.Value.String() != "true" {
			t.Errorf("setting -%s did not set -%s", p[1], p[0])
		}
		require.NoError(t, long.Value.Set("false"))
	}
}

func TestApplyOverrides(t *testing.T) {
	seedValue := uint64(7)
	*seed = seedValue
	*outputDir = "/srv/site"
	t.Cleanup(func() {
		*seed = 0
		*outputDir = ""
	})

	cfg := config.EmptyCatalogConfig()
	cfg.OutputDir = strPtr("/from/config")
	cfg.InputRoot = strPtr("/repos")

	applyOverrides(cfg, map[string]bool{"seed": true, "output-dir": true})

	assert.Equal(t, "/srv/site", cfg.GetOutputDir())
	assert.Equal(t, "/repos", cfg.GetInputRoot())
	assert.Equal(t, seedValue, cfg.GetPaletteSeed())
	assert.Equal(t, "", cfg.GetDBPath())
}

func TestBuilderOptions(t *testing.T) {
	noWriteHTML = true
	t.Cleanup(func() { noWriteHTML = false })

	opts := builderOptions(config.EmptyCatalogConfig())
	assert.True(t, opts.WriteCatalog)
	assert.False(t, opts.WriteHTML)
	assert.False(t, opts.Test)
	assert.Equal(t, config.DefaultRepoFolders, opts.RepoFolders)
	assert.Equal(t, opts.OutputDir, opts.PlotDir)
}

func TestRun_RecordsIndex(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("/repos/sne-2010-2014/SN2011fe.json", []byte(`{"SN2011fe": {
		"name": "SN2011fe",
		"aliases": ["SN2011fe"],
		"discoveryear": "2011",
		"claimedtype": "Ia",
		"photometry": [{"time": 55800, "band": "B", "magnitude": 14.2}]
	}}`), 0644))

	dbFile := filepath.Join(t.TempDir(), "catalog.db")
	cfg := config.EmptyCatalogConfig()
	cfg.InputRoot = strPtr("/repos")
	cfg.OutputDir = strPtr("/site")
	cfg.PlotDir = strPtr("/site/sne")
	cfg.DBPath = strPtr(dbFile)

	require.NoError(t, run(context.Background(), fs, cfg))

	assert.True(t, fs.Exists("/site/sne-catalog.json"))
	assert.True(t, fs.Exists("/site/sne/SN2011fe.html"))

	index, err := db.NewDB(dbFile)
	require.NoError(t, err)
	defer index.Close()

	runs, err := index.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].ObjectCount)
	assert.Equal(t, 1, runs[0].PagesWritten)
	assert.NotNil(t, runs[0].FinishedAt)

	var runID, claimedType string
	require.NoError(t, index.QueryRow(
		`SELECT run_id, claimed_type FROM catalog_objects WHERE name = ?`, "SN2011fe").Scan(&runID, &claimedType))
	assert.Equal(t, runs[0].ID, runID)
	assert.Equal(t, "Ia", claimedType)
}

func TestRun_FailedBuildRecordsNoRun(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("/repos/sne-2010-2014/SN2011fe.json", []byte(`{"SN2011fe": {
		"name": "SN2011fe",
		"discoveryear": "2011",
		"photometry": [{"time": 55800, "band": "B", "magnitude": 14.2}]
	}}`), 0644))
	require.NoError(t, fs.WriteFile("/repos/sne-2010-2014/SNbad.json", []byte(`{"SNbad": {
		"name": "SNbad",
		"discoveryear": "20xx"
	}}`), 0644))

	dbFile := filepath.Join(t.TempDir(), "catalog.db")
	cfg := config.EmptyCatalogConfig()
	cfg.InputRoot = strPtr("/repos")
	cfg.OutputDir = strPtr("/site")
	cfg.DBPath = strPtr(dbFile)

	err := run(context.Background(), fs, cfg)
	assert.ErrorIs(t, err, catalog.ErrNonNumericYear)
	assert.False(t, fs.Exists("/site/sne-catalog.json"))

	index, err := db.NewDB(dbFile)
	require.NoError(t, err)
	defer index.Close()

	runs, err := index.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)

	var n int
	require.NoError(t, index.QueryRow(`SELECT COUNT(*) FROM catalog_objects`).Scan(&n))
	assert.Equal(t, 0, n)
}

func strPtr(s string) *string { return &s }
