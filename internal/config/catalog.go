package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultRepoFolders are the per-era data repositories, oldest first. Each
// name ends in the last discovery year it holds.
var DefaultRepoFolders = []string{
	"sne-pre-1990",
	"sne-1990-1999",
	"sne-2000-2004",
	"sne-2005-2009",
	"sne-2010-2014",
	"sne-2015-2019",
}

// CatalogConfig configures the catalog builder. Every field is optional;
// the Get* methods supply defaults for anything left out of the file.
type CatalogConfig struct {
	// Inputs
	InputRoot   *string  `json:"input_root,omitempty"`
	RepoFolders []string `json:"repo_folders,omitempty"`

	// Outputs
	OutputDir *string `json:"output_dir,omitempty"`
	PlotDir   *string `json:"plot_dir,omitempty"` // defaults to output_dir
	DBPath    *string `json:"db_path,omitempty"`

	// Page rendering
	PaletteSeed *uint64 `json:"palette_seed,omitempty"`
	SiteURL     *string `json:"site_url,omitempty"`
	DataURL     *string `json:"data_url,omitempty"`
	AssetsHost  *string `json:"assets_host,omitempty"`
}

// EmptyCatalogConfig returns a CatalogConfig with all fields unset.
func EmptyCatalogConfig() *CatalogConfig {
	return &CatalogConfig{}
}

// LoadCatalogConfig loads a CatalogConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadCatalogConfig(path string) (*CatalogConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyCatalogConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *CatalogConfig) Validate() error {
	for _, folder := range c.RepoFolders {
		if _, err := FolderYear(folder); err != nil {
			return err
		}
	}

	for name, v := range map[string]*string{"site_url": c.SiteURL, "data_url": c.DataURL} {
		if v == nil || *v == "" {
			continue
		}
		u, err := url.Parse(*v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got '%s'", name, *v)
		}
	}

	return nil
}

// FolderYear returns the last discovery year held by a repository folder,
// taken from the folder name's final four characters.
func FolderYear(folder string) (int, error) {
	if len(folder) < 4 {
		return 0, fmt.Errorf("repo folder %q must end in a four-digit year", folder)
	}
	year, err := strconv.Atoi(folder[len(folder)-4:])
	if err != nil {
		return 0, fmt.Errorf("repo folder %q must end in a four-digit year", folder)
	}
	return year, nil
}

// GetInputRoot returns the directory holding the repo folders.
func (c *CatalogConfig) GetInputRoot() string {
	if c.InputRoot == nil || *c.InputRoot == "" {
		return ".." // default
	}
	return *c.InputRoot
}

// GetRepoFolders returns the configured repo folders or DefaultRepoFolders.
func (c *CatalogConfig) GetRepoFolders() []string {
	if len(c.RepoFolders) == 0 {
		return append([]string(nil), DefaultRepoFolders...)
	}
	return append([]string(nil), c.RepoFolders...)
}

// GetOutputDir returns the directory for the catalog and summary files.
func (c *CatalogConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return ".." // default
	}
	return *c.OutputDir
}

// GetPlotDir returns the directory for per-object pages.
func (c *CatalogConfig) GetPlotDir() string {
	if c.PlotDir == nil || *c.PlotDir == "" {
		return c.GetOutputDir()
	}
	return *c.PlotDir
}

// GetDBPath returns the catalog index path; empty disables the index.
func (c *CatalogConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetPaletteSeed returns the band palette shuffle seed.
func (c *CatalogConfig) GetPaletteSeed() uint64 {
	if c.PaletteSeed == nil {
		return 101 // default
	}
	return *c.PaletteSeed
}

// GetSiteURL returns the public catalog site.
func (c *CatalogConfig) GetSiteURL() string {
	if c.SiteURL == nil || *c.SiteURL == "" {
		return "https://sne.space" // default
	}
	return *c.SiteURL
}

// GetDataURL returns the base URL of the raw data repositories.
func (c *CatalogConfig) GetDataURL() string {
	if c.DataURL == nil || *c.DataURL == "" {
		return "https://raw.githubusercontent.com/astrotransients" // default
	}
	return *c.DataURL
}

// GetAssetsHost returns where plot pages load their chart scripts from.
// Empty means the charting library's default CDN.
func (c *CatalogConfig) GetAssetsHost() string {
	if c.AssetsHost == nil {
		return ""
	}
	return *c.AssetsHost
}
