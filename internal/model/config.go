package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// SiteConfig locates the website files the tool edits.
type SiteConfig struct {
	// Root is the website checkout. Relative paths below resolve against it.
	Root string `mapstructure:"root" yaml:"root"`

	// DataDir holds the JSON sidecar files (projects.json, updates.json, ...).
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// ImagesDir is the images root; each project gets a subfolder.
	ImagesDir string `mapstructure:"images_dir" yaml:"images_dir"`

	// LegacyScript is the generated site script holding the original
	// projectData literal. It is only ever read.
	LegacyScript string `mapstructure:"legacy_script" yaml:"legacy_script"`

	// LegacyRange is the number of project ids reserved by the legacy
	// site (project1..projectN). New ids start above it.
	LegacyRange int `mapstructure:"legacy_range" yaml:"legacy_range"`

	// ExportScript is where "export" writes the regenerated projectData.
	ExportScript string `mapstructure:"export_script" yaml:"export_script"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// LogConfig controls the log file. The terminal belongs to the UI, so
// logs never go to stdout.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Site    SiteConfig    `mapstructure:"site" yaml:"site"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Path resolves a configured path against the site root. Absolute paths
// are returned unchanged.
func (c SiteConfig) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/contentmgr/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "contentmgr", "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Site: SiteConfig{
			Root:         ".",
			DataDir:      "admin_data",
			ImagesDir:    "images",
			LegacyScript: "script.js",
			LegacyRange:  15,
			ExportScript: filepath.Join("admin_data", "projectData.js"),
		},
		Storage: StorageConfig{
			Driver:     DriverJSON,
			SQLitePath: filepath.Join("admin_data", "content.db"),
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join("admin_data", "contentmgr.log"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("site.root", d.Site.Root)
	v.SetDefault("site.data_dir", d.Site.DataDir)
	v.SetDefault("site.images_dir", d.Site.ImagesDir)
	v.SetDefault("site.legacy_script", d.Site.LegacyScript)
	v.SetDefault("site.legacy_range", d.Site.LegacyRange)
	v.SetDefault("site.export_script", d.Site.ExportScript)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults. CONTENTMGR_* environment variables
// (e.g., CONTENTMGR_SITE_ROOT) override both.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("contentmgr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, missingFile := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !missingFile && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values LoadConfig cannot default.
func (c *AppConfig) Validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Site.LegacyRange < 0 {
		return fmt.Errorf("site.legacy_range must not be negative")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("site", cfg.Site)
	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
