// Package config loads matlayer settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/matlayer/config.toml (falling back to
// ~/.config/matlayer/config.toml). Every field is optional; missing values
// keep the defaults returned by [Default].
//
//	[layout]
//	mask_pitch = 600
//
//	[export]
//	folder = "/tmp/out"
//	format = "PNG"
//	channels = ["COLOR", "ROUGHNESS", "NORMAL"]
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/matlayer/pkg/errors"
)

// AppName is used for config, data, and cache directories.
const AppName = "matlayer"

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Layout    Layout  `toml:"layout"`
	Export    Export  `toml:"export"`
	Logging   Logging `toml:"logging"`
	Store     Store   `toml:"store"`
	Templates string  `toml:"templates"` // optional user template file
}

// Layout controls node editor spacing.
type Layout struct {
	MaskPitch    float64 `toml:"mask_pitch"`
	MaskWidth    float64 `toml:"mask_width"`
	LayerWidth   float64 `toml:"layer_width"`
	LayerSpacing float64 `toml:"layer_spacing"`
}

// Export holds texture export preferences.
type Export struct {
	Folder        string   `toml:"folder"`      // empty: next to the project
	NameFormat    string   `toml:"name_format"` // supports /MaterialName and /MeshName
	Format        string   `toml:"format"`      // PNG, JPG, TARGA, EXR
	BitDepth      int      `toml:"bit_depth"`   // 8 or 32
	Channels      []string `toml:"channels"`
	RoughnessMode string   `toml:"roughness_mode"` // ROUGHNESS or SMOOTHNESS
	NormalMode    string   `toml:"normal_mode"`    // OPEN_GL or DIRECTX
	Padding       int      `toml:"padding"`
	Width         int      `toml:"width"`
	Height        int      `toml:"height"`
}

// Logging controls log output.
type Logging struct {
	Level string `toml:"level"` // debug, info, warn, error
	Trace bool   `toml:"trace"` // log every engine step at debug level
}

// Store selects and configures the document store.
type Store struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: Layout{
			MaskPitch:    600,
			MaskWidth:    300,
			LayerWidth:   250,
			LayerSpacing: 80,
		},
		Export: Export{
			NameFormat:    "T_/MaterialName_C",
			Format:        "PNG",
			BitDepth:      8,
			Channels:      []string{"COLOR", "SUBSURFACE", "SUBSURFACE_COLOR", "METALLIC", "SPECULAR", "ROUGHNESS", "NORMAL", "HEIGHT", "EMISSION"},
			RoughnessMode: "ROUGHNESS",
			NormalMode:    "OPEN_GL",
			Padding:       16,
			Width:         2048,
			Height:        2048,
		},
		Logging: Logging{Level: "info", Trace: true},
		Store: Store{
			Backend:         BackendFile,
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   AppName,
			MongoCollection: "materials",
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enumerated values and numeric ranges.
func (c Config) Validate() error {
	switch {
	case c.Layout.MaskPitch <= 0 || c.Layout.MaskWidth <= 0 || c.Layout.LayerWidth <= 0 || c.Layout.LayerSpacing < 0:
		return errors.New(errors.ErrCodeInvalidInput, "layout sizes must be positive")
	case !slices.Contains([]string{"PNG", "JPG", "TARGA", "EXR"}, c.Export.Format):
		return errors.New(errors.ErrCodeInvalidInput, "unknown export format %q", c.Export.Format)
	case c.Export.BitDepth != 8 && c.Export.BitDepth != 32:
		return errors.New(errors.ErrCodeInvalidInput, "bit depth must be 8 or 32, got %d", c.Export.BitDepth)
	case c.Export.RoughnessMode != "ROUGHNESS" && c.Export.RoughnessMode != "SMOOTHNESS":
		return errors.New(errors.ErrCodeInvalidInput, "unknown roughness mode %q", c.Export.RoughnessMode)
	case c.Export.NormalMode != "OPEN_GL" && c.Export.NormalMode != "DIRECTX":
		return errors.New(errors.ErrCodeInvalidInput, "unknown normal map mode %q", c.Export.NormalMode)
	case !slices.Contains([]string{BackendFile, BackendMemory, BackendRedis, BackendMongo}, c.Store.Backend):
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// Path returns the default config file path.
func Path() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config", "config.toml")
}

// DataDir returns the directory for stored projects (~/.local/share/matlayer).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"), "")
}

// CacheDir returns the cache directory (~/.cache/matlayer).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache", "")
}

func xdgDir(env, fallback, file string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName, file), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, fallback, AppName, file), nil
}
