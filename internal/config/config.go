package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the asset search roots and the frame loop settings.
type Config struct {
	Assets  AssetsConfig  `toml:"assets" yaml:"assets"`
	Frame   FrameConfig   `toml:"frame" yaml:"frame"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

type AssetsConfig struct {
	BaseDir    string  `toml:"base_dir" yaml:"base_dir"`
	GameRoot   string  `toml:"game_root" yaml:"game_root"`     // searched first
	EngineRoot string  `toml:"engine_root" yaml:"engine_root"` // fallback
	HotReload  bool    `toml:"hot_reload" yaml:"hot_reload"`
	FontSize   float64 `toml:"font_size" yaml:"font_size"`
	BMDKey     string  `toml:"bmd_key" yaml:"bmd_key"` // hex, 32 bytes; needed for BMD v15
}

type FrameConfig struct {
	TickRate   time.Duration `toml:"tick_rate" yaml:"tick_rate"`
	GCInterval int           `toml:"gc_interval" yaml:"gc_interval"` // frames between collections
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads a TOML or YAML config file, chosen by extension, on top of the
// defaults. Fields not set in the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Assets: AssetsConfig{
			HotReload: true,
			FontSize:  32,
		},
		Frame: FrameConfig{
			TickRate:   16 * time.Millisecond,
			GCInterval: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir     string
	GameRoot    string
	EngineRoot  string
	NoHotReload bool
	LogLevel    string
}

// Resolve applies flag overrides and fills in any empty roots relative to
// the base directory.
func (c *Config) Resolve(flags Flags) {
	if flags.DataDir != "" {
		c.Assets.BaseDir = flags.DataDir
	}
	if flags.GameRoot != "" {
		c.Assets.GameRoot = flags.GameRoot
	}
	if flags.EngineRoot != "" {
		c.Assets.EngineRoot = flags.EngineRoot
	}
	if flags.NoHotReload {
		c.Assets.HotReload = false
	}
	if flags.LogLevel != "" {
		c.Logging.Level = flags.LogLevel
	}

	if c.Assets.BaseDir == "" {
		c.Assets.BaseDir = detectBaseDir()
	}

	if c.Assets.BaseDir != "" {
		c.Assets.GameRoot = resolvePath(c.Assets.BaseDir, c.Assets.GameRoot, "Resources")
		c.Assets.EngineRoot = resolvePath(c.Assets.BaseDir, c.Assets.EngineRoot, filepath.Join("Engine", "Resources"))
	}

	if c.Assets.FontSize <= 0 {
		c.Assets.FontSize = 32
	}
	if c.Frame.TickRate <= 0 {
		c.Frame.TickRate = 16 * time.Millisecond
	}
	if c.Frame.GCInterval <= 0 {
		c.Frame.GCInterval = 60
	}
}

func resolvePath(base, p, def string) string {
	switch {
	case p == "":
		return filepath.Join(base, def)
	case filepath.IsAbs(p):
		return p
	default:
		return filepath.Join(base, p)
	}
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if isDir(filepath.Join(base, "Resources")) {
				return base
			}
		}
	}

	cwd, _ := os.Getwd()
	if isDir(filepath.Join(cwd, "Resources")) {
		return cwd
	}
	if parent := filepath.Dir(cwd); isDir(filepath.Join(parent, "Resources")) {
		return parent
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
