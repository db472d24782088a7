package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const settingsFile = "settings.yaml"

type Config struct {
	DataDir     string `env:"VIDSTEPS_DATA_DIR"`
	DBFile      string `env:"VIDSTEPS_DB_FILE"`
	MPVPath     string `env:"VIDSTEPS_MPV_PATH"`
	MPVArgs     []string
	SocketDir   string `env:"VIDSTEPS_SOCKET_DIR"`
	FFprobePath string `env:"VIDSTEPS_FFPROBE_PATH"`
	LogLevel    string `env:"VIDSTEPS_LOG_LEVEL"`
	LogFile     string `env:"VIDSTEPS_LOG_FILE"`
}

// fileConfig is the optional settings.yaml in the data directory. Values from
// it fill gaps only; environment variables win.
type fileConfig struct {
	MPV struct {
		Path      string   `yaml:"path"`
		ExtraArgs []string `yaml:"extra_args"`
	} `yaml:"mpv"`
	FFprobePath string `yaml:"ffprobe_path"`
	Log         struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if err := cfg.applyFile(filepath.Join(cfg.DataDir, settingsFile)); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if c.MPVPath == "" {
		c.MPVPath = fc.MPV.Path
	}
	if len(c.MPVArgs) == 0 {
		c.MPVArgs = fc.MPV.ExtraArgs
	}
	if c.FFprobePath == "" {
		c.FFprobePath = fc.FFprobePath
	}
	if c.LogLevel == "" {
		c.LogLevel = fc.Log.Level
	}
	if c.LogFile == "" {
		c.LogFile = fc.Log.File
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DBFile == "" {
		c.DBFile = filepath.Join(c.DataDir, "data.sqlite")
	}
	if c.MPVPath == "" {
		c.MPVPath = "mpv"
	}
	if c.SocketDir == "" {
		c.SocketDir = os.TempDir()
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "vidsteps.log")
	}
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "vidsteps")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vidsteps")
	}
	return filepath.Join(home, ".local", "share", "vidsteps")
}
