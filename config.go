package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type SceneConfig struct {
	ID     string  `toml:"id"`
	Title  string  `toml:"title"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type Config struct {
	ShowConnections bool          `toml:"show_connections"`
	ZoomStep        float64       `toml:"zoom_step"`
	MinScale        float64       `toml:"min_scale"`
	MaxScale        float64       `toml:"max_scale"`
	ExportDirectory string        `toml:"export_directory"`
	LogFile         string        `toml:"log_file"`
	LogLevel        string        `toml:"log_level"`
	Scenes          []SceneConfig `toml:"scenes"`
}

func defaultConfig() *Config {
	return &Config{
		ShowConnections: true,
		ZoomStep:        1.25,
		MinScale:        0.25,
		MaxScale:        4,
		LogLevel:        "info",
		Scenes: []SceneConfig{
			{ID: "1", Title: "Scene1", X: -36, Y: -6, Width: 16, Height: 8},
			{ID: "2", Title: "Scene2", X: -8, Y: -6, Width: 16, Height: 8},
			{ID: "3", Title: "Scene3", X: 20, Y: -6, Width: 16, Height: 8},
		},
	}
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".scenegraphrc")
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	config.ExportDirectory = expandHome(config.ExportDirectory)
	config.LogFile = expandHome(config.LogFile)
	return config, nil
}

func (c *Config) validate() error {
	if c.ZoomStep <= 1 {
		return fmt.Errorf("zoom_step must be > 1, got %v", c.ZoomStep)
	}
	if c.MinScale <= 0 || c.MaxScale < c.MinScale {
		return fmt.Errorf("need 0 < min_scale <= max_scale, got %v and %v", c.MinScale, c.MaxScale)
	}
	seen := make(map[string]bool, len(c.Scenes))
	for _, s := range c.Scenes {
		if s.ID == "" {
			return errors.New("scene without id")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate scene id %q", s.ID)
		}
		if s.Width < minSceneWidth || s.Height < minSceneHeight {
			return fmt.Errorf("scene %q is smaller than %dx%d", s.ID, minSceneWidth, minSceneHeight)
		}
		seen[s.ID] = true
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}

func (c *Config) GetSavePath(filename string) string {
	if c.ExportDirectory == "" {
		return filename
	}
	os.MkdirAll(c.ExportDirectory, 0755)
	return filepath.Join(c.ExportDirectory, filename)
}
