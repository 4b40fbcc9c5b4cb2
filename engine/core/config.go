package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the engine configuration, read from a TOML file.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position.
	X uint32 `toml:"x"`
	Y uint32 `toml:"y"`
	// Window starting size.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	// Number of frames the CPU may record ahead of the GPU.
	FramesInFlight uint32 `toml:"frames_in_flight"`
	// Upper bound for the multisample count of the color and depth attachments.
	MSAASamples uint32 `toml:"msaa_samples"`
	// Use mailbox presentation when the surface offers it, FIFO otherwise.
	PreferMailbox bool `toml:"prefer_mailbox"`
	// 0 waits on fences forever.
	FenceTimeoutMS uint64 `toml:"fence_timeout_ms"`
	// Enables the Khronos validation layer and the debug report callback.
	Validation bool `toml:"validation"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Name:   "Engine2",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			FramesInFlight: 2,
			MSAASamples:    4,
			PreferMailbox:  true,
			FenceTimeoutMS: 0,
			Validation:     false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error: the defaults are returned as they are.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			LogDebug("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.FramesInFlight == 0 {
		return fmt.Errorf("renderer.frames_in_flight must be at least 1")
	}
	switch c.Renderer.MSAASamples {
	case 2, 4, 8, 16, 32, 64:
	default:
		return fmt.Errorf("renderer.msaa_samples must be a power of two between 2 and 64, got %d", c.Renderer.MSAASamples)
	}
	return nil
}

func (r RendererConfig) FenceTimeout() time.Duration {
	return time.Duration(r.FenceTimeoutMS) * time.Millisecond
}
