package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func writeConfig(c *qt.C, dir, content string) string {
	path := filepath.Join(dir, "engine.toml")
	c.Assert(os.WriteFile(path, []byte(content), 0o644), qt.IsNil)
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := LoadConfig(filepath.Join(c.TempDir(), "missing.toml"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, DefaultConfig())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	c := qt.New(t)

	path := writeConfig(c, c.TempDir(), `
[window]
name = "voxels"
width = 1920
height = 1080

[renderer]
frames_in_flight = 3
msaa_samples = 8
prefer_mailbox = false
fence_timeout_ms = 2500

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Window, qt.Equals, WindowConfig{Name: "voxels", X: 100, Y: 100, Width: 1920, Height: 1080})
	c.Assert(cfg.Renderer, qt.Equals, RendererConfig{
		FramesInFlight: 3,
		MSAASamples:    8,
		PreferMailbox:  false,
		FenceTimeoutMS: 2500,
	})
	c.Assert(cfg.Renderer.FenceTimeout(), qt.Equals, 2500*time.Millisecond)
	c.Assert(ParseLogLevel(cfg.Log.Level), qt.Equals, DebugLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     string
	}{{
		name:    "syntax",
		content: "[renderer\nframes_in_flight = 2",
		err:     "(?s)failed to parse config .*",
	}, {
		name:    "zero frames",
		content: "[renderer]\nframes_in_flight = 0",
		err:     "renderer.frames_in_flight must be at least 1",
	}, {
		name:    "msaa not a power of two",
		content: "[renderer]\nmsaa_samples = 3",
		err:     "renderer.msaa_samples must be a power of two between 2 and 64, got 3",
	}, {
		name:    "single sample",
		content: "[renderer]\nmsaa_samples = 1",
		err:     "renderer.msaa_samples .*",
	}, {
		name:    "zero window",
		content: "[window]\nwidth = 0",
		err:     "invalid window size 0x720",
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			_, err := LoadConfig(writeConfig(c, c.TempDir(), test.content))
			c.Assert(err, qt.ErrorMatches, test.err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	c := qt.New(t)

	c.Assert(ParseLogLevel("DEBUG"), qt.Equals, DebugLevel)
	c.Assert(ParseLogLevel(" warn "), qt.Equals, WarnLevel)
	c.Assert(ParseLogLevel("error"), qt.Equals, ErrorLevel)
	c.Assert(ParseLogLevel("chatty"), qt.Equals, InfoLevel)
}
