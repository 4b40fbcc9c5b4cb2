package engine

import "github.com/Git-RoySun/Engine2/engine/core"

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel
	Renderer core.RendererConfig
	// Path of the TOML file the config was loaded from. Empty disables hot reload.
	ConfigPath string
}

// ApplicationConfigFrom maps a loaded engine config onto an application config.
func ApplicationConfigFrom(cfg *core.Config, path string) *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   cfg.Window.X,
		StartPosY:   cfg.Window.Y,
		StartWidth:  cfg.Window.Width,
		StartHeight: cfg.Window.Height,
		Name:        cfg.Window.Name,
		LogLevel:    core.ParseLogLevel(cfg.Log.Level),
		Renderer:    cfg.Renderer,
		ConfigPath:  path,
	}
}
