/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Git-RoySun/Engine2/engine"
	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/testbed"
)

const configPath = "engine.toml"

func main() {
	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		core.LogFatal("failed to load config: %s", err)
	}

	tb, err := testbed.NewTestGame(engine.ApplicationConfigFrom(cfg, configPath))
	if err != nil {
		core.LogFatal(err.Error())
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// The loop owns the window and the GPU; the handler only asks it to stop.
	go func() {
		<-sigCh
		e.Stop()
	}()

	runErr := e.Initialize()
	if runErr == nil {
		runErr = e.Run()
	}
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
	}
	if runErr != nil {
		core.LogFatal(runErr.Error())
	}
}
