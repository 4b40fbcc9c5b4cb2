package testbed

import (
	"github.com/Git-RoySun/Engine2/engine"
	"github.com/Git-RoySun/Engine2/engine/core"
	"github.com/Git-RoySun/Engine2/engine/renderer"
	"github.com/Git-RoySun/Engine2/engine/renderer/metadata"
)

// How often the testbed reports frame statistics, in seconds.
const reportInterval = 5.0

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	sinceReport float64
	frames      uint64
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("testbed initialized: %s", g.ApplicationConfig.Name)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	s := g.state()
	s.sinceReport += deltaTime
	if s.sinceReport >= reportInterval {
		core.LogInfo("testbed: %d frames drawn, %d skipped, window %dx%d",
			s.frames, renderer.SkippedFrames(), s.width, s.height)
		s.sinceReport = 0
	}
	return nil
}

func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	g.state().frames = packet.FrameNumber + 1
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	s := g.state()
	s.width = width
	s.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("testbed shutting down after %d frames", g.state().frames)
	return nil
}
